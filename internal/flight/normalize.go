// Package flight turns raw reservations and scraped telemetry into ranked,
// state-tagged flight legs for the live map.
package flight

import (
	"strings"
	"time"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

const (
	// recentWindow is how long after a scheduled time a flight still counts
	// as recent rather than finished.
	recentWindow = 6 * time.Hour
	// estimatedDuration pads the inbound scheduled time to guess when the
	// flight has actually landed; the reservation only stores departures.
	estimatedDuration = 3 * time.Hour
)

// NormalizeReservation expands one reservation row into its display legs.
// The row's inbound or outbound half is chosen based on now, the chosen
// flight-number string is split on semicolons, and each leg is tagged with
// its itinerary relation. A row that yields no flight numbers is dropped.
func NormalizeReservation(row model.ReservationRow, now time.Time) []model.FlightLeg {
	direction := pickDirection(row, now)

	numbers := row.InboundFlightNumber
	departure := row.InboundTime
	if direction == model.DirectionOutbound {
		numbers = row.OutboundFlightNumber
		departure = row.OutboundTime
	}

	parts := splitFlightNumbers(numbers)
	if len(parts) == 0 {
		return nil
	}

	legs := make([]model.FlightLeg, 0, len(parts))
	for i, number := range parts {
		legs = append(legs, model.FlightLeg{
			FlightNumber:  number,
			Relation:      relationFor(i, len(parts)),
			Direction:     direction,
			DepartureTime: departure,
			// Always the inbound scheduled time; the source data uses it as
			// the canonical "flight time" for both directions.
			FlightTime: row.InboundTime,
			SlackID:    row.SlackID,
			LegIndex:   i + 1,
			LegCount:   len(parts),
		})
	}
	return legs
}

// pickDirection decides which half of the reservation the map should show.
func pickDirection(row model.ReservationRow, now time.Time) model.FlightDirection {
	inboundLanded := now.After(row.InboundTime.Add(recentWindow + estimatedDuration))
	if !inboundLanded && row.OutboundTime.After(now) {
		return model.DirectionInbound
	}
	if inboundLanded && now.After(row.OutboundTime.Add(-recentWindow)) {
		return model.DirectionOutbound
	}
	return model.DirectionInbound
}

func splitFlightNumbers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func relationFor(i, count int) model.LegRelation {
	switch {
	case count == 1:
		return model.RelationSingle
	case i == 0:
		return model.RelationConnectingAfter
	case i == count-1:
		return model.RelationConnectingBefore
	default:
		return model.RelationConnectingBoth
	}
}
