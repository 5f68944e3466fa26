package flight

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// statusBonus orders lifecycle states by how interesting they are to watch.
var statusBonus = map[model.FlightStatus]float64{
	model.StatusInFlight:      0.5,
	model.StatusArrived:       0.4,
	model.StatusDepartingSoon: 0.3,
	model.StatusUpcoming:      0.1,
}

// ChatHash is the stable per-user hash feeding the relation bonus: the sum
// of the identifier's character codes mod 10000.
func ChatHash(slackID string) int {
	sum := 0
	for _, r := range slackID {
		sum += int(r)
	}
	return sum % 10000
}

// Score computes a leg's display priority. Legs with telemetry beat legs
// without, legs with a known user beat anonymous ones, and connecting legs
// of one itinerary pack their ordering into the fractional tail so they sort
// together without disturbing the coarser bonuses.
func Score(leg model.FlightLeg) float64 {
	var score float64
	if leg.ServerData != nil {
		score += 2
	}
	if leg.User != nil {
		score += 1
	}
	score += statusBonus[leg.Status]
	score += relationBonus(leg)
	return score
}

func relationBonus(leg model.FlightLeg) float64 {
	frag := fmt.Sprintf("%04d", ChatHash(leg.SlackID))
	var tail string
	switch leg.Relation {
	case model.RelationConnectingAfter:
		tail = "0"
	case model.RelationConnectingBoth:
		width := len(strconv.Itoa(leg.LegCount))
		tail = fmt.Sprintf("%0*d", width, leg.LegIndex)
	case model.RelationConnectingBefore:
		tail = "9"
	default:
		return 0
	}
	bonus, err := strconv.ParseFloat("0."+frag+tail, 64)
	if err != nil {
		return 0
	}
	return bonus
}

// Rank sorts legs by descending score, breaking ties by ascending raw chat
// hash. The input slice is not modified.
func Rank(legs []model.FlightLeg) []model.FlightLeg {
	out := make([]model.FlightLeg, len(legs))
	copy(out, legs)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := Score(out[i]), Score(out[j])
		if si != sj {
			return si > sj
		}
		return ChatHash(out[i].SlackID) < ChatHash(out[j].SlackID)
	})
	return out
}
