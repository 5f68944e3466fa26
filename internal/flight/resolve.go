package flight

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// UserDirectory looks up the display name/avatar for a Slack identifier.
type UserDirectory interface {
	BySlackID(ctx context.Context, slackID string) (model.DisplayUser, error)
}

// unknownUser is the placeholder attached when the directory has no match.
var unknownUser = model.DisplayUser{Name: "Unknown User", Image: ""}

// Resolver fuses normalized legs with tracker telemetry and the user
// directory.
type Resolver struct {
	log   *zap.Logger
	users UserDirectory
}

// NewResolver creates a Resolver.
func NewResolver(log *zap.Logger, users UserDirectory) *Resolver {
	return &Resolver{log: log, users: users}
}

// Resolve attaches telemetry, status and display user to each leg. Legs with
// no matching telemetry line keep an empty status and nil ServerData; the
// consumer treats them as not yet resolved, never as an error.
func (r *Resolver) Resolve(ctx context.Context, legs []model.FlightLeg, tracked []model.TrackedFlight, now time.Time) []model.FlightLeg {
	byNumber := make(map[string]model.ServerData, len(tracked))
	for _, tf := range tracked {
		byNumber[tf.FlightNumber] = tf.Data
	}

	out := make([]model.FlightLeg, len(legs))
	for i, leg := range legs {
		user, err := r.users.BySlackID(ctx, leg.SlackID)
		if err != nil {
			r.log.Warn("no directory match for reservation",
				zap.String("slackId", leg.SlackID), zap.Error(err))
			user = unknownUser
		}
		leg.User = &user

		if data, ok := byNumber[leg.FlightNumber]; ok {
			d := data
			leg.ServerData = &d
			leg.Status = ResolveState(leg.DepartureTime, &d, now)
		}
		out[i] = leg
	}
	return out
}

// ResolveState assigns a lifecycle state from the reservation's expected
// departure and the telemetry's actual/scheduled times. The conditions
// overlap, so they are checked strictly in priority order.
func ResolveState(reservationDeparture time.Time, data *model.ServerData, now time.Time) model.FlightStatus {
	recent := int64(recentWindow / time.Second)
	dep := data.DepartureEpoch()
	arr := data.ArrivalEpoch()
	n := now.Unix()

	diff := reservationDeparture.Unix() - dep
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff > recent:
		// Telemetry is for a different occurrence of this flight number.
		return model.StatusUpcoming
	case n >= dep && n < arr:
		return model.StatusInFlight
	case dep-n < recent && arr > n:
		return model.StatusDepartingSoon
	case n >= arr && n-arr < recent:
		return model.StatusArrived
	default:
		return model.StatusPastFlight
	}
}
