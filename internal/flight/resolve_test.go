package flight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

type mapDirectory map[string]model.DisplayUser

func (m mapDirectory) BySlackID(_ context.Context, id string) (model.DisplayUser, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return model.DisplayUser{}, errors.New("not found")
}

func telemetryAt(dep, arr time.Time) *model.ServerData {
	return &model.ServerData{
		ScheduledDeparture: dep.Unix(),
		ScheduledArrival:   arr.Unix(),
	}
}

func TestResolveStateLadder(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		reservation time.Time
		dep, arr    time.Time
		want        model.FlightStatus
	}{
		{
			name:        "telemetry outside reservation window",
			reservation: now.Add(48 * time.Hour),
			dep:         now.Add(-time.Hour),
			arr:         now.Add(4 * time.Hour),
			want:        model.StatusUpcoming,
		},
		{
			name:        "in flight at exact departure instant",
			reservation: now,
			dep:         now,
			arr:         now.Add(5 * time.Hour),
			want:        model.StatusInFlight,
		},
		{
			name:        "departing soon",
			reservation: now.Add(3 * time.Hour),
			dep:         now.Add(3 * time.Hour),
			arr:         now.Add(8 * time.Hour),
			want:        model.StatusDepartingSoon,
		},
		{
			name:        "arrived recently",
			reservation: now.Add(-7 * time.Hour),
			dep:         now.Add(-7 * time.Hour),
			arr:         now.Add(-2 * time.Hour),
			want:        model.StatusArrived,
		},
		{
			name:        "long landed",
			reservation: now.Add(-30 * time.Hour),
			dep:         now.Add(-30 * time.Hour),
			arr:         now.Add(-25 * time.Hour),
			want:        model.StatusPastFlight,
		},
		{
			name:        "far future same occurrence",
			reservation: now.Add(12 * time.Hour),
			dep:         now.Add(12 * time.Hour),
			arr:         now.Add(17 * time.Hour),
			want:        model.StatusPastFlight,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveState(tc.reservation, telemetryAt(tc.dep, tc.arr), now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveStatePrefersActualTimes(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	data := &model.ServerData{
		ScheduledDeparture: now.Add(2 * time.Hour).Unix(),
		ActualDeparture:    now.Add(-time.Hour).Unix(),
		ScheduledArrival:   now.Add(7 * time.Hour).Unix(),
	}
	got := ResolveState(now.Add(-time.Hour), data, now)
	assert.Equal(t, model.StatusInFlight, got)
}

func TestResolveFusesTelemetryAndUsers(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	r := NewResolver(zaptest.NewLogger(t), mapDirectory{
		"U1": {Name: "Skippy", Image: "https://avatars/skippy.png"},
	})

	legs := []model.FlightLeg{
		{FlightNumber: "UA100", SlackID: "U1", DepartureTime: now},
		{FlightNumber: "UA999", SlackID: "U404", DepartureTime: now},
	}
	tracked := []model.TrackedFlight{
		{FlightNumber: "UA100", Data: model.ServerData{
			ScheduledDeparture: now.Unix(),
			ScheduledArrival:   now.Add(5 * time.Hour).Unix(),
		}},
	}

	out := r.Resolve(context.Background(), legs, tracked, now)

	assert.Equal(t, "Skippy", out[0].User.Name)
	assert.NotNil(t, out[0].ServerData)
	assert.Equal(t, model.StatusInFlight, out[0].Status)

	// No telemetry line: leg passes through unresolved, user falls back to
	// the placeholder.
	assert.Equal(t, "Unknown User", out[1].User.Name)
	assert.Nil(t, out[1].ServerData)
	assert.Equal(t, model.FlightStatus(""), out[1].Status)
}
