// Package store provides read access to projects, reservations, users and
// the per-user economy counters.
package store

import (
	"context"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// ProjectStore reads a user's projects with their time-tracking links.
type ProjectStore interface {
	ProjectsByUser(ctx context.Context, userID string) ([]model.Project, error)
}

// EconomyStore reads and increments the per-user economy counters.
type EconomyStore interface {
	Snapshot(ctx context.Context, userID string) (model.EconomySnapshot, error)
	AddPurchasedHours(ctx context.Context, userID string, hours float64) error
}

// ReservationStore yields the raw reservation rows feeding the map.
type ReservationStore interface {
	Reservations(ctx context.Context) ([]model.ReservationRow, error)
}

// UserDirectory resolves Slack identifiers to display users.
type UserDirectory interface {
	BySlackID(ctx context.Context, slackID string) (model.DisplayUser, error)
}
