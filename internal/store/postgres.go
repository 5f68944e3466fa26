package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// Postgres implements all store interfaces over a single *sql.DB.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ProjectsByUser loads a user's projects and their time-tracking links.
func (s *Postgres) ProjectsByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, shipped, viral, raw_hours
		FROM projects WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ProjectID, &p.UserID, &p.Shipped, &p.Viral, &p.RawHours); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	for i := range projects {
		links, err := s.linksByProject(ctx, projects[i].ProjectID)
		if err != nil {
			return nil, err
		}
		projects[i].HackatimeLinks = links
	}
	return projects, nil
}

func (s *Postgres) linksByProject(ctx context.Context, projectID string) ([]model.TimeTrackingLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_name, raw_hours, hours_override
		FROM hackatime_links WHERE project_id = $1
		ORDER BY project_name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []model.TimeTrackingLink
	for rows.Next() {
		var link model.TimeTrackingLink
		var override sql.NullFloat64
		if err := rows.Scan(&link.ProjectName, &link.RawHours, &override); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if override.Valid {
			v := override.Float64
			link.HoursOverride = &v
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Snapshot reads a user's economy counters. A user with no row yet gets a
// zero snapshot, not an error.
func (s *Postgres) Snapshot(ctx context.Context, userID string) (model.EconomySnapshot, error) {
	var snap model.EconomySnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT purchased_progress_hours, total_shells_spent, admin_shell_adjustment
		FROM economy WHERE user_id = $1
	`, userID).Scan(&snap.PurchasedProgressHours, &snap.TotalShellsSpent, &snap.AdminShellAdjustment)
	if err == sql.ErrNoRows {
		return model.EconomySnapshot{}, nil
	}
	if err != nil {
		return model.EconomySnapshot{}, fmt.Errorf("query economy snapshot: %w", err)
	}
	return snap, nil
}

// AddPurchasedHours records a progress purchase in the ledger and bumps the
// user's counter in one transaction.
func (s *Postgres) AddPurchasedHours(ctx context.Context, userID string, hours float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO economy_ledger (id, user_id, hours, created_at)
		VALUES ($1, $2, $3, NOW())
	`, uuid.NewString(), userID, hours); err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO economy (user_id, purchased_progress_hours, total_shells_spent, admin_shell_adjustment)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (user_id)
		DO UPDATE SET purchased_progress_hours = economy.purchased_progress_hours + $2
	`, userID, hours); err != nil {
		return fmt.Errorf("update economy counter: %w", err)
	}

	return tx.Commit()
}

// Reservations loads every reservation row feeding the map.
func (s *Postgres) Reservations(ctx context.Context) ([]model.ReservationRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slack_id, inbound_flight_number, inbound_time, outbound_flight_number, outbound_time
		FROM reservations
	`)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ReservationRow
	for rows.Next() {
		var r model.ReservationRow
		if err := rows.Scan(&r.SlackID, &r.InboundFlightNumber, &r.InboundTime,
			&r.OutboundFlightNumber, &r.OutboundTime); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BySlackID looks up a display user. sql.ErrNoRows passes through so the
// caller can substitute the placeholder user.
func (s *Postgres) BySlackID(ctx context.Context, slackID string) (model.DisplayUser, error) {
	var u model.DisplayUser
	err := s.db.QueryRowContext(ctx, `
		SELECT name, image FROM users WHERE slack_id = $1
	`, slackID).Scan(&u.Name, &u.Image)
	if err != nil {
		return model.DisplayUser{}, err
	}
	return u, nil
}
