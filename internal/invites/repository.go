// internal/invites/repository.go
// Workout invite persistence

package invites

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository stores workout invites over PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates an invite repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetAcceptedMatchParties returns the two user ids of an accepted match
func (r *Repository) GetAcceptedMatchParties(ctx context.Context, matchID string) (string, string, error) {
	var row struct {
		UserAID string `db:"user_a_id"`
		UserBID string `db:"user_b_id"`
	}
	query := `SELECT user_a_id, user_b_id FROM matches WHERE id = $1 AND status = 'accepted'`
	if err := r.db.GetContext(ctx, &row, query, matchID); err != nil {
		if err == sql.ErrNoRows {
			return "", "", ErrMatchNotFound
		}
		return "", "", fmt.Errorf("failed to get match: %w", err)
	}
	return row.UserAID, row.UserBID, nil
}

// Insert stores a new pending invite
func (r *Repository) Insert(ctx context.Context, inv *Invite) error {
	inv.ID = uuid.NewString()
	inv.Status = StatusPending
	query := `
		INSERT INTO workout_invites
			(id, match_id, inviter_id, invitee_id, workout_type, workout_date,
			 workout_time, gym_id, address, latitude, longitude, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		inv.ID, inv.MatchID, inv.InviterID, inv.InviteeID, inv.WorkoutType,
		inv.Date, inv.Time, inv.GymID, inv.Address, inv.Latitude, inv.Longitude,
		inv.Notes, inv.Status)
	if err := row.Scan(&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetByID loads an invite
func (r *Repository) GetByID(ctx context.Context, inviteID string) (*Invite, error) {
	var inv Invite
	if err := r.db.GetContext(ctx, &inv, `SELECT * FROM workout_invites WHERE id = $1`, inviteID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &inv, nil
}

// ListForUser returns invites where the user is a party, newest first
func (r *Repository) ListForUser(ctx context.Context, userID string, status *string) ([]*Invite, error) {
	invs := []*Invite{}
	query := `
		SELECT * FROM workout_invites
		WHERE (inviter_id = $1 OR invitee_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &invs, query, userID, status); err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invs, nil
}

// UpdateStatus transitions an invite from an expected status, returning
// ErrInvalidState when the row moved underneath
func (r *Repository) UpdateStatus(ctx context.Context, inviteID, fromStatus, toStatus string) error {
	query := `
		UPDATE workout_invites
		SET status = $3, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, inviteID, fromStatus, toStatus)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidState
	}
	return nil
}

// IncrementCompletedWorkouts bumps the completed workout counter for both
// parties of a finished invite
func (r *Repository) IncrementCompletedWorkouts(ctx context.Context, userIDs ...string) error {
	query := `UPDATE users SET completed_workouts = completed_workouts + 1 WHERE id = ANY($1::uuid[])`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("failed to increment completed workouts: %w", err)
	}
	return nil
}

// UserName reads a display name for notification copy
func (r *Repository) UserName(ctx context.Context, userID string) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT name FROM users WHERE id = $1`, userID); err != nil {
		return "", fmt.Errorf("failed to get user name: %w", err)
	}
	return name, nil
}
