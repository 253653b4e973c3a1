// internal/users/repository.go
// User profile persistence

package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `
	u.id, u.email, u.name, u.height_cm, u.weight_kg, u.experience_level,
	u.gender, u.birth_date, u.goal, u.available_time, u.city, u.state,
	u.gym_id, u.profile_picture, u.total_matches, u.completed_workouts,
	u.profile_views, u.notifications_enabled, u.show_online, u.last_seen_at,
	u.created_at, u.updated_at,
	ST_Y(u.current_location::geometry) AS latitude,
	ST_X(u.current_location::geometry) AS longitude`

// Repository provides user persistence over PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID loads a user with their workout preferences
func (r *Repository) GetByID(ctx context.Context, userID string) (*User, error) {
	var u User
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)
	if err := r.db.GetContext(ctx, &u, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	prefs := []WorkoutPreference{}
	prefQuery := `
		SELECT wp.id, wp.name, wp.description, wp.category, wp.icon, wp.popularity
		FROM workout_preferences wp
		JOIN user_workout_preferences uwp ON uwp.preference_id = wp.id
		WHERE uwp.user_id = $1
		ORDER BY wp.name`
	if err := r.db.SelectContext(ctx, &prefs, prefQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	u.Preferences = prefs
	return &u, nil
}

// UpdateProfile applies non-nil fields of the request to the user row
func (r *Repository) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) error {
	sets := []string{}
	args := []interface{}{}
	argIdx := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.HeightCm != nil {
		add("height_cm", *req.HeightCm)
	}
	if req.WeightKg != nil {
		add("weight_kg", *req.WeightKg)
	}
	if req.ExperienceLevel != nil {
		add("experience_level", *req.ExperienceLevel)
	}
	if req.Gender != nil {
		add("gender", *req.Gender)
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return fmt.Errorf("invalid birth date: %w", err)
		}
		add("birth_date", bd)
	}
	if req.Goal != nil {
		add("goal", *req.Goal)
	}
	if req.AvailableTime != nil {
		add("available_time", *req.AvailableTime)
	}
	if req.City != nil {
		add("city", *req.City)
	}
	if req.State != nil {
		add("state", *req.State)
	}
	if req.GymID != nil {
		add("gym_id", *req.GymID)
	}
	if req.NotificationsOn != nil {
		add("notifications_enabled", *req.NotificationsOn)
	}
	if req.ShowOnline != nil {
		add("show_online", *req.ShowOnline)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIdx)
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLocation sets the user's PostGIS point from lon/lat
func (r *Repository) UpdateLocation(ctx context.Context, userID string, lat, lon float64) error {
	query := `
		UPDATE users
		SET current_location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		    updated_at = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, lon, lat)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfilePicture stores the uploaded picture URL
func (r *Repository) UpdateProfilePicture(ctx context.Context, userID, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile_picture = $2, updated_at = NOW() WHERE id = $1`, userID, url)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListPreferenceCatalog returns the workout preference catalog
func (r *Repository) ListPreferenceCatalog(ctx context.Context) ([]WorkoutPreference, error) {
	prefs := []WorkoutPreference{}
	query := `SELECT id, name, description, category, icon, popularity
	          FROM workout_preferences ORDER BY popularity DESC, name`
	if err := r.db.SelectContext(ctx, &prefs, query); err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}

// ReplacePreferences swaps the user's workout preference set atomically
func (r *Repository) ReplacePreferences(ctx context.Context, userID string, preferenceIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(preferenceIDs) > 0 {
		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM workout_preferences WHERE id = ANY($1::uuid[])`,
			pq.Array(preferenceIDs)); err != nil {
			return fmt.Errorf("failed to verify preferences: %w", err)
		}
		if count != len(preferenceIDs) {
			return ErrPreferenceNotFound
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_workout_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	for _, prefID := range preferenceIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_workout_preferences (user_id, preference_id) VALUES ($1, $2)`,
			userID, prefID); err != nil {
			return fmt.Errorf("failed to add preference: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE workout_preferences SET popularity = (
			SELECT COUNT(*) FROM user_workout_preferences WHERE preference_id = workout_preferences.id
		) WHERE id = ANY($1::uuid[])`, pq.Array(preferenceIDs)); err != nil {
		return fmt.Errorf("failed to update popularity: %w", err)
	}

	return tx.Commit()
}

// IncrementProfileViews bumps the profile view counter
func (r *Repository) IncrementProfileViews(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET profile_views = profile_views + 1 WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to increment profile views: %w", err)
	}
	return nil
}

// TouchLastSeen updates the last activity timestamp
func (r *Repository) TouchLastSeen(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}
	return nil
}

// GetStats reads the profile activity counters
func (r *Repository) GetStats(ctx context.Context, userID string) (*ProfileStats, error) {
	var s ProfileStats
	query := `SELECT total_matches, completed_workouts, profile_views FROM users WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, userID)
	if err := row.Scan(&s.TotalMatches, &s.CompletedWorkouts, &s.ProfileViews); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile stats: %w", err)
	}
	return &s, nil
}
