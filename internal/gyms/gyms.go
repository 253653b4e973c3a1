// internal/gyms/gyms.go
// Gym catalog with nearby lookup

package gyms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrGymNotFound = errors.New("gym not found")

// Gym is a catalog entry referenced by users and workout invites
type Gym struct {
	ID        string   `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Address   *string  `db:"address" json:"address,omitempty"`
	City      *string  `db:"city" json:"city,omitempty"`
	State     *string  `db:"state" json:"state,omitempty"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
}

const gymColumns = `
	g.id, g.name, g.address, g.city, g.state,
	ST_Y(g.location::geometry) AS latitude,
	ST_X(g.location::geometry) AS longitude`

// Repository provides gym lookups over PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a gym repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID loads one gym
func (r *Repository) GetByID(ctx context.Context, gymID string) (*Gym, error) {
	var g Gym
	query := fmt.Sprintf(`SELECT %s FROM gyms g WHERE g.id = $1`, gymColumns)
	if err := r.db.GetContext(ctx, &g, query, gymID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGymNotFound
		}
		return nil, fmt.Errorf("failed to get gym: %w", err)
	}
	return &g, nil
}

// List returns all gyms, optionally filtered by city
func (r *Repository) List(ctx context.Context, city *string) ([]*Gym, error) {
	out := []*Gym{}
	query := fmt.Sprintf(`
		SELECT %s FROM gyms g
		WHERE $1::text IS NULL OR LOWER(g.city) = LOWER($1)
		ORDER BY g.name`, gymColumns)
	if err := r.db.SelectContext(ctx, &out, query, city); err != nil {
		return nil, fmt.Errorf("failed to list gyms: %w", err)
	}
	return out, nil
}

// Nearby returns gyms within radiusKm of a point, closest first
func (r *Repository) Nearby(ctx context.Context, lat, lon float64, radiusKm float64) ([]*Gym, error) {
	out := []*Gym{}
	query := fmt.Sprintf(`
		SELECT %s FROM gyms g
		WHERE g.location IS NOT NULL
		  AND ST_DWithin(g.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY ST_Distance(g.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT 50`, gymColumns)
	if err := r.db.SelectContext(ctx, &out, query, lon, lat, radiusKm*1000); err != nil {
		return nil, fmt.Errorf("failed to find nearby gyms: %w", err)
	}
	return out, nil
}
