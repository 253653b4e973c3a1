// internal/auth/repository.go
// Credential and refresh token persistence

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository stores credentials and refresh tokens
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user row and its credentials in one transaction,
// returning the new user id
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, name string) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM credentials WHERE email = $1)`, email); err != nil {
		return "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return "", ErrEmailTaken
	}

	userID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`, userID, name, email); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credentials (user_id, email, password_hash) VALUES ($1, $2, $3)`,
		userID, email, passwordHash); err != nil {
		return "", fmt.Errorf("failed to create credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return userID, nil
}

// GetCredentialsByEmail fetches login credentials by email
func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	var c Credentials
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM credentials WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &c, nil
}

// StoreRefreshToken persists a hashed refresh token
func (r *Repository) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken deletes a valid refresh token and returns its user id
func (r *Repository) ConsumeRefreshToken(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW() RETURNING user_id`
	if err := r.db.GetContext(ctx, &userID, query, tokenHash); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return userID, nil
}

// PurgeExpiredTokens removes refresh tokens past their expiry
func (r *Repository) PurgeExpiredTokens(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`); err != nil {
		return fmt.Errorf("failed to purge tokens: %w", err)
	}
	return nil
}
