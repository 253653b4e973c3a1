// internal/notification/repository.go
// Notification and push token persistence

package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository stores notifications and push tokens
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a notification repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a notification and returns it
func (r *Repository) Insert(ctx context.Context, userID, notifType, title, message string, data map[string]string) (*Notification, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		raw = b
	}

	n := &Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    raw,
	}
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	if err := r.db.GetContext(ctx, &n.CreatedAt, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Data); err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

// List returns a user's notifications, newest first
func (r *Repository) List(ctx context.Context, userID string, f *ListFilters) ([]*Notification, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIdx := 2

	if f.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *f.Type)
		argIdx++
	}
	if f.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}

	query := fmt.Sprintf(`
		SELECT * FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, strings.Join(conditions, " AND "), argIdx, argIdx+1)
	args = append(args, f.Limit, f.Offset)

	notifs := []*Notification{}
	if err := r.db.SelectContext(ctx, &notifs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifs, nil
}

// UnreadCount counts unread notifications for a user
func (r *Repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read, scoped to its owner
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read
func (r *Repository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}
	return nil
}

// Delete removes a notification, scoped to its owner
func (r *Repository) Delete(ctx context.Context, userID, notificationID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// UpsertPushToken registers or refreshes a device token
func (r *Repository) UpsertPushToken(ctx context.Context, userID string, req *RegisterTokenRequest) error {
	query := `
		INSERT INTO push_tokens (id, user_id, token, device_type, device_id, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    device_type = EXCLUDED.device_type,
		    device_id = EXCLUDED.device_id,
		    is_active = TRUE,
		    updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), userID, req.Token, req.DeviceType, req.DeviceID); err != nil {
		return fmt.Errorf("failed to upsert push token: %w", err)
	}
	return nil
}

// DeactivateToken marks a token inactive without deleting it
func (r *Repository) DeactivateToken(ctx context.Context, userID, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE push_tokens SET is_active = FALSE, updated_at = NOW() WHERE token = $1 AND user_id = $2`,
		token, userID); err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	return nil
}

// ActiveTokens returns active device tokens for a user
func (r *Repository) ActiveTokens(ctx context.Context, userID string) ([]string, error) {
	tokens := []string{}
	query := `SELECT token FROM push_tokens WHERE user_id = $1 AND is_active = TRUE`
	if err := r.db.SelectContext(ctx, &tokens, query, userID); err != nil {
		return nil, fmt.Errorf("failed to load push tokens: %w", err)
	}
	return tokens, nil
}

// NotificationsEnabled reads the user's notification setting, defaulting on
func (r *Repository) NotificationsEnabled(ctx context.Context, userID string) bool {
	var enabled bool
	if err := r.db.GetContext(ctx, &enabled,
		`SELECT notifications_enabled FROM users WHERE id = $1`, userID); err != nil {
		if err != sql.ErrNoRows {
			return true
		}
		return false
	}
	return enabled
}
