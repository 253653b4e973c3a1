// internal/chat/repository.go
// Message persistence and match conversation state

package chat

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// matchParty is the conversation context a message operation needs
type matchParty struct {
	MatchID string `db:"id"`
	UserAID string `db:"user_a_id"`
	UserBID string `db:"user_b_id"`
}

func (m *matchParty) other(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Repository stores chat messages over PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a chat repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// getAcceptedMatch loads an accepted match or fails with ErrMatchNotFound
func (r *Repository) getAcceptedMatch(ctx context.Context, matchID string) (*matchParty, error) {
	var m matchParty
	query := `SELECT id, user_a_id, user_b_id FROM matches WHERE id = $1 AND status = 'accepted'`
	if err := r.db.GetContext(ctx, &m, query, matchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// InsertMessage stores a message and updates the match's conversation
// summary (preview, timestamps, the recipient's unread counter)
func (r *Repository) InsertMessage(ctx context.Context, matchID, senderID, content, messageType string) (*Message, string, error) {
	m, err := r.getAcceptedMatch(ctx, matchID)
	if err != nil {
		return nil, "", err
	}
	if m.UserAID != senderID && m.UserBID != senderID {
		return nil, "", ErrNotParticipant
	}
	recipientID := m.other(senderID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	msg := &Message{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		SenderID:    senderID,
		Content:     content,
		MessageType: messageType,
	}
	if err := tx.GetContext(ctx, &msg.CreatedAt, `
		INSERT INTO messages (id, match_id, sender_id, content, message_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		msg.ID, msg.MatchID, msg.SenderID, msg.Content, msg.MessageType); err != nil {
		return nil, "", fmt.Errorf("failed to insert message: %w", err)
	}

	unreadColumn := "unread_count_a"
	if recipientID == m.UserBID {
		unreadColumn = "unread_count_b"
	}
	preview := truncatePreview(content)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE matches
		SET last_message_at = NOW(),
		    last_message_preview = $2,
		    %s = %s + 1,
		    updated_at = NOW()
		WHERE id = $1`, unreadColumn, unreadColumn),
		matchID, preview); err != nil {
		return nil, "", fmt.Errorf("failed to update conversation summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit: %w", err)
	}
	return msg, recipientID, nil
}

// ListMessages returns a page of messages, newest first, and marks the
// other side's messages delivered
func (r *Repository) ListMessages(ctx context.Context, matchID, userID string, limit, offset int) ([]*Message, error) {
	m, err := r.getAcceptedMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.UserAID != userID && m.UserBID != userID {
		return nil, ErrNotParticipant
	}

	messages := []*Message{}
	query := `
		SELECT * FROM messages
		WHERE match_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &messages, query, matchID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_delivered = TRUE
		WHERE match_id = $1 AND sender_id <> $2 AND is_delivered = FALSE`,
		matchID, userID); err != nil {
		return nil, fmt.Errorf("failed to mark delivered: %w", err)
	}
	return messages, nil
}

// MarkAllRead marks the other side's messages read and clears the reader's
// unread counter
func (r *Repository) MarkAllRead(ctx context.Context, matchID, userID string) error {
	m, err := r.getAcceptedMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.UserAID != userID && m.UserBID != userID {
		return ErrNotParticipant
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, is_delivered = TRUE
		WHERE match_id = $1 AND sender_id <> $2 AND is_read = FALSE`,
		matchID, userID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	unreadColumn := "unread_count_a"
	if userID == m.UserBID {
		unreadColumn = "unread_count_b"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE matches SET %s = 0 WHERE id = $1`, unreadColumn), matchID); err != nil {
		return fmt.Errorf("failed to clear unread counter: %w", err)
	}

	return tx.Commit()
}

// UnreadCounts aggregates unread messages for a user across matches
func (r *Repository) UnreadCounts(ctx context.Context, userID string) (*UnreadSummary, error) {
	rows := []struct {
		MatchID string `db:"match_id"`
		Count   int    `db:"count"`
	}{}
	query := `
		SELECT msg.match_id, COUNT(*) AS count
		FROM messages msg
		JOIN matches m ON m.id = msg.match_id AND m.status = 'accepted'
		WHERE (m.user_a_id = $1 OR m.user_b_id = $1)
		  AND msg.sender_id <> $1
		  AND msg.is_read = FALSE
		GROUP BY msg.match_id`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}

	summary := &UnreadSummary{ByMatch: make(map[string]int, len(rows))}
	for _, row := range rows {
		summary.ByMatch[row.MatchID] = row.Count
		summary.Total += row.Count
	}
	return summary, nil
}

// SenderName reads a user's display name for notification copy
func (r *Repository) SenderName(ctx context.Context, userID string) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT name FROM users WHERE id = $1`, userID); err != nil {
		return "", fmt.Errorf("failed to get sender name: %w", err)
	}
	return name, nil
}
