// internal/chat/models.go
// Chat message models

package chat

import (
	"errors"
	"time"
)

var (
	ErrMatchNotFound  = errors.New("active match not found")
	ErrNotParticipant = errors.New("user is not a participant of this match")
)

// Message types
const (
	TypeText          = "text"
	TypeWorkoutInvite = "workout_invite"
	TypeLocation      = "location"
)

// Message is one chat message inside an accepted match
type Message struct {
	ID          string    `db:"id" json:"id"`
	MatchID     string    `db:"match_id" json:"matchId"`
	SenderID    string    `db:"sender_id" json:"senderId"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"messageType"`
	IsDelivered bool      `db:"is_delivered" json:"isDelivered"`
	IsRead      bool      `db:"is_read" json:"isRead"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// SendMessageRequest creates a new message
type SendMessageRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=2000"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text workout_invite location"`
}

// UnreadSummary is the global unread report
type UnreadSummary struct {
	Total   int            `json:"total"`
	ByMatch map[string]int `json:"byMatch"`
}

// previewMaxRunes bounds the conversation preview stored on the match
const previewMaxRunes = 80

// truncatePreview shortens content to previewMaxRunes characters without
// splitting a multibyte rune
func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewMaxRunes {
		return content
	}
	return string(runes[:previewMaxRunes])
}
