// internal/chat/service.go
// Messaging logic inside accepted matches

package chat

import (
	"context"
	"log"
)

// EventSink delivers realtime events to connected users
type EventSink interface {
	EmitToUser(userID, event string, payload interface{})
}

// Notifier sends message notifications
type Notifier interface {
	NotifyNewMessage(ctx context.Context, recipientID, senderName, matchID, preview string)
}

// Service implements chat inside accepted matches
type Service struct {
	repo     *Repository
	events   EventSink
	notifier Notifier
}

// NewService creates a chat service. events and notifier may be nil.
func NewService(repo *Repository, events EventSink, notifier Notifier) *Service {
	return &Service{repo: repo, events: events, notifier: notifier}
}

// Send stores a message and fans it out to the recipient. Realtime and
// notification delivery are best-effort.
func (s *Service) Send(ctx context.Context, matchID, senderID string, req *SendMessageRequest) (*Message, error) {
	messageType := req.MessageType
	if messageType == "" {
		messageType = TypeText
	}

	msg, recipientID, err := s.repo.InsertMessage(ctx, matchID, senderID, req.Content, messageType)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.EmitToUser(recipientID, "message:new", msg)
	}
	if s.notifier != nil {
		senderName, err := s.repo.SenderName(ctx, senderID)
		if err != nil {
			log.Printf("chat: failed to resolve sender name: %v", err)
			senderName = "New message"
		}
		s.notifier.NotifyNewMessage(ctx, recipientID, senderName, matchID, truncatePreview(msg.Content))
	}
	return msg, nil
}

// List returns a page of messages and marks inbound ones delivered
func (s *Service) List(ctx context.Context, matchID, userID string, limit, offset int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, matchID, userID, limit, offset)
}

// MarkAllRead marks the conversation read for the user
func (s *Service) MarkAllRead(ctx context.Context, matchID, userID string) error {
	return s.repo.MarkAllRead(ctx, matchID, userID)
}

// UnreadCounts returns per-match and total unread counts
func (s *Service) UnreadCounts(ctx context.Context, userID string) (*UnreadSummary, error) {
	return s.repo.UnreadCounts(ctx, userID)
}
