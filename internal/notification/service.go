// internal/notification/service.go
// Stored notification management and convenience emitters

package notification

import (
	"context"
	"fmt"
	"log"
)

// EventSink mirrors new notifications to connected clients
type EventSink interface {
	EmitToUser(userID, event string, payload interface{})
}

// Service stores notifications and fans them out over push and realtime
type Service struct {
	repo   *Repository
	push   PushSender
	events EventSink
}

// NewService creates a notification service. events may be nil.
func NewService(repo *Repository, push PushSender, events EventSink) *Service {
	return &Service{repo: repo, push: push, events: events}
}

// List returns a user's notifications
func (s *Service) List(ctx context.Context, userID string, f *ListFilters) ([]*Notification, error) {
	if f.Limit == 0 {
		f.Limit = 20
	}
	return s.repo.List(ctx, userID, f)
}

// UnreadCount returns the user's unread notification count
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one notification as read
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks all of a user's notifications as read
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification
func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	return s.repo.Delete(ctx, userID, notificationID)
}

// RegisterToken registers a device push token
func (s *Service) RegisterToken(ctx context.Context, userID string, req *RegisterTokenRequest) error {
	return s.repo.UpsertPushToken(ctx, userID, req)
}

// UnregisterToken deactivates a device push token
func (s *Service) UnregisterToken(ctx context.Context, userID, token string) error {
	return s.repo.DeactivateToken(ctx, userID, token)
}

// Emit stores a notification and delivers it over realtime and push.
// Failures are logged, never returned: emitters are fire-and-forget for
// their callers.
func (s *Service) Emit(ctx context.Context, userID, notifType, title, message string, data map[string]string) {
	n, err := s.repo.Insert(ctx, userID, notifType, title, message, data)
	if err != nil {
		log.Printf("notification: failed to store for %s: %v", userID, err)
		return
	}

	if s.events != nil {
		s.events.EmitToUser(userID, "notification:new", n)
	}

	if !s.repo.NotificationsEnabled(ctx, userID) {
		return
	}
	tokens, err := s.repo.ActiveTokens(ctx, userID)
	if err != nil {
		log.Printf("notification: failed to load tokens for %s: %v", userID, err)
		return
	}
	for _, token := range tokens {
		if err := s.push.Send(ctx, token, title, message, data); err != nil {
			log.Printf("notification: push failed for %s: %v", userID, err)
		}
	}
}

// NotifyNewLike tells a user someone liked them
func (s *Service) NotifyNewLike(ctx context.Context, recipientID, likerName string, superLike bool) {
	title := "New like"
	message := fmt.Sprintf("%s liked your profile", likerName)
	if superLike {
		title = "New super like"
		message = fmt.Sprintf("%s super liked your profile", likerName)
	}
	s.Emit(ctx, recipientID, TypeLike, title, message, nil)
}

// NotifyNewMatch tells a user they matched with a partner
func (s *Service) NotifyNewMatch(ctx context.Context, userID, partnerName, matchID string) {
	s.Emit(ctx, userID, TypeMatch, "New match",
		fmt.Sprintf("You matched with %s", partnerName),
		map[string]string{"matchId": matchID})
}

// NotifyNewMessage tells a user they received a chat message
func (s *Service) NotifyNewMessage(ctx context.Context, recipientID, senderName, matchID, preview string) {
	s.Emit(ctx, recipientID, TypeMessage, senderName, preview,
		map[string]string{"matchId": matchID})
}

// NotifyWorkoutInvite tells a user about workout invite activity
func (s *Service) NotifyWorkoutInvite(ctx context.Context, userID, title, message, inviteID string) {
	s.Emit(ctx, userID, TypeWorkoutInvite, title, message,
		map[string]string{"inviteId": inviteID})
}
