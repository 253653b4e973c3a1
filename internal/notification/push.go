// internal/notification/push.go
// Push delivery via Firebase Cloud Messaging

package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushSender delivers a push message to a device token
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMSender sends pushes through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initializes Firebase messaging from a credentials file
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

// MockPushSender logs instead of sending, used when FCM is not configured
type MockPushSender struct{}

func (s *MockPushSender) Send(_ context.Context, token, title, body string, _ map[string]string) error {
	log.Printf("push (mock): token=%s title=%q body=%q", truncateToken(token), title, body)
	return nil
}

func truncateToken(token string) string {
	if len(token) > 12 {
		return token[:12] + "..."
	}
	return token
}
