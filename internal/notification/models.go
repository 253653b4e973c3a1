// internal/notification/models.go
// Notification and push token models

package notification

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification types
const (
	TypeMatch         = "match"
	TypeMessage       = "message"
	TypeLike          = "like"
	TypeWorkoutInvite = "workout_invite"
	TypeSystem        = "system"
)

// Notification is a stored in-app notification
type Notification struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Message   string          `db:"message" json:"message"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"isRead"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// PushToken is a registered device token
type PushToken struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Token      string    `db:"token" json:"token"`
	DeviceType string    `db:"device_type" json:"deviceType"`
	DeviceID   *string   `db:"device_id" json:"deviceId,omitempty"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// ListFilters narrows the notification listing
type ListFilters struct {
	Type       *string `validate:"omitempty,oneof=match message like workout_invite system"`
	UnreadOnly bool
	Limit      int `validate:"omitempty,gte=1,lte=100"`
	Offset     int `validate:"omitempty,gte=0"`
}

// RegisterTokenRequest registers a device push token
type RegisterTokenRequest struct {
	Token      string  `json:"token" validate:"required,max=4096"`
	DeviceType string  `json:"deviceType" validate:"required,oneof=ios android web"`
	DeviceID   *string `json:"deviceId" validate:"omitempty,max=200"`
}
