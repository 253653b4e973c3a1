// internal/invites/models.go
// Workout invite models

package invites

import (
	"errors"
	"time"
)

var (
	ErrInviteNotFound = errors.New("workout invite not found")
	ErrMatchNotFound  = errors.New("active match not found")
	ErrNotParticipant = errors.New("user is not a participant")
	ErrInvalidState   = errors.New("invite is not in a valid state for this operation")
	ErrWrongActor     = errors.New("user cannot perform this transition")
)

// Invite statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCanceled  = "canceled"
	StatusCompleted = "completed"
)

// Invite is a scheduled workout proposal inside a match
type Invite struct {
	ID          string     `db:"id" json:"id"`
	MatchID     string     `db:"match_id" json:"matchId"`
	InviterID   string     `db:"inviter_id" json:"inviterId"`
	InviteeID   string     `db:"invitee_id" json:"inviteeId"`
	WorkoutType string     `db:"workout_type" json:"workoutType"`
	Date        string     `db:"workout_date" json:"date"`
	Time        string     `db:"workout_time" json:"time"`
	GymID       *string    `db:"gym_id" json:"gymId,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	Latitude    *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64   `db:"longitude" json:"longitude,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	Status      string     `db:"status" json:"status"`
	RespondedAt *time.Time `db:"responded_at" json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateInviteRequest proposes a workout to a match partner
type CreateInviteRequest struct {
	WorkoutType string   `json:"workoutType" validate:"required,oneof=strength cardio crossfit yoga pilates functional swimming running cycling other"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string   `json:"time" validate:"required,datetime=15:04"`
	GymID       *string  `json:"gymId" validate:"omitempty,uuid4"`
	Address     *string  `json:"address" validate:"omitempty,max=300"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Notes       *string  `json:"notes" validate:"omitempty,max=500"`
}
