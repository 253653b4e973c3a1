// internal/matching/models.go
// Domain models for partner discovery and match records

package matching

import (
	"errors"
	"time"
)

// Match statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusUnmatched = "unmatched"
)

// Typed errors mapped to HTTP statuses by the handlers
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrNotMatchParticipant = errors.New("user is not a participant of this match")
	ErrInvalidMatchState   = errors.New("match is not in a valid state for this operation")
	ErrInvalidFilters      = errors.New("invalid discovery filters")
)

// Match is a directional like record between two users. UserAID is always
// the initiator of the first like.
type Match struct {
	ID                 string     `db:"id" json:"id"`
	UserAID            string     `db:"user_a_id" json:"userAId"`
	UserBID            string     `db:"user_b_id" json:"userBId"`
	Status             string     `db:"status" json:"status"`
	CompatibilityScore int        `db:"compatibility_score" json:"compatibilityScore"`
	IsSuperLike        bool       `db:"is_super_like" json:"isSuperLike"`
	SkipReason         *string    `db:"skip_reason" json:"skipReason,omitempty"`
	InitialMessage     *string    `db:"initial_message" json:"initialMessage,omitempty"`
	LastMessageAt      *time.Time `db:"last_message_at" json:"lastMessageAt,omitempty"`
	LastMessagePreview *string    `db:"last_message_preview" json:"lastMessagePreview,omitempty"`
	UnreadCountA       int        `db:"unread_count_a" json:"-"`
	UnreadCountB       int        `db:"unread_count_b" json:"-"`
	UnmatchedBy        *string    `db:"unmatched_by" json:"unmatchedBy,omitempty"`
	UnmatchedAt        *time.Time `db:"unmatched_at" json:"unmatchedAt,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// OtherUser returns the counterpart of userID in this match
func (m *Match) OtherUser(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// HasParticipant reports whether userID is a party to this match
func (m *Match) HasParticipant(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// UserProfile is the slice of the user record the matching engine needs.
// Duplicated here rather than importing the users package so the engine
// stays self-contained.
type UserProfile struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	HeightCm        *float64   `db:"height_cm" json:"height,omitempty"`
	WeightKg        *float64   `db:"weight_kg" json:"weight,omitempty"`
	ExperienceLevel *string    `db:"experience_level" json:"experienceLevel,omitempty"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	BirthDate       *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Goal            *string    `db:"goal" json:"goal,omitempty"`
	AvailableTime   *string    `db:"available_time" json:"availableTime,omitempty"`
	City            *string    `db:"city" json:"city,omitempty"`
	State           *string    `db:"state" json:"state,omitempty"`
	GymID           *string    `db:"gym_id" json:"gymId,omitempty"`
	ProfilePicture  *string    `db:"profile_picture" json:"profilePicture,omitempty"`
	Latitude        *float64   `db:"latitude" json:"-"`
	Longitude       *float64   `db:"longitude" json:"-"`
	LastSeenAt      *time.Time `db:"last_seen_at" json:"-"`

	// Loaded separately from user_workout_preferences
	PreferenceIDs []string `db:"-" json:"-"`
}

// HasLocation reports whether the profile carries usable coordinates
func (p *UserProfile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Age returns completed years since BirthDate, nil when unset
func (p *UserProfile) Age() *int {
	if p.BirthDate == nil {
		return nil
	}
	now := time.Now()
	years := now.Year() - p.BirthDate.Year()
	if now.YearDay() < p.BirthDate.YearDay() {
		years--
	}
	return &years
}

// Candidate is a discovery result: a profile plus relationship context
type Candidate struct {
	Profile            *UserProfile `json:"profile"`
	DistanceKm         *float64     `json:"distanceKm,omitempty"`
	CompatibilityScore int          `json:"compatibilityScore"`
	Factors            []string     `json:"compatibilityFactors"`
	Age                *int         `json:"age,omitempty"`
	IncomingLike       bool         `json:"incomingLike"`
}

// MatchStats summarizes a user's match history
type MatchStats struct {
	TotalLikesSent     int `json:"totalLikesSent"`
	TotalLikesReceived int `json:"totalLikesReceived"`
	ActiveMatches      int `json:"activeMatches"`
	TotalSkips         int `json:"totalSkips"`
}
