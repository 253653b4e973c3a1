// internal/users/models.go
// User profile and workout preference models

package users

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPreferenceNotFound = errors.New("workout preference not found")
)

// User is the full profile record
type User struct {
	ID                string     `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	Name              string     `db:"name" json:"name"`
	HeightCm          *float64   `db:"height_cm" json:"height,omitempty"`
	WeightKg          *float64   `db:"weight_kg" json:"weight,omitempty"`
	ExperienceLevel   *string    `db:"experience_level" json:"experienceLevel,omitempty"`
	Gender            *string    `db:"gender" json:"gender,omitempty"`
	BirthDate         *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Goal              *string    `db:"goal" json:"goal,omitempty"`
	AvailableTime     *string    `db:"available_time" json:"availableTime,omitempty"`
	City              *string    `db:"city" json:"city,omitempty"`
	State             *string    `db:"state" json:"state,omitempty"`
	GymID             *string    `db:"gym_id" json:"gymId,omitempty"`
	ProfilePicture    *string    `db:"profile_picture" json:"profilePicture,omitempty"`
	Latitude          *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64   `db:"longitude" json:"longitude,omitempty"`
	TotalMatches      int        `db:"total_matches" json:"totalMatches"`
	CompletedWorkouts int        `db:"completed_workouts" json:"completedWorkouts"`
	ProfileViews      int        `db:"profile_views" json:"profileViews"`
	NotificationsOn   bool       `db:"notifications_enabled" json:"notificationsEnabled"`
	ShowOnline        bool       `db:"show_online" json:"showOnline"`
	LastSeenAt        *time.Time `db:"last_seen_at" json:"lastSeenAt,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`

	Preferences []WorkoutPreference `db:"-" json:"workoutPreferences,omitempty"`
}

// WorkoutPreference is a catalog entry users can subscribe to
type WorkoutPreference struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Category    string  `db:"category" json:"category"`
	Icon        *string `db:"icon" json:"icon,omitempty"`
	Popularity  int     `db:"popularity" json:"popularity"`
}

// ProfileStats summarizes profile activity counters
type ProfileStats struct {
	TotalMatches      int `json:"totalMatches"`
	CompletedWorkouts int `json:"completedWorkouts"`
	ProfileViews      int `json:"profileViews"`
}
