// internal/users/dto.go
// Request shapes for the user endpoints

package users

// UpdateProfileRequest carries partial profile updates, nil fields untouched
type UpdateProfileRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=2,max=100"`
	HeightCm        *float64 `json:"height" validate:"omitempty,gte=50,lte=300"`
	WeightKg        *float64 `json:"weight" validate:"omitempty,gte=20,lte=400"`
	ExperienceLevel *string  `json:"experienceLevel" validate:"omitempty,oneof=beginner intermediate advanced"`
	Gender          *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate       *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Goal            *string  `json:"goal" validate:"omitempty,max=200"`
	AvailableTime   *string  `json:"availableTime" validate:"omitempty,max=100"`
	City            *string  `json:"city" validate:"omitempty,max=120"`
	State           *string  `json:"state" validate:"omitempty,max=60"`
	GymID           *string  `json:"gymId" validate:"omitempty,uuid4"`
	NotificationsOn *bool    `json:"notificationsEnabled"`
	ShowOnline      *bool    `json:"showOnline"`
}

// UpdateLocationRequest sets the user's current coordinates
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// SetPreferencesRequest replaces the user's workout preference set
type SetPreferencesRequest struct {
	PreferenceIDs []string `json:"preferenceIds" validate:"required,max=20,dive,uuid4"`
}
