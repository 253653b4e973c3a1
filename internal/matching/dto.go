// internal/matching/dto.go
// Request/response shapes for the matching endpoints

package matching

import (
	"fmt"
	"net/url"
	"strconv"
)

// DiscoverFilters narrows the candidate search. All fields optional.
type DiscoverFilters struct {
	DistanceKm      int      `json:"distanceKm" validate:"omitempty,gte=1,lte=500"`
	WorkoutTypes    []string `json:"workoutTypes" validate:"omitempty,dive,uuid4"`
	MinHeight       *float64 `json:"minHeight" validate:"omitempty,gte=50,lte=300"`
	MaxHeight       *float64 `json:"maxHeight" validate:"omitempty,gte=50,lte=300"`
	MinWeight       *float64 `json:"minWeight" validate:"omitempty,gte=20,lte=400"`
	MaxWeight       *float64 `json:"maxWeight" validate:"omitempty,gte=20,lte=400"`
	ExperienceLevel *string  `json:"experienceLevel" validate:"omitempty,oneof=beginner intermediate advanced"`
	Gender          *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	MinAge          *int     `json:"minAge" validate:"omitempty,gte=18,lte=120"`
	MaxAge          *int     `json:"maxAge" validate:"omitempty,gte=18,lte=120"`
	City            *string  `json:"city" validate:"omitempty,max=120"`
	State           *string  `json:"state" validate:"omitempty,max=60"`
	GymID           *string  `json:"gymId" validate:"omitempty,uuid4"`
	OnlineOnly      bool     `json:"onlineOnly"`
	Limit           int      `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset          int      `json:"offset" validate:"omitempty,gte=0"`
}

// ApplyDefaults fills zero values with the documented defaults
func (f *DiscoverFilters) ApplyDefaults(defaultRadiusKm int) {
	if f.DistanceKm == 0 {
		f.DistanceKm = defaultRadiusKm
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
}

// FiltersFromQuery parses the simple GET variant of discovery filters
func FiltersFromQuery(q url.Values) (*DiscoverFilters, error) {
	f := &DiscoverFilters{}

	intParams := map[string]*int{
		"distanceKm": &f.DistanceKm,
		"limit":      &f.Limit,
		"offset":     &f.Offset,
	}
	for name, dst := range intParams {
		if raw := q.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidFilters, name)
			}
			*dst = n
		}
	}

	if raw := q.Get("workoutType"); raw != "" {
		f.WorkoutTypes = []string{raw}
	}
	if raw := q.Get("experienceLevel"); raw != "" {
		f.ExperienceLevel = &raw
	}
	if raw := q.Get("gender"); raw != "" {
		f.Gender = &raw
	}
	if raw := q.Get("city"); raw != "" {
		f.City = &raw
	}
	if raw := q.Get("state"); raw != "" {
		f.State = &raw
	}
	if raw := q.Get("gymId"); raw != "" {
		f.GymID = &raw
	}
	if raw := q.Get("onlineOnly"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: onlineOnly must be a boolean", ErrInvalidFilters)
		}
		f.OnlineOnly = b
	}
	if raw := q.Get("minAge"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: minAge must be an integer", ErrInvalidFilters)
		}
		f.MinAge = &n
	}
	if raw := q.Get("maxAge"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: maxAge must be an integer", ErrInvalidFilters)
		}
		f.MaxAge = &n
	}

	return f, nil
}

// Validate runs range checks beyond what struct tags express
func (f *DiscoverFilters) Validate() error {
	if f.DistanceKm < 0 || f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: negative values are not allowed", ErrInvalidFilters)
	}
	if f.MinHeight != nil && f.MaxHeight != nil && *f.MinHeight > *f.MaxHeight {
		return fmt.Errorf("%w: minHeight exceeds maxHeight", ErrInvalidFilters)
	}
	if f.MinWeight != nil && f.MaxWeight != nil && *f.MinWeight > *f.MaxWeight {
		return fmt.Errorf("%w: minWeight exceeds maxWeight", ErrInvalidFilters)
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		return fmt.Errorf("%w: minAge exceeds maxAge", ErrInvalidFilters)
	}
	return nil
}

// LikeRequest carries the optional opening message of a like
type LikeRequest struct {
	Message *string `json:"message" validate:"omitempty,max=500"`
}

// SkipRequest carries the optional reason of a skip
type SkipRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=200"`
}

// LikeResult is the outcome of a like/super-like
type LikeResult struct {
	MatchStatus string  `json:"matchStatus"`
	MatchID     *string `json:"matchId,omitempty"`
	IsNewMatch  bool    `json:"isNewMatch"`
}

// DiscoverResponse wraps a page of candidates
type DiscoverResponse struct {
	Candidates []*Candidate `json:"candidates"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}

// CompatibilityResponse is the pairwise score report
type CompatibilityResponse struct {
	UserID  string   `json:"userId"`
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

// MatchView is an accepted match as seen by one participant
type MatchView struct {
	ID                 string       `json:"id"`
	Partner            *UserProfile `json:"partner"`
	CompatibilityScore int          `json:"compatibilityScore"`
	IsSuperLike        bool         `json:"isSuperLike"`
	LastMessagePreview *string      `json:"lastMessagePreview,omitempty"`
	UnreadCount        int          `json:"unreadCount"`
	MatchedAt          string       `json:"matchedAt"`
}
