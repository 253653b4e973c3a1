// internal/users/service.go
// Profile management logic

package users

import (
	"context"
	"fmt"
	"log"
)

// Service implements profile management
type Service struct {
	repo           *Repository
	uploader       Uploader
	maxUploadBytes int64
}

// NewService creates a user service
func NewService(repo *Repository, uploader Uploader, maxUploadBytes int64) *Service {
	return &Service{repo: repo, uploader: uploader, maxUploadBytes: maxUploadBytes}
}

// GetProfile returns a user's own profile
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ViewProfile returns another user's profile and bumps their view counter.
// The counter bump is best-effort.
func (s *Service) ViewProfile(ctx context.Context, viewerID, targetID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if viewerID != targetID {
		if err := s.repo.IncrementProfileViews(ctx, targetID); err != nil {
			log.Printf("users: failed to increment profile views for %s: %v", targetID, err)
		}
	}
	return u, nil
}

// UpdateProfile applies a partial profile update
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*User, error) {
	if err := s.repo.UpdateProfile(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// UpdateLocation stores the user's current coordinates
func (s *Service) UpdateLocation(ctx context.Context, userID string, req *UpdateLocationRequest) error {
	return s.repo.UpdateLocation(ctx, userID, req.Latitude, req.Longitude)
}

// ListPreferenceCatalog returns the workout preference catalog
func (s *Service) ListPreferenceCatalog(ctx context.Context) ([]WorkoutPreference, error) {
	return s.repo.ListPreferenceCatalog(ctx)
}

// SetPreferences replaces the user's workout preference set
func (s *Service) SetPreferences(ctx context.Context, userID string, preferenceIDs []string) error {
	return s.repo.ReplacePreferences(ctx, userID, preferenceIDs)
}

// UploadPhoto validates, stores and records a profile photo
func (s *Service) UploadPhoto(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	if !AllowedContentType(contentType) {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxUploadBytes)
	}

	url, err := s.uploader.Upload(ctx, userID, data, contentType)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateProfilePicture(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// GetStats returns profile activity counters
func (s *Service) GetStats(ctx context.Context, userID string) (*ProfileStats, error) {
	return s.repo.GetStats(ctx, userID)
}
