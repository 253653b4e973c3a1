// internal/auth/service.go
// Registration, login and token issuance

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// Service implements account registration and token issuance
type Service struct {
	repo            *Repository
	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService creates an auth service
func NewService(repo *Repository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		repo:            repo,
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

// Register creates a new account and returns tokens for it
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (string, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.CreateUser(ctx, req.Email, string(hash), req.Name)
	if err != nil {
		return "", nil, err
	}

	pair, err := s.issueTokens(ctx, userID)
	return userID, pair, err
}

// Login verifies credentials and returns tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, *TokenPair, error) {
	creds, err := s.repo.GetCredentialsByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, creds.UserID)
	return creds.UserID, pair, err
}

// Refresh exchanges a valid refresh token for a new pair. The old token is
// invalidated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.repo.ConsumeRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.accessTokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.StoreRefreshToken(ctx, userID, hashToken(refresh), now.Add(s.refreshTokenTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
