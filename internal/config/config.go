// internal/config/config.go
// Application configuration from environment variables

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string
	DBMaxOpen   int
	DBMaxIdle   int
	DBMaxLife   time.Duration

	// Redis (optional)
	RedisURL string

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Matching
	DefaultSearchRadiusKm int
	MatchProximityKm      float64
	OnlineWindow          time.Duration

	// Push notifications
	FCMCredentialsFile string

	// Uploads
	UploadDriver   string // "s3" or "local"
	UploadLocalDir string
	S3Bucket       string
	S3Region       string
	MaxUploadBytes int64

	// CORS
	AllowedOrigins string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxOpen:   getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:   getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBMaxLife:   getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		DefaultSearchRadiusKm: getEnvInt("DEFAULT_SEARCH_RADIUS_KM", 25),
		MatchProximityKm:      getEnvFloat("MATCH_PROXIMITY_KM", 100),
		OnlineWindow:          getEnvDuration("ONLINE_WINDOW", 15*time.Minute),

		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),

		UploadDriver:   getEnv("UPLOAD_DRIVER", "local"),
		UploadLocalDir: getEnv("UPLOAD_LOCAL_DIR", "./uploads"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.UploadDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when UPLOAD_DRIVER=s3")
	}
	if c.DefaultSearchRadiusKm <= 0 {
		return fmt.Errorf("DEFAULT_SEARCH_RADIUS_KM must be positive")
	}
	return nil
}

// IsProduction returns true in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
