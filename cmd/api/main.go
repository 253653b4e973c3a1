package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Le0odev/gym-match-sub000/internal/auth"
	"github.com/Le0odev/gym-match-sub000/internal/chat"
	"github.com/Le0odev/gym-match-sub000/internal/common/database"
	"github.com/Le0odev/gym-match-sub000/internal/config"
	"github.com/Le0odev/gym-match-sub000/internal/gyms"
	"github.com/Le0odev/gym-match-sub000/internal/invites"
	"github.com/Le0odev/gym-match-sub000/internal/matching"
	"github.com/Le0odev/gym-match-sub000/internal/notification"
	"github.com/Le0odev/gym-match-sub000/internal/presence"
	"github.com/Le0odev/gym-match-sub000/internal/realtime"
	"github.com/Le0odev/gym-match-sub000/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL, &database.PostgresConfig{
		MaxOpenConns: cfg.DBMaxOpen,
		MaxIdleConns: cfg.DBMaxIdle,
		MaxLifetime:  cfg.DBMaxLife,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, presence degrades to database only: %v", err)
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	if err := runMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations applied")

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	// Repositories
	userRepo := users.NewRepository(db)
	matchRepo := matching.NewRepository(db)
	chatRepo := chat.NewRepository(db)
	inviteRepo := invites.NewRepository(db)
	notifRepo := notification.NewRepository(db)
	authRepo := auth.NewRepository(db)
	gymRepo := gyms.NewRepository(db)

	// Presence
	tracker := presence.NewTracker(redisClient, userRepo, cfg.OnlineWindow)
	hub.OnConnect = func(userID string) {
		tracker.Touch(context.Background(), userID)
	}
	hub.OnDisconnect = func(userID string) {
		tracker.Touch(context.Background(), userID)
	}

	// Push delivery
	var pushSender notification.PushSender = &notification.MockPushSender{}
	if cfg.FCMCredentialsFile != "" {
		fcm, err := notification.NewFCMSender(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			log.Printf("FCM unavailable, using mock push sender: %v", err)
		} else {
			pushSender = fcm
			log.Println("FCM push sender initialized")
		}
	}

	// Uploads
	var uploader users.Uploader
	if cfg.UploadDriver == "s3" {
		uploader, err = users.NewS3Uploader(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		uploader, err = users.NewLocalUploader(cfg.UploadLocalDir)
		if err != nil {
			log.Fatalf("Failed to initialize local uploader: %v", err)
		}
	}

	// Services
	notifService := notification.NewService(notifRepo, pushSender, hub)
	matchService := matching.NewService(matchRepo, hub, notifService,
		cfg.DefaultSearchRadiusKm, cfg.MatchProximityKm, cfg.OnlineWindow)
	chatService := chat.NewService(chatRepo, hub, notifService)
	inviteService := invites.NewService(inviteRepo, hub, notifService)
	userService := users.NewService(userRepo, uploader, cfg.MaxUploadBytes)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Router
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.Middleware(cfg.JWTSecret, tracker)

	auth.RegisterRoutes(router, auth.NewHandler(authService))
	users.RegisterRoutes(router, users.NewHandler(userService), authMiddleware)
	matching.RegisterRoutes(router, matching.NewHandler(matchService), authMiddleware)
	chat.RegisterRoutes(router, chat.NewHandler(chatService), authMiddleware)
	invites.RegisterRoutes(router, invites.NewHandler(inviteService), authMiddleware)
	notification.RegisterRoutes(router, notification.NewHandler(notifService), authMiddleware)
	gyms.RegisterRoutes(router, gyms.NewHandler(gymRepo), authMiddleware)

	router.Handle("/ws", authMiddleware(realtime.ServeWS(hub))).Methods("GET")

	if cfg.UploadDriver == "local" {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadLocalDir))))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.RequestURI, time.Since(start))
	})
}

func corsMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS gyms (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(200) NOT NULL,
			address VARCHAR(300),
			city VARCHAR(120),
			state VARCHAR(60),
			location GEOGRAPHY(Point, 4326),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gyms_location ON gyms USING GIST (location)`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			height_cm NUMERIC(5,2),
			weight_kg NUMERIC(5,2),
			experience_level VARCHAR(20) CHECK (experience_level IN ('beginner', 'intermediate', 'advanced')),
			gender VARCHAR(10) CHECK (gender IN ('male', 'female', 'other')),
			birth_date DATE,
			goal VARCHAR(200),
			available_time VARCHAR(100),
			city VARCHAR(120),
			state VARCHAR(60),
			gym_id UUID REFERENCES gyms(id) ON DELETE SET NULL,
			current_location GEOGRAPHY(Point, 4326),
			profile_picture VARCHAR(500),
			total_matches INTEGER NOT NULL DEFAULT 0,
			completed_workouts INTEGER NOT NULL DEFAULT 0,
			profile_views INTEGER NOT NULL DEFAULT 0,
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			show_online BOOLEAN NOT NULL DEFAULT TRUE,
			last_seen_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_location ON users USING GIST (current_location)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users (last_seen_at)`,

		`CREATE TABLE IF NOT EXISTS credentials (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash VARCHAR(64) NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS workout_preferences (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL UNIQUE,
			description VARCHAR(300),
			category VARCHAR(50) NOT NULL,
			icon VARCHAR(100),
			popularity INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS user_workout_preferences (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			preference_id UUID NOT NULL REFERENCES workout_preferences(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, preference_id)
		)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY,
			user_a_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_b_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected', 'unmatched')),
			compatibility_score INTEGER NOT NULL DEFAULT 0,
			is_super_like BOOLEAN NOT NULL DEFAULT FALSE,
			skip_reason VARCHAR(200),
			initial_message VARCHAR(500),
			last_message_at TIMESTAMPTZ,
			last_message_preview VARCHAR(100),
			unread_count_a INTEGER NOT NULL DEFAULT 0,
			unread_count_b INTEGER NOT NULL DEFAULT 0,
			unmatched_by UUID,
			unmatched_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (user_a_id <> user_b_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_a ON matches (user_a_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_b ON matches (user_b_id, status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_active_pair
			ON matches (LEAST(user_a_id, user_b_id), GREATEST(user_a_id, user_b_id))
			WHERE status IN ('pending', 'accepted')`,

		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content VARCHAR(2000) NOT NULL,
			message_type VARCHAR(20) NOT NULL DEFAULT 'text' CHECK (message_type IN ('text', 'workout_invite', 'location')),
			is_delivered BOOLEAN NOT NULL DEFAULT FALSE,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_match ON messages (match_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS workout_invites (
			id UUID PRIMARY KEY,
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			inviter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			invitee_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			workout_type VARCHAR(30) NOT NULL,
			workout_date DATE NOT NULL,
			workout_time VARCHAR(5) NOT NULL,
			gym_id UUID REFERENCES gyms(id) ON DELETE SET NULL,
			address VARCHAR(300),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			notes VARCHAR(500),
			status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'canceled', 'completed')),
			responded_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_parties ON workout_invites (inviter_id, invitee_id, status)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(20) NOT NULL CHECK (type IN ('match', 'message', 'like', 'workout_invite', 'system')),
			title VARCHAR(200) NOT NULL,
			message VARCHAR(500) NOT NULL,
			data JSONB,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS push_tokens (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token VARCHAR(4096) NOT NULL UNIQUE,
			device_type VARCHAR(10) NOT NULL CHECK (device_type IN ('ios', 'android', 'web')),
			device_id VARCHAR(200),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`INSERT INTO workout_preferences (name, description, category, icon) VALUES
			('Musculação', 'Treino de força com pesos', 'strength', 'dumbbell'),
			('Crossfit', 'Treino funcional de alta intensidade', 'functional', 'flame'),
			('Corrida', 'Corrida de rua ou esteira', 'cardio', 'run'),
			('Ciclismo', 'Pedal indoor ou outdoor', 'cardio', 'bike'),
			('Natação', 'Treino na piscina', 'cardio', 'swim'),
			('Yoga', 'Alongamento e equilíbrio', 'flexibility', 'lotus'),
			('Pilates', 'Fortalecimento do core', 'flexibility', 'mat'),
			('Funcional', 'Circuitos com peso corporal', 'functional', 'kettlebell'),
			('Lutas', 'Boxe, muay thai e afins', 'combat', 'gloves'),
			('Calistenia', 'Treino com peso do corpo', 'strength', 'bars')
		ON CONFLICT (name) DO NOTHING`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
