// cmd/server/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/config"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/logging"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/middleware"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/uploads"
)

func main() {
	// --- Load config (.env + config.yaml + env overrides) ---
	_ = godotenv.Load()
	cfg := config.Load()

	// --- Logger ---
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format == "json")

	// --- Connect to MongoDB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Debug("connecting to database")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		slog.Error("db connect error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := client.Ping(ctx, nil); err != nil {
		slog.Error("db ping error", "err", err)
		os.Exit(1)
	}
	slog.Debug("database connection ready")

	db := client.Database(cfg.Database.Name)
	if err := repo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("index error", "err", err)
		os.Exit(1)
	}
	store := repo.New(db)

	// --- Uploads directory ---
	files, err := uploads.New(cfg.Uploads.Dir)
	if err != nil {
		slog.Error("uploads dir error", "err", err)
		os.Exit(1)
	}

	// --- Token manager ---
	tm := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	// --- Router ---
	mux := chi.NewRouter()

	// Ensure request ID then log requests with slog
	mux.Use(middleware.RequestID(cfg.Security.RequestID.TrustHeader))
	mux.Use(middleware.EnrichLogger)
	mux.Use(middleware.SlogRequestLogger)
	if cfg.Security.RateLimit.Enabled {
		mux.Use(middleware.RateLimitWith(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst, cfg.Security.RateLimit.TTL))
	}

	// --- CORS middleware ---
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Signature", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Auth routes. Register runs through optional auth so an admin's
	// role grant is honored; anonymous callers pass through as members.
	mux.With(middleware.OptionalAuth(tm, store)).Post("/auth/register", auth.RegisterHandler(store, tm))
	mux.Post("/auth/login", auth.LoginHandler(store, tm))

	// Authenticated self-service
	mux.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tm, store))
		r.Get("/auth/me", auth.MeHandler())
		r.Put("/auth/me", auth.UpdateMeHandler(store))
		r.Post("/auth/push-tokens", auth.PushTokenHandler(store))
	})

	// Entity routes and the webhook bridge
	handlers.RegisterRoutes(mux, store, tm, files, cfg)

	// Uploaded files
	mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir()))))

	// Health root
	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})

	// --- Start server ---
	addr := cfg.Server.Addr
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	slog.Info("listening", "addr", addr, "base_url", cfg.BaseURL)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
