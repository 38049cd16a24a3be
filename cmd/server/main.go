package main

import (
	"context"
	"log"
	"net/http"

	"github.com/ThisaraSadesh/Threads-SL/internal/metrics"
	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"github.com/ThisaraSadesh/Threads-SL/internal/router"
	"github.com/ThisaraSadesh/Threads-SL/internal/services"
	"github.com/ThisaraSadesh/Threads-SL/pkg/config"
	"github.com/ThisaraSadesh/Threads-SL/pkg/firebase"
	"github.com/ThisaraSadesh/Threads-SL/pkg/logger"
	"github.com/ThisaraSadesh/Threads-SL/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	config.LoadEnv()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Redis backs the mention handle cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// Initialize Firebase messaging; without credentials the fan-out
	// publisher degrades to a no-op and the notification store stays the
	// source of truth.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher services.Publisher
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		zlog.Warn("Firebase unavailable, realtime push hints disabled", zap.Error(err))
		publisher = services.NewNoopPublisher()
	} else {
		publisher = services.NewFCMPublisher(firebaseApp.MessagingClient)
	}

	// Metrics
	metrics.MustRegister()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Outbox dispatcher drains push hints in the background
	outboxRepo := repositories.NewPostgresOutboxRepository(db.Postgres)
	dispatcher := services.NewOutboxDispatcher(outboxRepo, publisher, zlog)
	go dispatcher.Run(ctx)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Deps{
		Postgres:      db.Postgres,
		Mongo:         db.Mongo,
		MongoDatabase: cfg.MongoDatabase,
		Redis:         redisClient,
		Gate:          services.NewModerationClient(cfg.ModerationURL, cfg.ModerationAPIKey, zlog),
		Logger:        zlog,
		JWTSecret:     cfg.JWTSecret,
	})

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
