package router

import (
	"context"
	"log"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/handlers"
	"github.com/ThisaraSadesh/Threads-SL/internal/middleware"
	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"github.com/ThisaraSadesh/Threads-SL/internal/repositories"
	"github.com/ThisaraSadesh/Threads-SL/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries the process-wide resources the routes are wired from. They
// are constructed once in main and injected; nothing here is lazily global.
type Deps struct {
	Postgres      *gorm.DB
	Mongo         *mongo.Client
	MongoDatabase string
	Redis         *redis.Client
	Gate          services.ModerationGate
	Logger        *zap.Logger
	JWTSecret     string
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	// AutoMigrate PostgreSQL models
	err := deps.Postgres.AutoMigrate(
		&models.Notification{},
		&models.OutboxEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	db := deps.Mongo.Database(deps.MongoDatabase)
	threadRepo := repositories.NewMongoThreadRepository(db)
	userRepo := repositories.NewMongoUserRepository(db)
	communityRepo := repositories.NewMongoCommunityRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := threadRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create thread indexes: %v", err)
	}

	// --- Core engine ---
	mentionResolver := services.NewMentionResolver(userRepo, deps.Redis, deps.Logger)
	threadService := services.NewThreadService(
		threadRepo, userRepo, communityRepo, notificationRepo,
		deps.Gate, mentionResolver, deps.Logger,
	)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Thread routes
	threadHandler := handlers.NewThreadHandler(threadService)
	threadHandler.RegisterThreadRoutes(api)
	log.Println("Thread routes configured.")

	// User routes
	userHandler := handlers.NewUserHandler(threadService)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
