package router

import (
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/wavelink-app/backend/internal/handlers"
	"github.com/wavelink-app/backend/internal/middleware"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"github.com/wavelink-app/backend/internal/services"
	"github.com/wavelink-app/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestID())
}

// SetupRoutes migrates the relational models, wires repositories, services
// and handlers, and registers all application routes.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, cfg *config.Config, log *slog.Logger) error {
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Bookmark{},
		&models.Report{},
	); err != nil {
		return fmt.Errorf("auto migrating models: %w", err)
	}

	mongoDB := mgClient.Database(cfg.MongoDatabase)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	bookmarkRepo := repositories.NewPostgresBookmarkRepository(pgdb)
	reportRepo := repositories.NewPostgresReportRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, log)
	interactionService := services.NewInteractionService(
		postRepo, commentRepo, userRepo, bookmarkRepo, reportRepo, notificationService, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret, cfg.TokenTTL)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, bookmarkRepo)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notificationService, log)
	commentHandler.RegisterCommentRoutes(api)

	interactionHandler := handlers.NewInteractionHandler(interactionService)
	interactionHandler.RegisterInteractionRoutes(api)

	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkRepo, postRepo)
	bookmarkHandler.RegisterBookmarkRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Info("all routes configured")
	return nil
}
