package routes

import (
	"time"

	"join-finance-api/internal/adapters/http/handlers"
	"join-finance-api/internal/adapters/http/middleware"
	"join-finance-api/internal/adapters/persistence/repositories"
	"join-finance-api/internal/config"
	"join-finance-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	disbRepo := repositories.NewDisbursementRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	disbService := services.NewDisbursementService(disbRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	disbHandler := handlers.NewDisbursementHandler(disbService, cfg)

	// Health check & root routes
	app.Get("/", middleware.CacheControl(5*time.Minute), healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Get("/profile", middleware.AuthMiddleware(cfg), middleware.RequireActiveUser(userRepo), authHandler.GetProfile)
	auth.Get("/authme", middleware.AuthMiddleware(cfg), authHandler.AuthMe)
	auth.Post("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)

	// Disbursement routes (authenticated, active account required)
	disbursement := api.Group("/disbursement")
	disbursement.Use(middleware.AuthMiddleware(cfg), middleware.RequireActiveUser(userRepo))
	disbursement.Post("/upload", disbHandler.Upload)
	disbursement.Get("/", disbHandler.List)
	disbursement.Get("/details/:batchNumber", disbHandler.Details)
}
