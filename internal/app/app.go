// Package app wires repositories, services and handlers into the Fiber
// application served by the nursery API.
package app

import (
	"time"

	"nursery/internal/handlers"
	"nursery/internal/logging"
	"nursery/internal/middleware"
	"nursery/internal/repositories"
	"nursery/internal/services"
	"nursery/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	DB        *gorm.DB
	Registry  session.Registry
	Publisher services.EventPublisher // nil disables order events
	JWTSecret string
	TokenTTL  time.Duration
	// CORSOrigins is a comma separated list, "*" for any origin.
	CORSOrigins string
	Log         *zap.Logger
}

// App is the assembled service.
type App struct {
	Fiber    *fiber.App
	Plants   *services.PlantService
	Orders   *services.OrderService
	Auth     *services.AuthService
	Sessions *session.Manager
}

// New builds the services on top of opts.DB and registers every route
// under /api/v1.
func New(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = session.NewMemoryRegistry()
	}

	// --- Repositories ---
	plantRepo := repositories.NewGORMPlantRepository(opts.DB)
	userRepo := repositories.NewGORMUserRepository(opts.DB)
	profileRepo := repositories.NewGORMProfileRepository(opts.DB)
	wishlistRepo := repositories.NewGORMWishlistRepository(opts.DB)
	orderRepo := repositories.NewGORMOrderRepository(opts.DB)
	feedbackRepo := repositories.NewGORMFeedbackRepository(opts.DB)

	// --- Services ---
	plantService := services.NewPlantService(plantRepo, log)
	orderService := services.NewOrderService(orderRepo, opts.Publisher, log)
	profileService := services.NewProfileService(profileRepo, log)
	feedbackService := services.NewFeedbackService(feedbackRepo, log)
	sessions := session.NewManager(registry, session.Dependencies{
		Plants:    plantService.Finder(),
		Wishlists: wishlistRepo,
		Orders:    orderService,
	}, opts.TokenTTL, log.Named("sessions"))
	authService := services.NewAuthService(userRepo, sessions, opts.JWTSecret, opts.TokenTTL, log)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	plantHandler := handlers.NewPlantHandler(plantService)
	shopHandler := handlers.NewShopHandler(plantService)
	orderHandler := handlers.NewOrderHandler(orderService)
	profileHandler := handlers.NewProfileHandler(profileService, feedbackService)
	adminHandler := handlers.NewAdminHandler(plantService, orderService, profileService, feedbackService)

	app := fiber.New(fiber.Config{
		AppName:      "nursery",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    16 * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: corsOrigins(opts.CORSOrigins)}))
	app.Use(logging.RequestLogger(log))

	// --- Health Check Endpoint ---
	events := "disabled"
	if opts.Publisher != nil {
		events = "enabled"
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":       "healthy",
			"time":         time.Now().Format(time.RFC3339),
			"order_events": events,
			"sessions":     sessions.Len(),
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)

	// Public routes
	authHandler.RegisterRoutes(apiV1, authRequired)
	plantHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", authRequired)
	shopHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	profileHandler.RegisterRoutes(protected)

	admin := protected.Group("/admin", middleware.AdminRequired(profileService))
	adminHandler.RegisterRoutes(admin)

	return &App{
		Fiber:    app,
		Plants:   plantService,
		Orders:   orderService,
		Auth:     authService,
		Sessions: sessions,
	}
}

func corsOrigins(origins string) string {
	if origins == "" {
		return "*"
	}
	return origins
}
