package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/panelcast/panelcast/internal/artifacts"
	"github.com/panelcast/panelcast/internal/config"
	"github.com/panelcast/panelcast/internal/handlers"
	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/middleware"
	"github.com/panelcast/panelcast/internal/queue"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, store *artifacts.Store,
	publisher queue.Publisher, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, store, publisher, cfg.Engine)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// One-shot forecasting
	v1.Post("/forecast", h.Forecast)

	// Model lifecycle
	v1.Post("/models", h.FitModel)
	v1.Get("/models", h.ListModels)
	v1.Get("/models/:model_id", h.GetModel)
	v1.Post("/models/:model_id/predict", h.Predict)
	v1.Delete("/models/:model_id", h.DeleteModel)

	// Forecast accuracy scoring
	v1.Post("/evaluate", h.Evaluate)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, store *artifacts.Store,
	publisher queue.Publisher, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Panelcast Forecaster",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, store, publisher, cfg)

	return app
}
