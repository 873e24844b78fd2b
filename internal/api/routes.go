package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/passbi/transport_catalogue/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppConfig configures the HTTP application
type AppConfig struct {
	AllowOrigins string
	// AccessLog enables per-request log lines
	AccessLog bool
	// Auth guards the /v1 endpoints when set; it runs before the rate limiter
	Auth fiber.Handler
	// RateLimiter guards the /v1 endpoints when set
	RateLimiter fiber.Handler
}

// NewApp creates the fiber application with middleware and routes
func NewApp(s *Server, cfg AppConfig) *fiber.App {
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      "Transport Catalogue API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: ErrorHandler,
		// stop names contain spaces
		UnescapePath: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(middleware.AnalyticsMiddleware())

	app.Get("/health", s.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")
	if cfg.Auth != nil {
		v1.Use(cfg.Auth)
	}
	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter)
	}
	v1.Get("/buses/:name", s.Bus)
	v1.Get("/stops/:name", s.Stop)
	v1.Get("/route", s.Route)
	v1.Get("/map", s.Map)
	v1.Post("/stat", s.Stat)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	return app
}
