package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// isLongLived reports whether the request holds its connection open.
func isLongLived(c *fiber.Ctx) bool {
	p := c.Path()
	return p == "/stream" || p == "/ws"
}

// SetupRoutes registers all REST, streaming, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip); event streams must reach the client unbuffered
	app.Use(compress.New(compress.Config{
		Next:  isLongLived,
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Request span + request-scoped logger
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Next:       isLongLived,
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		},
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	// Pins
	app.Get("/pins", timeout.NewWithContext(ListPinsHandler(deps), requestTimeout))
	app.Post("/pins", timeout.NewWithContext(CreatePinHandler(deps), requestTimeout))
	app.Get("/pins/:id", timeout.NewWithContext(GetPinHandler(deps), requestTimeout))
	app.Delete("/pins/:id", timeout.NewWithContext(DeletePinHandler(deps), requestTimeout))

	// Live updates
	app.Get("/stream", StreamHandler(deps))
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Broadcaster)))

	// Export
	app.Get("/generate-light-map", timeout.NewWithContext(LightMapHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)

	// Frontend
	if deps.StaticDir != "" {
		app.Static("/", deps.StaticDir)
	}
}
