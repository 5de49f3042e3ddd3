package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/upt-maps/campusmap/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: drawing is click-driven, so the ceiling is generous
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	// Draw session (the path-authoring tool)
	v1.Get("/session", timeout.NewWithContext(GetSessionHandler(deps), 15*time.Second))
	v1.Post("/session/start", timeout.NewWithContext(StartDrawHandler(deps), 15*time.Second))
	v1.Post("/session/stop", timeout.NewWithContext(StopDrawHandler(deps), 15*time.Second))
	v1.Post("/session/points", timeout.NewWithContext(AddPointHandler(deps), 15*time.Second))
	v1.Post("/session/undo", timeout.NewWithContext(UndoPointHandler(deps), 15*time.Second))
	v1.Post("/session/clear", timeout.NewWithContext(ClearDraftHandler(deps), 15*time.Second))
	v1.Post("/session/export", timeout.NewWithContext(ExportDraftHandler(deps), 15*time.Second))

	// Saved paths
	v1.Get("/paths", timeout.NewWithContext(ListPathsHandler(deps), 15*time.Second))
	v1.Post("/paths", timeout.NewWithContext(CreatePathHandler(deps), 15*time.Second))
	v1.Delete("/paths", timeout.NewWithContext(ClearPathsHandler(deps), 15*time.Second))
	v1.Get("/paths/export", timeout.NewWithContext(ExportAllPathsHandler(deps), 15*time.Second))
	v1.Get("/paths/:id", timeout.NewWithContext(GetPathHandler(deps), 15*time.Second))
	v1.Delete("/paths/:id", timeout.NewWithContext(DeletePathHandler(deps), 15*time.Second))
	v1.Get("/paths/:id/export", timeout.NewWithContext(ExportPathHandler(deps), 15*time.Second))

	// Map surface
	v1.Post("/map/fit", timeout.NewWithContext(FitMapHandler(deps), 15*time.Second))

	// Indoor floor plans (static GeoJSON by path convention)
	v1.Get("/floors/:building/:level", FloorPlanHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
