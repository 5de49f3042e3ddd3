package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campusmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Path-authoring metrics
	PathsExported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "paths",
		Name:      "exported_total",
		Help:      "Total drafts promoted into saved path records",
	})

	PathsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "paths",
		Name:      "deleted_total",
		Help:      "Total saved path records deleted",
	})

	DraftPointsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "draw",
		Name:      "points_accepted_total",
		Help:      "Total clicked points accepted into drafts",
	})

	DraftPointsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "draw",
		Name:      "points_rejected_total",
		Help:      "Total clicked points rejected for out-of-bounds coordinates",
	})

	StorageWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "storage",
		Name:      "write_failures_total",
		Help:      "Total failed writes to the path storage backend",
	})

	OverlayRedraws = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusmap",
		Subsystem: "render",
		Name:      "overlay_redraws_total",
		Help:      "Total full overlay redraws pushed to the map surface",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campusmap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
