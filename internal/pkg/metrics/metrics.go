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
		Namespace: "pinmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pinmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pinmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Pin metrics
	PinsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pinmap",
		Subsystem: "pins",
		Name:      "created_total",
		Help:      "Total pins created",
	})

	PinsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pinmap",
		Subsystem: "pins",
		Name:      "deleted_total",
		Help:      "Total pins deleted",
	})

	PinReadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmap",
		Subsystem: "pins",
		Name:      "read_errors_total",
		Help:      "Stored pin records skipped because they could not be read or decoded",
	}, []string{"driver"})

	// Geocoding metrics
	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmap",
		Subsystem: "geocode",
		Name:      "lookups_total",
		Help:      "Location resolutions by outcome (hit, shared_hit, resolved, fallback, error)",
	}, []string{"result"})

	GeocodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pinmap",
		Subsystem: "geocode",
		Name:      "duration_seconds",
		Help:      "Duration of outbound reverse geocoding requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// Live update metrics
	BroadcastMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pinmap",
		Subsystem: "stream",
		Name:      "broadcast_messages_total",
		Help:      "Total messages broadcast to live viewers",
	})

	ActiveStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pinmap",
		Subsystem: "stream",
		Name:      "active_connections",
		Help:      "Current number of live update connections",
	}, []string{"transport"})
)

// Middleware records request metrics. Streaming responses are counted but
// their size is not observed because reading the body would consume the stream.
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
		if !c.Response().IsBodyStream() {
			httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))
		}

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
