package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "version_checkouts_total",
			Help: "Total checkout attempts by outcome",
		},
		[]string{"artifact_type", "outcome"},
	)

	conflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "version_conflicts_detected_total",
			Help: "Total conflicts detected during initiative analysis",
		},
		[]string{"artifact_type"},
	)

	conflictsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "version_conflicts_resolved_total",
			Help: "Total conflicts resolved by strategy",
		},
		[]string{"strategy"},
	)
)

// Metrics returns a gin middleware that collects Prometheus metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint itself
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		activeRequests.Inc()

		c.Next()

		activeRequests.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// RecordCheckout counts a checkout attempt (call from handlers)
func RecordCheckout(artifactType, outcome string) {
	checkoutsTotal.WithLabelValues(artifactType, outcome).Inc()
}

// RecordConflictDetected counts a detected conflict
func RecordConflictDetected(artifactType string) {
	conflictsDetected.WithLabelValues(artifactType).Inc()
}

// RecordConflictResolved counts a resolved conflict by strategy
func RecordConflictResolved(strategy string) {
	conflictsResolved.WithLabelValues(strategy).Inc()
}
