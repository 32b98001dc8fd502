package metrics

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
			Name: "agromarket_agent_http_requests_total",
			Help: "Total number of HTTP requests handled by the sync agent",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agromarket_agent_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the sync agent",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	outboxEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agromarket_outbox_enqueued_total",
			Help: "Total number of orders queued offline",
		},
	)

	syncSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agromarket_sync_submissions_total",
			Help: "Total number of per-order submission attempts by outcome",
		},
		[]string{"status"},
	)

	syncDrains = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agromarket_sync_drains_total",
			Help: "Total number of sync drain invocations by outcome",
		},
		[]string{"outcome"},
	)

	pendingOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agromarket_outbox_pending_orders",
			Help: "Unsynced orders currently waiting in the outbox",
		},
	)
)

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

func RecordEnqueue() {
	outboxEnqueued.Inc()
}

func RecordSubmission(success bool) {
	status := "synced"
	if !success {
		status = "failed"
	}
	syncSubmissions.WithLabelValues(status).Inc()
}

// RecordDrain tracks drain invocations: "completed", "busy" (rejected by
// the in-progress guard) or "error" (snapshot read failed).
func RecordDrain(outcome string) {
	syncDrains.WithLabelValues(outcome).Inc()
}

func SetPendingOrders(n int64) {
	pendingOrders.Set(float64(n))
}
