package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request latency (seconds), labelled by route template
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// Successful project mutations
	ProjectMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_mutations_total",
			Help: "Total number of successful project mutations",
		},
		[]string{"op"}, // op: create, update, delete
	)

	// Remote media deletions that failed after a local delete
	MediaDestroyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_destroy_failures_total",
			Help: "Total number of failed remote media deletions",
		},
	)
)

func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func IncrementProjectMutation(op string) {
	ProjectMutations.WithLabelValues(op).Inc()
}

func IncrementMediaDestroyFailure() {
	MediaDestroyFailures.Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
