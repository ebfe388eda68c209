package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Reviews
	ReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_total",
			Help: "Review mutations that were persisted",
		},
		[]string{"op"}, // add|remove
	)
	ReviewRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_write_retries_total",
			Help: "Review writes retried after a concurrent update",
		},
	)

	// Uploads
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Image uploads by outcome",
		},
		[]string{"result"}, // ok|error|missing|too_large
	)

	// Audit worker queue
	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Audit records waiting for the worker pool",
		},
	)

	initOnce sync.Once
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			ReviewsTotal,
			ReviewRetries,
			UploadsTotal,
			AuditQueueDepth,
		)
	})
}
