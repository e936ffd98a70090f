package telemetry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests received, partitioned by method, route and status class.",
		},
		[]string{"method", "route", "status_class"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, partitioned by method, route and status class.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5},
		},
		[]string{"method", "route", "status_class"},
	)
)

// Domain metrics
var (
	recordsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total number of records successfully created, partitioned by kind.",
		},
		[]string{"kind"}, // kinds: request | transaction
	)

	recordsValidatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_validated_total",
			Help: "Total number of records validated by an administrator, partitioned by kind.",
		},
		[]string{"kind"},
	)

	recordsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_rejected_total",
			Help: "Total number of records rejected (deleted) by an administrator, partitioned by kind.",
		},
		[]string{"kind"},
	)

	transactionsClosedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_closed_total",
			Help: "Total number of transactions closed with an exit price.",
		},
	)
)

// Audit pipeline metrics
var (
	auditPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_published_total",
			Help: "Total number of audit events successfully published.",
		},
	)

	auditFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_failed_total",
			Help: "Total number of audit events that failed, partitioned by reason.",
		},
		[]string{"reason"}, // reasons: schema | kafka | dropped
	)

	auditQueueCurrent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_current",
			Help: "Current number of items in the in-process audit queue (approximate).",
		},
	)
)

// User metrics
var (
	usersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of user accounts successfully created.",
		},
	)

	usersCreateFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_create_failed_total",
			Help: "Total number of failed user creation attempts, partitioned by reason.",
		},
		[]string{"reason"}, // reasons: validation | db | conflict | unknown
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts, partitioned by outcome (success/failure).",
		},
		[]string{"outcome"},
	)
)

// InitMetrics called on startup
func InitMetrics() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		recordsCreatedTotal,
		recordsValidatedTotal,
		recordsRejectedTotal,
		transactionsClosedTotal,
		auditPublishedTotal,
		auditFailedTotal,
		auditQueueCurrent,
		usersCreatedTotal,
		usersCreateFailedTotal,
		loginsTotal,
	)
}

// PrometheusMiddleware measures one HTTP request: increments counter and observes latency.
// It uses gin.Context.FullPath() to record the *route template* (e.g., /v1/transactions).
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next() // execute handler chain

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := c.Writer.Status()
		statusClass := fmt.Sprintf("%dxx", status/100)

		httpRequestsTotal.WithLabelValues(method, route, statusClass).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route, statusClass).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes /metrics in Prometheus text exposition format.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
