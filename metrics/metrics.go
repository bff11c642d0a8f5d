// Package metrics holds the Prometheus collectors for the API.
//
// The HTTP middleware records every request; the domain counters are
// incremented by the services when orders are created, change status
// or a login is attempted. Everything is exposed by Handler at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "otica"

var (
	// RequestTotal counts HTTP requests by method, route and status
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks request latency by method, route and status
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// OrdersCreated counts committed orders by source ("checkout" or "api")
	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		},
		[]string{"source"},
	)

	// OrderStatusChanges counts admin status changes by target status
	OrderStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Total number of order status changes.",
		},
		[]string{"status"},
	)

	// LoginAttempts counts logins by result ("success", "invalid_credentials", "error")
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts.",
		},
		[]string{"result"},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestTotal,
		RequestDuration,
		OrdersCreated,
		OrderStatusChanges,
		LoginAttempts,
	)
}

// Registry returns the registry holding every collector of this package
func Registry() *prometheus.Registry {
	return registry
}

// Middleware records count and latency of each request. The route template is
// used as the path label so ids do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
