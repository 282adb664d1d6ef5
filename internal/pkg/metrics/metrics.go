// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campuseats_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	outboxEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_outbox_events_total",
			Help: "Outbox events handed to the notification broker",
		},
		[]string{"result"},
	)

	streamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuseats_stream_subscribers",
			Help: "Open real-time stream connections",
		},
	)
)

// Middleware records the count and latency of every request by route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			status := strconv.Itoa(c.Response().Status)

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path, status).
				Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOrderOperation counts an order operation by outcome.
func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

// RecordOutbox counts one relay batch.
func RecordOutbox(published, failed int) {
	if published > 0 {
		outboxEvents.WithLabelValues("published").Add(float64(published))
	}
	if failed > 0 {
		outboxEvents.WithLabelValues("failed").Add(float64(failed))
	}
}

// StreamOpened and StreamClosed track live stream connections.
func StreamOpened() { streamSubscribers.Inc() }

func StreamClosed() { streamSubscribers.Dec() }
