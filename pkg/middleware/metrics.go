package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devportal",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status.",
		},
		[]string{"service", "method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devportal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "route", "status"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "devportal",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		},
		[]string{"service"},
	)
)

// PrometheusMetrics records request counts, latency, and in-flight gauge per
// chi route pattern. Patterns keep the cardinality bounded: /api/v1/releases/{id}
// is one label value no matter how many releases exist.
func PrometheusMetrics(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestsInFlight.WithLabelValues(service).Inc()
			defer requestsInFlight.WithLabelValues(service).Dec()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(wrapped.statusCode)

			requestsTotal.WithLabelValues(service, r.Method, route, status).Inc()
			requestDuration.WithLabelValues(service, r.Method, route, status).
				Observe(time.Since(start).Seconds())
		})
	}
}
