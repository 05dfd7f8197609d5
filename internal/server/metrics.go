// Package server provides the HTTP API of the matrix multiplication service.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects and exposes server metrics in Prometheus format.
// It tracks:
//   - Active requests (gauge)
//   - Requests by path and status code (counter)
//   - Request latency by path (histogram)
//
// Multiplication metrics are recorded by the strassen package.
type Metrics struct {
	handler http.Handler
}

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "strassen_http_active_requests",
		Help: "Current number of active requests",
	})
	totalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strassen_http_requests_total",
		Help: "Total number of requests by path and status code",
	}, []string{"path", "code"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strassen_http_request_duration_seconds",
		Help:    "Request latency by path",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"path"})
)

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		handler: promhttp.Handler(),
	}
}

// observe records one finished request.
func (m *Metrics) observe(path string, status int, elapsed time.Duration) {
	totalRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// WritePrometheus writes metrics in Prometheus text format to the HTTP response.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// handleMetrics is the HTTP handler for the /metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.metrics.WritePrometheus(w, r)
}

// metricsMiddleware tracks active requests, status codes and latency.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeRequests.Inc()
		defer activeRequests.Dec()

		start := time.Now()
		rec := wrapStatus(w)
		next(rec, r)
		s.metrics.observe(r.URL.Path, rec.status, time.Since(start))
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// wrapStatus returns w unchanged if it already records the status.
func wrapStatus(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
