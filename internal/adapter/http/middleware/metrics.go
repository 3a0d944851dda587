package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics recording.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath replaces path segments that carry IDs or tokens so metric
// label cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/accounts/"):
		rest := path[len("/api/v1/accounts/"):]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/api/v1/accounts/:id" + rest[idx:]
		}

		return "/api/v1/accounts/:id"

	case strings.HasPrefix(path, "/api/v1/gift-cards/verify/"):
		return "/api/v1/gift-cards/verify/:token"

	case strings.HasPrefix(path, "/api/v1/gift-cards/"):
		rest := path[len("/api/v1/gift-cards/"):]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/api/v1/gift-cards/:id" + rest[idx:]
		}
	}

	return path
}
