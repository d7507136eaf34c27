package middleware

import (
	"net/http"
	"strconv"
	"time"

	"appforge-web/internal/observability"
)

// Metrics records per-request duration and count vectors.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.status)

			observability.HTTPRequestDuration.WithLabelValues(
				r.Method, r.URL.Path, status,
			).Observe(duration)

			observability.HTTPRequestsTotal.WithLabelValues(
				r.Method, r.URL.Path, status,
			).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
