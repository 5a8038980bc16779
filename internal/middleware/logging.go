package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pairtrack/pairtrack/internal/metrics"
)

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Scrapes and probes are too chatty to log
var quietPaths = []string{
	"/assets/",
	"/metrics",
	"/healthz",
	"/favicon.ico",
}

// RequestLogging logs each request and records its latency in the
// request duration histogram.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		metrics.ObserveRequest(r.Method, rw.status, duration.Seconds())

		for _, prefix := range quietPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return
			}
		}

		level := slog.LevelInfo
		if rw.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", getClientIP(r),
		)
	})
}
