package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flowpilot/flowpilot/internal/logging"
)

// requestIDHeader carries the request ID back to the client and is
// honored on the way in so upstream proxies can correlate logs.
const requestIDHeader = "X-Request-Id"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withObservability wraps the mux with request-ID assignment, access
// logging and Prometheus instrumentation. It runs outside the mux so
// every route, including health probes, is covered.
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		elapsed := time.Since(start)
		// Label by the matched mux pattern, not the raw path: arbitrary
		// paths from scanners would otherwise mint unbounded label values.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

		attrs := []slog.Attr{
			slog.String(logging.KeyMethod, r.Method),
			slog.String(logging.KeyPath, r.URL.Path),
			slog.Int(logging.KeyStatus, rec.status),
			slog.Duration(logging.KeyDuration, elapsed),
			slog.String(logging.KeyRequestID, requestID),
		}
		if email, ok := s.auth.Sessions().UserEmail(r); ok {
			attrs = append(attrs, logging.UserHash(email))
		}
		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
	})
}
