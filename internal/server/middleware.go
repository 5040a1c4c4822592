package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// requestID tags the request logger and response with a request id, reusing
// the caller's X-Request-ID when it is reasonable.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := hlog.FromRequest(r).With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// limitBody rejects requests whose declared length exceeds limit before they
// reach a handler, and caps undeclared bodies at limit.
func limitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		capped := middleware.RequestSize(limit)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				hlog.FromRequest(r).Warn().
					Int64("content_length", r.ContentLength).
					Int64("limit", limit).
					Msg("Request body too large")
				writeTooLarge(w)
				return
			}
			capped.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
}

// isTooLarge reports whether err came from reading past the body limit.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// routePattern returns the matched chi route, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// logAccess records metrics and writes one access log line per request.
func (s *Service) logAccess(r *http.Request, status, size int, duration time.Duration) {
	route := routePattern(r)
	s.metrics.recordRequest(r.Context(), route, r.Method, status, duration)

	level := zerolog.InfoLevel
	switch {
	case status >= http.StatusInternalServerError:
		level = zerolog.ErrorLevel
	case route == "/health":
		level = zerolog.DebugLevel
	}

	hlog.FromRequest(r).WithLevel(level).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("remote", r.RemoteAddr).
		Msg("Request")
}
