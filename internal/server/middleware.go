package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/strassen/internal/logging"
)

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// ─────────────────────────────────────────────────────────────────────────────
// Server Options for Middleware Integration
// ─────────────────────────────────────────────────────────────────────────────

// WithRateLimiter sets a custom rate limiter for the server.
//
// Parameters:
//   - rl: The rate limiter to use.
//
// Returns:
//   - Option: A functional option that configures the server's rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxSize sets the largest matrix size accepted by POST /multiply.
// It also bounds the request body. Zero removes the limit.
//
// Parameters:
//   - maxSize: The maximum allowed matrix size.
//
// Returns:
//   - Option: A functional option that configures the maximum size.
func WithMaxSize(maxSize int) Option {
	return func(s *Server) {
		s.maxSize = maxSize
	}
}

// requestIDMiddleware assigns every request an ID, reusing a well-formed
// X-Request-ID sent by the client, and echoes it in the response.
func requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

// loggingMiddleware wraps an http.HandlerFunc to log each request with its
// request ID, status code and duration, inside a server span.
//
// Parameters:
//   - next: The next handler in the chain.
//
// Returns:
//   - http.HandlerFunc: A new handler with logging capability.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := RequestIDFromContext(r.Context())

		ctx, span := otel.Tracer("strassen/server").Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", id),
			))
		defer span.End()

		rec := wrapStatus(w)
		next(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}

		s.logger.Info("request completed",
			logging.String("request_id", id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote", r.RemoteAddr),
			logging.Int("status", rec.status),
			logging.Duration("duration", time.Since(start)),
		)
	}
}
