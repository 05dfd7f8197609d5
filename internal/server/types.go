package server

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/service"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the context key under which the request ID is stored.
type requestIDKey struct{}

// RequestIDFromContext returns the request ID stored by the request-ID
// middleware, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusForError maps a service error to its HTTP status code.
//
// Parameters:
//   - err: The error returned while handling a multiplication.
//
// Returns:
//   - int: The HTTP status code to answer with.
func statusForError(err error) int {
	var validationErr apperrors.ValidationError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrMaxSizeExceeded), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr), apperrors.IsConfigError(err):
		return http.StatusBadRequest
	case apperrors.IsContextError(err):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
