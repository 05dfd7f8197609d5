package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/agbru/strassen/internal/cli"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/logging"
	"github.com/agbru/strassen/internal/service"
	"github.com/agbru/strassen/pkg/models"
)

// bytesPerElement bounds the JSON encoding of one float64 plus its separator.
const bytesPerElement = 32

// handleHealth responds to health check requests.
// It returns a 200 OK status with a JSON payload indicating the service is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}

// handleAlgorithms returns the registered multipliers, sorted by key, with
// their display names.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	keys := s.factory.List()
	sort.Strings(keys)
	response := models.AlgorithmsResponse{Algorithms: make([]models.AlgorithmInfo, 0, len(keys))}
	for _, key := range keys {
		info := models.AlgorithmInfo{Key: key, Name: key}
		if m, err := s.factory.Get(key); err == nil {
			info.Name = m.Name()
		}
		response.Algorithms = append(response.Algorithms, info)
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleMultiply decodes a models.MultiplyRequest, multiplies the operands
// through the service and answers with the product.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleMultiply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := s.decodeMultiplyRequest(w, r)
	if err != nil {
		s.writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	result, err := s.service.Multiply(ctx, service.Request{
		Algorithm: req.Algorithm,
		Size:      req.Size,
		A:         req.A,
		B:         req.B,
		LeafSize:  req.LeafSize,
	})
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("multiplication failed", err,
				logging.String("request_id", RequestIDFromContext(r.Context())),
				logging.Int("size", req.Size))
		}
		s.writeErrorResponse(w, status, s.errorMessage(status, err))
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.MultiplyResponse{
		RequestID: RequestIDFromContext(r.Context()),
		Algorithm: result.Algorithm,
		Size:      req.Size,
		LeafSize:  result.LeafSize,
		C:         result.C,
		Duration:  cli.FormatExecutionDuration(result.Duration),
		Cached:    result.Cached,
	})
}

// decodeMultiplyRequest reads the JSON body, bounded by what the largest
// accepted matrices can take.
func (s *Server) decodeMultiplyRequest(w http.ResponseWriter, r *http.Request) (models.MultiplyRequest, error) {
	var req models.MultiplyRequest
	if limit := s.maxBodyBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if statusForError(err) == http.StatusRequestEntityTooLarge {
			return req, err
		}
		return req, apperrors.NewValidationError("body", "invalid JSON: "+err.Error(), nil)
	}
	return req, nil
}

// maxBodyBytes returns the request body limit, or 0 when sizes are unbounded.
func (s *Server) maxBodyBytes() int64 {
	if s.maxSize <= 0 {
		return 0
	}
	n := int64(s.maxSize)
	return 2*n*n*bytesPerElement + 4096
}

// errorMessage hides internal failure details from clients.
func (s *Server) errorMessage(status int, err error) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return fmt.Sprintf("Matrix size exceeds maximum allowed (%d). This limit prevents resource exhaustion.", s.maxSize)
	case http.StatusGatewayTimeout:
		return "Multiplication timed out."
	case http.StatusInternalServerError:
		return "Multiplication failed."
	default:
		return err.Error()
	}
}

// writeJSONResponse helper function to write a JSON response with the correct content type.
//
// Parameters:
//   - w: The HTTP response writer.
//   - statusCode: The HTTP status code to write.
//   - data: The data to be encoded as JSON.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

// writeErrorResponse helper function to write a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
