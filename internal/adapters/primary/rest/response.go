// Package rest implements the HTTP handlers of the city explorer API.
// This package serves as the primary adapter, translating HTTP requests
// into service calls and service Results into JSON responses.
package rest

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/middleware"
)

// ErrorResponse represents a standardized error response structure.
// Errors is only set for request validation failures and maps field names to messages.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// statusMap translates service error codes into HTTP status codes.
// Codes missing from the map produce 500.
type statusMap map[domain.ErrorCode]int

func (m statusMap) status(code domain.ErrorCode) int {
	if status, ok := m[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

var (
	weatherStatuses = statusMap{
		domain.ErrBadRequest:         http.StatusBadRequest,
		domain.ErrInvalidCoordinates: http.StatusBadRequest,
		domain.ErrNoResults:          http.StatusBadRequest,
		domain.ErrAPIKeyMissing:      http.StatusServiceUnavailable,
		domain.ErrAPI:                http.StatusFailedDependency,
		domain.ErrConnection:         http.StatusGatewayTimeout,
		domain.ErrAPIUnavailable:     http.StatusGatewayTimeout,
	}

	geocodingStatuses = statusMap{
		domain.ErrBadRequest:     http.StatusBadRequest,
		domain.ErrNoResults:      http.StatusNotFound,
		domain.ErrAPIKeyMissing:  http.StatusServiceUnavailable,
		domain.ErrAPI:            http.StatusFailedDependency,
		domain.ErrConnection:     http.StatusGatewayTimeout,
		domain.ErrAPIUnavailable: http.StatusGatewayTimeout,
	}

	placesStatuses = statusMap{
		domain.ErrBadRequest:         http.StatusBadRequest,
		domain.ErrInvalidCoordinates: http.StatusBadRequest,
		domain.ErrAPIKeyMissing:      http.StatusInternalServerError,
		domain.ErrAPIUnavailable:     http.StatusServiceUnavailable,
		domain.ErrAPI:                http.StatusBadGateway,
		domain.ErrConnection:         http.StatusGatewayTimeout,
	}

	favoritesStatuses = statusMap{
		domain.ErrBadRequest:         http.StatusBadRequest,
		domain.ErrInvalidCoordinates: http.StatusBadRequest,
		domain.ErrNotFound:           http.StatusNotFound,
	}
)

// responder carries the JSON response helpers shared by every handler.
type responder struct {
	logger *zap.Logger
}

// respondWithJSON sends a JSON response with the specified status code.
func (rs responder) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondWithError sends a standardized error response.
func (rs responder) respondWithError(w http.ResponseWriter, status int, code, message string) {
	rs.respondWithJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// respondWithFailure maps a failed service Result onto an error response.
//
// Parameters:
//   - code, message: taken from the failed Result
//   - provider: the failing external provider, if any
//   - statuses: endpoint-specific status mapping
func (rs responder) respondWithFailure(
	w http.ResponseWriter,
	r *http.Request,
	code domain.ErrorCode,
	message string,
	provider string,
	statuses statusMap,
) {
	status := statuses.status(code)

	fields := []zap.Field{
		zap.String("error_code", code.String()),
		zap.String("message", message),
		zap.Int("status_code", status),
		zap.String("path", r.URL.Path),
		zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	}

	if provider != "" {
		fields = append(fields, zap.String("provider", provider))
	}

	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed", fields...)
	} else {
		rs.logger.Warn("request failed", fields...)
	}

	// Unexpected failures may carry panic or driver text.
	if code == domain.ErrUnexpected {
		message = code.Message()
	}

	rs.respondWithError(w, status, code.String(), message)
}
