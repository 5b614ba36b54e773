package domain

import "fmt"

// ErrorCode categorizes every failure produced by the service layer.
// The numeric value is stable and is what transports use to pick a status code.
type ErrorCode int

const (
	// Generic errors.
	ErrUnexpected ErrorCode = 1000
	ErrDatabase   ErrorCode = 2000

	// Resource errors.
	ErrNotFound      ErrorCode = 2001
	ErrAlreadyExists ErrorCode = 2002
	ErrBadRequest    ErrorCode = 2003

	// External service errors. The failing provider is reported through the
	// "provider" key of the failure context.
	ErrExternalService ErrorCode = 3000
	ErrAPIKeyMissing   ErrorCode = 3001
	ErrConnection      ErrorCode = 3003
	ErrAPI             ErrorCode = 3100
	ErrAPIUnavailable  ErrorCode = 3101

	// Weather and geocoding errors.
	ErrNoResults          ErrorCode = 3203
	ErrInvalidCoordinates ErrorCode = 3204

	// Profile errors.
	ErrProfileUpdateFailed    ErrorCode = 3300
	ErrInvalidCurrentPassword ErrorCode = 3301
	ErrProfileDeleteFailed    ErrorCode = 3302
)

var errorCodeNames = map[ErrorCode]string{
	ErrUnexpected:             "UNEXPECTED_ERROR",
	ErrDatabase:               "DATABASE_ERROR",
	ErrNotFound:               "NOT_FOUND",
	ErrAlreadyExists:          "ALREADY_EXISTS",
	ErrBadRequest:             "BAD_REQUEST",
	ErrExternalService:        "EXTERNAL_SERVICE_ERROR",
	ErrAPIKeyMissing:          "API_KEY_MISSING",
	ErrConnection:             "CONNECTION_ERROR",
	ErrAPI:                    "API_ERROR",
	ErrAPIUnavailable:         "API_UNAVAILABLE",
	ErrNoResults:              "NO_RESULTS",
	ErrInvalidCoordinates:     "INVALID_COORDINATES",
	ErrProfileUpdateFailed:    "PROFILE_UPDATE_FAILED",
	ErrInvalidCurrentPassword: "INVALID_CURRENT_PASSWORD",
	ErrProfileDeleteFailed:    "PROFILE_DELETE_FAILED",
}

var errorCodeMessages = map[ErrorCode]string{
	ErrUnexpected:             "An unexpected error occurred.",
	ErrDatabase:               "A database error occurred.",
	ErrNotFound:               "The requested resource was not found.",
	ErrAlreadyExists:          "The resource already exists.",
	ErrBadRequest:             "The request is invalid.",
	ErrExternalService:        "An external service error occurred.",
	ErrAPIKeyMissing:          "The API key for the external service is not configured.",
	ErrConnection:             "Could not connect to the external service.",
	ErrAPI:                    "The external service returned an error.",
	ErrAPIUnavailable:         "The external service is currently unavailable.",
	ErrNoResults:              "No results were found for the given query.",
	ErrInvalidCoordinates:     "The provided coordinates are invalid.",
	ErrProfileUpdateFailed:    "Failed to update profile information.",
	ErrInvalidCurrentPassword: "The current password is incorrect.",
	ErrProfileDeleteFailed:    "Failed to delete the account.",
}

// String returns the symbolic name of the code, e.g. "NO_RESULTS".
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Message returns the canonical human-readable message for the code.
func (c ErrorCode) Message() string {
	if msg, ok := errorCodeMessages[c]; ok {
		return msg
	}

	return errorCodeMessages[ErrUnexpected]
}

// Transient reports whether a failure with this code may disappear on retry.
// Transient failures are never cached.
func (c ErrorCode) Transient() bool {
	return c == ErrConnection || c == ErrUnexpected
}

// ServiceError exposes a failed Result through the error interface.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Provider identifiers used in failure contexts.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderFoursquare     = "foursquare"
)

// Keys used in failure contexts.
const (
	ContextProvider    = "provider"
	ContextAPIStatus   = "api_status"
	ContextAPIResponse = "api_response"
	ContextException   = "exception"
)
