package rest

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// WeatherHandler handles HTTP requests for current weather and city geocoding.
// It acts as the primary adapter between HTTP transport and the weather and
// geocoding services.
type WeatherHandler struct {
	responder

	// weather provides current conditions by city or coordinates
	weather ports.WeatherService

	// geocoding resolves city names to coordinates
	geocoding ports.GeocodingService

	validate *validator.Validate
}

// NewWeatherHandler creates a new HTTP handler for weather operations.
//
// Parameters:
//   - weather: WeatherService for current conditions
//   - geocoding: GeocodingService for city lookups
//   - logger: Zap logger for request logging and error tracking
//
// Returns:
//   - *WeatherHandler: Configured handler instance
func NewWeatherHandler(weather ports.WeatherService, geocoding ports.GeocodingService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		responder: responder{logger: logger},
		weather:   weather,
		geocoding: geocoding,
		validate:  newValidator(),
	}
}

type weatherQuery struct {
	City      string `json:"city" validate:"omitempty,min=2,max=255"`
	Latitude  string `json:"latitude" validate:"required_with=Longitude,omitempty,numeric"`
	Longitude string `json:"longitude" validate:"required_with=Latitude,omitempty,numeric"`
}

type geocodeQuery struct {
	City string `json:"city" validate:"required,max=255"`
}

// GetWeather handles GET requests for current weather.
//
// Parameters:
//   - w: HTTP response writer
//   - r: HTTP request with either 'city' or both 'latitude' and 'longitude'
//
// Response codes:
//   - 200: Success with the weather snapshot
//   - 400: Bad request, invalid coordinates or unknown city
//   - 422: Malformed query parameters
//   - 424: The weather provider rejected the request
//   - 503: The weather provider is not configured
//   - 504: The weather provider could not be reached or is unavailable
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := weatherQuery{
		City:      params.Get("city"),
		Latitude:  params.Get("latitude"),
		Longitude: params.Get("longitude"),
	}

	if err := h.validate.Struct(query); err != nil {
		h.respondWithValidationError(w, err)
		return
	}

	var req domain.WeatherRequest

	if query.City != "" {
		req.City = &query.City
	}

	if query.Latitude != "" && query.Longitude != "" {
		// Both values passed the numeric check.
		latitude, _ := strconv.ParseFloat(query.Latitude, 64)
		longitude, _ := strconv.ParseFloat(query.Longitude, 64)

		req.Latitude = &latitude
		req.Longitude = &longitude
	}

	result := h.weather.GetCurrentWeather(r.Context(), req)

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), result.Provider(), weatherStatuses)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result.Value())
}

// Geocode handles GET requests resolving a city name to coordinates.
//
// Response codes:
//   - 200: Success with latitude and longitude
//   - 404: No city matched the name
//   - 422: Missing city parameter
func (h *WeatherHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := geocodeQuery{City: r.URL.Query().Get("city")}

	if err := h.validate.Struct(query); err != nil {
		h.respondWithValidationError(w, err)
		return
	}

	result := h.geocoding.Resolve(r.Context(), query.City)

	if result.IsFailure() {
		message := result.ErrorMessage()

		if result.ErrorCode() == domain.ErrNoResults {
			message = "City not found."
		}

		h.respondWithFailure(w, r, result.ErrorCode(), message, result.Provider(), geocodingStatuses)

		return
	}

	h.respondWithJSON(w, http.StatusOK, result.Value())
}
