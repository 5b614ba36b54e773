package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

type weatherService struct {
	provider ports.WeatherProvider
	geocoder ports.GeocodingService
	cache    *ResultCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewWeatherService creates a WeatherService. City-only requests are resolved
// through geocoder; provider responses are cached for ttl.
func NewWeatherService(
	provider ports.WeatherProvider,
	geocoder ports.GeocodingService,
	cache *ResultCache,
	ttl time.Duration,
	logger *zap.Logger,
) ports.WeatherService {
	return &weatherService{
		provider: provider,
		geocoder: geocoder,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// weatherCacheKey rounds to four decimals (about 11 m) so nearby lookups share an entry.
func weatherCacheKey(coords domain.Coordinates) string {
	return "weather:lat_" + keyDegrees(coords.Latitude) + "_lon_" + keyDegrees(coords.Longitude)
}

// keyDegrees formats v to four decimals, folding "-0.0000" into "0.0000".
func keyDegrees(v float64) string {
	s := fmt.Sprintf("%.4f", v)

	if s == "-0.0000" {
		return "0.0000"
	}

	return s
}

// GetCurrentWeather returns current conditions for the request's coordinates, or for
// its city when no coordinates are given. Geocoding failures are returned unchanged.
func (s *weatherService) GetCurrentWeather(ctx context.Context, req domain.WeatherRequest) (result domain.Result[domain.WeatherSnapshot]) {
	defer recoverToFailure(s.logger, "weather.current", &result)

	if !s.provider.Configured() {
		s.logger.Error("weather API key is not configured")

		return domain.Failure[domain.WeatherSnapshot](
			domain.ErrAPIKeyMissing,
			"",
			map[string]any{domain.ContextProvider: domain.ProviderOpenWeatherMap},
		)
	}

	coords, ok := req.Coordinates()

	if !ok && req.HasCity() {
		geocoded := s.geocoder.Resolve(ctx, *req.City)

		if geocoded.IsFailure() {
			return domain.ForwardFailure[domain.WeatherSnapshot](geocoded)
		}

		coords, ok = geocoded.Value(), true
	}

	if !ok {
		return domain.Failure[domain.WeatherSnapshot](
			domain.ErrInvalidCoordinates,
			"Latitude and longitude are required to fetch weather.",
			nil,
		)
	}

	if err := coords.Validate(); err != nil {
		return domain.Failure[domain.WeatherSnapshot](domain.ErrInvalidCoordinates, err.Error(), nil)
	}

	return remember(ctx, s.cache, weatherCacheKey(coords), s.ttl, func(ctx context.Context) domain.Result[domain.WeatherSnapshot] {
		snapshot := s.provider.CurrentConditions(ctx, coords)

		if snapshot.IsFailure() {
			s.logger.Error("weather lookup failed",
				zap.Float64("latitude", coords.Latitude),
				zap.Float64("longitude", coords.Longitude),
				zap.Stringer("error_code", snapshot.ErrorCode()),
				zap.String("error_message", snapshot.ErrorMessage()))
		}

		return snapshot
	})
}
