package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

type geocodingService struct {
	provider ports.GeocodingProvider
	cache    *ResultCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewGeocodingService creates a GeocodingService whose lookups are cached for ttl.
func NewGeocodingService(provider ports.GeocodingProvider, cache *ResultCache, ttl time.Duration, logger *zap.Logger) ports.GeocodingService {
	return &geocodingService{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Resolve returns the coordinates of the best match for city.
//
// The cache key uses the trimmed, lowercased name while the provider receives the
// name exactly as given. An empty match list, or a first match without coordinates,
// yields NO_RESULTS, which is cached like a success.
func (s *geocodingService) Resolve(ctx context.Context, city string) (result domain.Result[domain.Coordinates]) {
	defer recoverToFailure(s.logger, "geocoding.resolve", &result)

	providerCtx := map[string]any{domain.ContextProvider: domain.ProviderOpenWeatherMap}

	if !s.provider.Configured() {
		s.logger.Error("geocoding API key is not configured")

		return domain.Failure[domain.Coordinates](domain.ErrAPIKeyMissing, "", providerCtx)
	}

	normalized := strings.ToLower(strings.TrimSpace(city))

	if normalized == "" {
		return domain.Failure[domain.Coordinates](domain.ErrBadRequest, "A city name is required.", nil)
	}

	return remember(ctx, s.cache, "geocode:"+normalized, s.ttl, func(ctx context.Context) domain.Result[domain.Coordinates] {
		matches := s.provider.LookupCity(ctx, city)

		if matches.IsFailure() {
			s.logger.Warn("geocoding lookup failed",
				zap.String("city", city),
				zap.Stringer("error_code", matches.ErrorCode()),
				zap.String("error_message", matches.ErrorMessage()))

			return domain.ForwardFailure[domain.Coordinates](matches)
		}

		list := matches.Value()

		if len(list) == 0 || list[0].Lat == nil || list[0].Lon == nil {
			s.logger.Info("no geocoding results", zap.String("city", city))

			return domain.Failure[domain.Coordinates](
				domain.ErrNoResults,
				fmt.Sprintf("No coordinates found for city: %s", city),
				map[string]any{domain.ContextProvider: domain.ProviderOpenWeatherMap, "city": city},
			)
		}

		return domain.Success(domain.Coordinates{
			Latitude:  *list[0].Lat,
			Longitude: *list[0].Lon,
		})
	})
}
