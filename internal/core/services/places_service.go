package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

type placesService struct {
	provider ports.PlacesProvider
	cache    *ResultCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewPlacesService creates a PlacesService whose provider calls are cached for ttl.
func NewPlacesService(provider ports.PlacesProvider, cache *ResultCache, ttl time.Duration, logger *zap.Logger) ports.PlacesService {
	return &placesService{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *placesService) keyMissing() map[string]any {
	s.logger.Error("places API key is not configured")

	return map[string]any{domain.ContextProvider: domain.ProviderFoursquare}
}

// Search returns places near the query coordinates. The limit defaults to 6 and
// is capped at 50.
func (s *placesService) Search(ctx context.Context, query domain.PlaceSearch) (result domain.Result[[]domain.PlaceSummary]) {
	defer recoverToFailure(s.logger, "places.search", &result)

	if !s.provider.Configured() {
		return domain.Failure[[]domain.PlaceSummary](domain.ErrAPIKeyMissing, "", s.keyMissing())
	}

	query = query.Normalize()

	if err := query.Coordinates.Validate(); err != nil {
		return domain.Failure[[]domain.PlaceSummary](domain.ErrInvalidCoordinates, err.Error(), nil)
	}

	params := url.Values{
		"ll":     {query.Coordinates.LatLon()},
		"limit":  {strconv.Itoa(query.Limit)},
		"fields": {domain.PlaceFields},
	}

	if query.Radius > 0 {
		params["radius"] = []string{strconv.Itoa(query.Radius)}
	}

	return remember(ctx, s.cache, queryKey("places:search", params), s.ttl, func(ctx context.Context) domain.Result[[]domain.PlaceSummary] {
		places := s.provider.Search(ctx, query)

		if places.IsFailure() {
			s.logger.Error("places search failed",
				zap.Float64("latitude", query.Coordinates.Latitude),
				zap.Float64("longitude", query.Coordinates.Longitude),
				zap.Stringer("error_code", places.ErrorCode()),
				zap.String("error_message", places.ErrorMessage()))
		}

		return places
	})
}

// Details returns a single place. A blank placeID fails with BAD_REQUEST before
// anything else is attempted.
func (s *placesService) Details(ctx context.Context, placeID string) (result domain.Result[domain.PlaceDetail]) {
	defer recoverToFailure(s.logger, "places.details", &result)

	placeID = strings.TrimSpace(placeID)

	if placeID == "" {
		return domain.Failure[domain.PlaceDetail](domain.ErrBadRequest, "Place ID cannot be empty.", nil)
	}

	if !s.provider.Configured() {
		return domain.Failure[domain.PlaceDetail](domain.ErrAPIKeyMissing, "", s.keyMissing())
	}

	params := url.Values{
		"id":     {placeID},
		"fields": {domain.PlaceFields},
	}

	return remember(ctx, s.cache, queryKey("places:details", params), s.ttl, func(ctx context.Context) domain.Result[domain.PlaceDetail] {
		place := s.provider.Details(ctx, placeID)

		if place.IsFailure() {
			s.logger.Error("place details failed",
				zap.String("place_id", placeID),
				zap.Stringer("error_code", place.ErrorCode()),
				zap.String("error_message", place.ErrorMessage()))
		}

		return place
	})
}
