package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

type favoriteCityService struct {
	repo   ports.FavoritesRepository
	logger *zap.Logger
}

// NewFavoriteCityService creates a FavoriteCityService backed by repo.
func NewFavoriteCityService(repo ports.FavoritesRepository, logger *zap.Logger) ports.FavoriteCityService {
	return &favoriteCityService{repo: repo, logger: logger}
}

// GetFavoriteCities lists the user's cities ordered by name.
func (s *favoriteCityService) GetFavoriteCities(ctx context.Context, userID int64) (result domain.Result[[]domain.FavoriteCity]) {
	defer recoverToFailure(s.logger, "favorites.cities.list", &result)

	cities, err := s.repo.ListCities(ctx, userID)

	if err != nil {
		s.logger.Error("failed to list favorite cities", zap.Int64("user_id", userID), zap.Error(err))

		return domain.FailureFromError[[]domain.FavoriteCity](err, domain.ErrDatabase, "Could not load favorite cities.")
	}

	return domain.Success(cities)
}

// StoreFavoriteCity saves the city unless the user already has it; an existing row is
// returned unchanged with Created set to false.
func (s *favoriteCityService) StoreFavoriteCity(
	ctx context.Context,
	userID int64,
	city ports.NewFavoriteCity,
) (result domain.Result[domain.Stored[domain.FavoriteCity]]) {
	defer recoverToFailure(s.logger, "favorites.cities.store", &result)

	city.CityName = strings.TrimSpace(city.CityName)

	if city.CityName == "" {
		return domain.Failure[domain.Stored[domain.FavoriteCity]](domain.ErrBadRequest, "City name is required.", nil)
	}

	coords := domain.Coordinates{Latitude: city.Latitude, Longitude: city.Longitude}

	if err := coords.Validate(); err != nil {
		return domain.Failure[domain.Stored[domain.FavoriteCity]](domain.ErrInvalidCoordinates, err.Error(), nil)
	}

	row, created, err := s.repo.CreateCity(ctx, userID, city)

	if err != nil {
		s.logger.Error("failed to store favorite city",
			zap.Int64("user_id", userID),
			zap.String("city_name", city.CityName),
			zap.Error(err))

		return domain.FailureFromError[domain.Stored[domain.FavoriteCity]](err, domain.ErrDatabase, "Could not save favorite city.")
	}

	return domain.Success(domain.Stored[domain.FavoriteCity]{Record: row, Created: created})
}

// DeleteFavoriteCity removes the user's city. A city that the user does not own
// yields NOT_FOUND, whether or not another user has it.
func (s *favoriteCityService) DeleteFavoriteCity(ctx context.Context, userID int64, cityName string) (result domain.Result[struct{}]) {
	defer recoverToFailure(s.logger, "favorites.cities.delete", &result)

	err := s.repo.DeleteCity(ctx, userID, strings.TrimSpace(cityName))

	return deleteOutcome(s.logger, err, "Favorite city not found.", zap.Int64("user_id", userID), zap.String("city_name", cityName))
}

type favoritePlaceService struct {
	repo   ports.FavoritesRepository
	logger *zap.Logger
}

// NewFavoritePlaceService creates a FavoritePlaceService backed by repo.
func NewFavoritePlaceService(repo ports.FavoritesRepository, logger *zap.Logger) ports.FavoritePlaceService {
	return &favoritePlaceService{repo: repo, logger: logger}
}

// GetFavoritePlaces lists the user's places, most recently saved first.
func (s *favoritePlaceService) GetFavoritePlaces(ctx context.Context, userID int64) (result domain.Result[[]domain.FavoritePlace]) {
	defer recoverToFailure(s.logger, "favorites.places.list", &result)

	places, err := s.repo.ListPlaces(ctx, userID)

	if err != nil {
		s.logger.Error("failed to list favorite places", zap.Int64("user_id", userID), zap.Error(err))

		return domain.FailureFromError[[]domain.FavoritePlace](err, domain.ErrDatabase, "Could not load favorite places.")
	}

	return domain.Success(places)
}

// StoreFavoritePlace saves the place unless the user already has one with the same fsq_id.
func (s *favoritePlaceService) StoreFavoritePlace(
	ctx context.Context,
	userID int64,
	place ports.NewFavoritePlace,
) (result domain.Result[domain.Stored[domain.FavoritePlace]]) {
	defer recoverToFailure(s.logger, "favorites.places.store", &result)

	place.FsqID = strings.TrimSpace(place.FsqID)
	place.Name = strings.TrimSpace(place.Name)

	if place.FsqID == "" || place.Name == "" {
		return domain.Failure[domain.Stored[domain.FavoritePlace]](domain.ErrBadRequest, "Place ID and name are required.", nil)
	}

	if place.Latitude != nil && place.Longitude != nil {
		coords := domain.Coordinates{Latitude: *place.Latitude, Longitude: *place.Longitude}

		if err := coords.Validate(); err != nil {
			return domain.Failure[domain.Stored[domain.FavoritePlace]](domain.ErrInvalidCoordinates, err.Error(), nil)
		}
	}

	row, created, err := s.repo.CreatePlace(ctx, userID, place)

	if err != nil {
		s.logger.Error("failed to store favorite place",
			zap.Int64("user_id", userID),
			zap.String("fsq_id", place.FsqID),
			zap.Error(err))

		return domain.FailureFromError[domain.Stored[domain.FavoritePlace]](err, domain.ErrDatabase, "Could not save favorite place.")
	}

	return domain.Success(domain.Stored[domain.FavoritePlace]{Record: row, Created: created})
}

// DeleteFavoritePlace removes the user's place identified by fsqID.
func (s *favoritePlaceService) DeleteFavoritePlace(ctx context.Context, userID int64, fsqID string) (result domain.Result[struct{}]) {
	defer recoverToFailure(s.logger, "favorites.places.delete", &result)

	err := s.repo.DeletePlace(ctx, userID, strings.TrimSpace(fsqID))

	return deleteOutcome(s.logger, err, "Favorite place not found.", zap.Int64("user_id", userID), zap.String("fsq_id", fsqID))
}

func deleteOutcome(logger *zap.Logger, err error, notFound string, fields ...zap.Field) domain.Result[struct{}] {
	switch {
	case err == nil:
		return domain.Success(struct{}{})
	case errors.Is(err, ports.ErrFavoriteNotFound):
		return domain.Failure[struct{}](domain.ErrNotFound, notFound, nil)
	default:
		logger.Error("failed to delete favorite", append(fields, zap.Error(err))...)

		return domain.FailureFromError[struct{}](err, domain.ErrDatabase, "Could not delete favorite.")
	}
}
