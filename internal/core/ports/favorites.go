package ports

import (
	"context"
	"errors"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

// ErrFavoriteNotFound is returned by repository deletes that matched no row.
var ErrFavoriteNotFound = errors.New("favorite not found")

// NewFavoriteCity carries the fields needed to store a favorite city.
type NewFavoriteCity struct {
	CityName  string
	Latitude  float64
	Longitude float64
}

// NewFavoritePlace carries the fields needed to store a favorite place.
type NewFavoritePlace struct {
	FsqID        string
	Name         string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	PhotoURL     *string
	Category     *string
	CategoryIcon *string
}

// FavoritesRepository persists favorites keyed by (user, natural key).
type FavoritesRepository interface {
	ListCities(ctx context.Context, userID int64) ([]domain.FavoriteCity, error)
	// CreateCity inserts the city unless (userID, city name) exists, in which case
	// the existing row is returned with created=false.
	CreateCity(ctx context.Context, userID int64, city NewFavoriteCity) (domain.FavoriteCity, bool, error)
	// DeleteCity returns ErrFavoriteNotFound when the user owns no such city.
	DeleteCity(ctx context.Context, userID int64, cityName string) error

	ListPlaces(ctx context.Context, userID int64) ([]domain.FavoritePlace, error)
	CreatePlace(ctx context.Context, userID int64, place NewFavoritePlace) (domain.FavoritePlace, bool, error)
	DeletePlace(ctx context.Context, userID int64, fsqID string) error
}
