package ports

import (
	"context"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

// GeocodingService resolves city names to coordinates.
type GeocodingService interface {
	Resolve(ctx context.Context, city string) domain.Result[domain.Coordinates]
}

// WeatherService returns current weather for a city or a coordinate pair.
type WeatherService interface {
	GetCurrentWeather(ctx context.Context, req domain.WeatherRequest) domain.Result[domain.WeatherSnapshot]
}

// PlacesService searches nearby places and fetches place details.
type PlacesService interface {
	Search(ctx context.Context, query domain.PlaceSearch) domain.Result[[]domain.PlaceSummary]
	Details(ctx context.Context, placeID string) domain.Result[domain.PlaceDetail]
}

// FavoriteCityService manages a user's favorite cities.
type FavoriteCityService interface {
	GetFavoriteCities(ctx context.Context, userID int64) domain.Result[[]domain.FavoriteCity]
	StoreFavoriteCity(ctx context.Context, userID int64, city NewFavoriteCity) domain.Result[domain.Stored[domain.FavoriteCity]]
	DeleteFavoriteCity(ctx context.Context, userID int64, cityName string) domain.Result[struct{}]
}

// FavoritePlaceService manages a user's favorite places.
type FavoritePlaceService interface {
	GetFavoritePlaces(ctx context.Context, userID int64) domain.Result[[]domain.FavoritePlace]
	StoreFavoritePlace(ctx context.Context, userID int64, place NewFavoritePlace) domain.Result[domain.Stored[domain.FavoritePlace]]
	DeleteFavoritePlace(ctx context.Context, userID int64, fsqID string) domain.Result[struct{}]
}
