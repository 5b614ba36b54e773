package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// MockWeatherService is a mock implementation of the WeatherService interface.
type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) GetCurrentWeather(ctx context.Context, req domain.WeatherRequest) domain.Result[domain.WeatherSnapshot] {
	return m.Called(ctx, req).Get(0).(domain.Result[domain.WeatherSnapshot])
}

// MockGeocodingService is a mock implementation of the GeocodingService interface.
type MockGeocodingService struct {
	mock.Mock
}

func (m *MockGeocodingService) Resolve(ctx context.Context, city string) domain.Result[domain.Coordinates] {
	return m.Called(ctx, city).Get(0).(domain.Result[domain.Coordinates])
}

// MockPlacesService is a mock implementation of the PlacesService interface.
type MockPlacesService struct {
	mock.Mock
}

func (m *MockPlacesService) Search(ctx context.Context, query domain.PlaceSearch) domain.Result[[]domain.PlaceSummary] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.PlaceSummary])
}

func (m *MockPlacesService) Details(ctx context.Context, placeID string) domain.Result[domain.PlaceDetail] {
	return m.Called(ctx, placeID).Get(0).(domain.Result[domain.PlaceDetail])
}

// MockFavoriteCityService is a mock implementation of the FavoriteCityService interface.
type MockFavoriteCityService struct {
	mock.Mock
}

func (m *MockFavoriteCityService) GetFavoriteCities(ctx context.Context, userID int64) domain.Result[[]domain.FavoriteCity] {
	return m.Called(ctx, userID).Get(0).(domain.Result[[]domain.FavoriteCity])
}

func (m *MockFavoriteCityService) StoreFavoriteCity(ctx context.Context, userID int64, city ports.NewFavoriteCity) domain.Result[domain.Stored[domain.FavoriteCity]] {
	return m.Called(ctx, userID, city).Get(0).(domain.Result[domain.Stored[domain.FavoriteCity]])
}

func (m *MockFavoriteCityService) DeleteFavoriteCity(ctx context.Context, userID int64, cityName string) domain.Result[struct{}] {
	return m.Called(ctx, userID, cityName).Get(0).(domain.Result[struct{}])
}

// MockFavoritePlaceService is a mock implementation of the FavoritePlaceService interface.
type MockFavoritePlaceService struct {
	mock.Mock
}

func (m *MockFavoritePlaceService) GetFavoritePlaces(ctx context.Context, userID int64) domain.Result[[]domain.FavoritePlace] {
	return m.Called(ctx, userID).Get(0).(domain.Result[[]domain.FavoritePlace])
}

func (m *MockFavoritePlaceService) StoreFavoritePlace(ctx context.Context, userID int64, place ports.NewFavoritePlace) domain.Result[domain.Stored[domain.FavoritePlace]] {
	return m.Called(ctx, userID, place).Get(0).(domain.Result[domain.Stored[domain.FavoritePlace]])
}

func (m *MockFavoritePlaceService) DeleteFavoritePlace(ctx context.Context, userID int64, fsqID string) domain.Result[struct{}] {
	return m.Called(ctx, userID, fsqID).Get(0).(domain.Result[struct{}])
}
