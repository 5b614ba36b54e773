package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// MockCacheService is a mock implementation of the CacheService interface.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheService) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mapStore is a minimal in-process CacheService that ignores expiry.
type mapStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMapStore() *mapStore {
	return &mapStore{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]

	if !ok {
		return nil, ports.ErrCacheMiss
	}

	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = value
	s.ttls[key] = ttl

	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)

	return nil
}

func (s *mapStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = map[string][]byte{}

	return nil
}

func (s *mapStore) ttl(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]

	return s.ttls[key], ok
}

// MockGeocodingProvider is a mock implementation of the GeocodingProvider interface.
type MockGeocodingProvider struct {
	mock.Mock
}

func (m *MockGeocodingProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockGeocodingProvider) LookupCity(ctx context.Context, city string) domain.Result[[]ports.GeocodingMatch] {
	return m.Called(ctx, city).Get(0).(domain.Result[[]ports.GeocodingMatch])
}

// MockGeocodingService is a mock implementation of the GeocodingService interface.
type MockGeocodingService struct {
	mock.Mock
}

func (m *MockGeocodingService) Resolve(ctx context.Context, city string) domain.Result[domain.Coordinates] {
	return m.Called(ctx, city).Get(0).(domain.Result[domain.Coordinates])
}

// MockWeatherProvider is a mock implementation of the WeatherProvider interface.
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockWeatherProvider) CurrentConditions(ctx context.Context, coords domain.Coordinates) domain.Result[domain.WeatherSnapshot] {
	return m.Called(ctx, coords).Get(0).(domain.Result[domain.WeatherSnapshot])
}

// MockPlacesProvider is a mock implementation of the PlacesProvider interface.
type MockPlacesProvider struct {
	mock.Mock
}

func (m *MockPlacesProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockPlacesProvider) Search(ctx context.Context, query domain.PlaceSearch) domain.Result[[]domain.PlaceSummary] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.PlaceSummary])
}

func (m *MockPlacesProvider) Details(ctx context.Context, placeID string) domain.Result[domain.PlaceDetail] {
	return m.Called(ctx, placeID).Get(0).(domain.Result[domain.PlaceDetail])
}

// MockFavoritesRepository is a mock implementation of the FavoritesRepository interface.
type MockFavoritesRepository struct {
	mock.Mock
}

func (m *MockFavoritesRepository) ListCities(ctx context.Context, userID int64) ([]domain.FavoriteCity, error) {
	args := m.Called(ctx, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.FavoriteCity), args.Error(1)
}

func (m *MockFavoritesRepository) CreateCity(ctx context.Context, userID int64, city ports.NewFavoriteCity) (domain.FavoriteCity, bool, error) {
	args := m.Called(ctx, userID, city)
	return args.Get(0).(domain.FavoriteCity), args.Bool(1), args.Error(2)
}

func (m *MockFavoritesRepository) DeleteCity(ctx context.Context, userID int64, cityName string) error {
	return m.Called(ctx, userID, cityName).Error(0)
}

func (m *MockFavoritesRepository) ListPlaces(ctx context.Context, userID int64) ([]domain.FavoritePlace, error) {
	args := m.Called(ctx, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.FavoritePlace), args.Error(1)
}

func (m *MockFavoritesRepository) CreatePlace(ctx context.Context, userID int64, place ports.NewFavoritePlace) (domain.FavoritePlace, bool, error) {
	args := m.Called(ctx, userID, place)
	return args.Get(0).(domain.FavoritePlace), args.Bool(1), args.Error(2)
}

func (m *MockFavoritesRepository) DeletePlace(ctx context.Context, userID int64, fsqID string) error {
	return m.Called(ctx, userID, fsqID).Error(0)
}

func ptr[T any](v T) *T { return &v }
