package steps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/foursquare"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// fakeProviders serves the OpenWeatherMap and Foursquare endpoints the
// service calls, counting every request it receives.
type fakeProviders struct {
	mu sync.Mutex

	cities        map[string][2]float64
	weatherCity   string
	temperature   float64
	description   string
	weatherStatus int

	places       []foursquare.APIPlace
	placesStatus int
	lastLimit    string

	hits   map[string]int
	server *httptest.Server
}

func newFakeProviders() *fakeProviders {
	f := &fakeProviders{
		cities:      make(map[string][2]float64),
		temperature: 18,
		description: "few clouds",
		hits:        make(map[string]int),
	}

	router := mux.NewRouter()
	router.HandleFunc("/geo/1.0/direct", f.geocode)
	router.HandleFunc("/data/2.5/weather", f.weather)
	router.HandleFunc("/v3/places/search", f.searchPlaces)
	router.HandleFunc("/v3/places/{id}", f.placeDetails)

	f.server = httptest.NewServer(router)

	return f
}

func (f *fakeProviders) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[name]
}

func (f *fakeProviders) geocode(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits["geocoding"]++

	if f.weatherStatus != 0 {
		writeFakeJSON(w, f.weatherStatus, map[string]interface{}{"cod": f.weatherStatus, "message": "upstream failure"})
		return
	}

	matches := []ports.GeocodingMatch{}

	if coords, ok := f.cities[strings.ToLower(r.URL.Query().Get("q"))]; ok {
		lat, lon := coords[0], coords[1]
		matches = append(matches, ports.GeocodingMatch{Name: r.URL.Query().Get("q"), Country: "PT", Lat: &lat, Lon: &lon})
	}

	writeFakeJSON(w, http.StatusOK, matches)
}

func (f *fakeProviders) weather(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits["weather"]++

	if f.weatherStatus != 0 {
		writeFakeJSON(w, f.weatherStatus, map[string]interface{}{"cod": f.weatherStatus, "message": "upstream failure"})
		return
	}

	writeFakeJSON(w, http.StatusOK, map[string]interface{}{
		"main": map[string]interface{}{
			"temp":       f.temperature,
			"feels_like": f.temperature - 1,
			"temp_min":   f.temperature - 2,
			"temp_max":   f.temperature + 2,
			"pressure":   1016,
			"humidity":   61,
		},
		"weather": []map[string]interface{}{
			{"main": "Clear", "description": f.description, "icon": "01d"},
		},
		"wind":     map[string]interface{}{"speed": 3.6, "deg": 320},
		"sys":      map[string]interface{}{"country": "PT", "sunrise": 1718256000, "sunset": 1718310000},
		"timezone": 3600,
		"name":     f.weatherCity,
	})
}

func (f *fakeProviders) searchPlaces(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits["search"]++
	f.lastLimit = r.URL.Query().Get("limit")

	if f.placesStatus != 0 {
		writeFakeJSON(w, f.placesStatus, map[string]string{"message": "upstream failure"})
		return
	}

	writeFakeJSON(w, http.StatusOK, map[string]interface{}{"results": f.places})
}

func (f *fakeProviders) placeDetails(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits["details"]++

	if f.placesStatus != 0 {
		writeFakeJSON(w, f.placesStatus, map[string]string{"message": "upstream failure"})
		return
	}

	for _, p := range f.places {
		if p.FsqID == mux.Vars(r)["id"] {
			writeFakeJSON(w, http.StatusOK, p)
			return
		}
	}

	writeFakeJSON(w, http.StatusNotFound, map[string]string{"message": "Place not found"})
}

func writeFakeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// memoryFavorites is an in-process ports.FavoritesRepository.
type memoryFavorites struct {
	mu     sync.Mutex
	nextID int64
	cities []domain.FavoriteCity
	places []domain.FavoritePlace
}

var _ ports.FavoritesRepository = (*memoryFavorites)(nil)

func (m *memoryFavorites) ListCities(_ context.Context, userID int64) ([]domain.FavoriteCity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.FavoriteCity{}

	for _, c := range m.cities {
		if c.UserID == userID {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CityName < out[j].CityName })

	return out, nil
}

func (m *memoryFavorites) CreateCity(_ context.Context, userID int64, city ports.NewFavoriteCity) (domain.FavoriteCity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.cities {
		if c.UserID == userID && c.CityName == city.CityName {
			return c, false, nil
		}
	}

	m.nextID++
	now := time.Now().UTC()
	stored := domain.FavoriteCity{
		ID:        m.nextID,
		UserID:    userID,
		CityName:  city.CityName,
		Latitude:  city.Latitude,
		Longitude: city.Longitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.cities = append(m.cities, stored)

	return stored, true, nil
}

func (m *memoryFavorites) DeleteCity(_ context.Context, userID int64, cityName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.cities {
		if c.UserID == userID && c.CityName == cityName {
			m.cities = append(m.cities[:i], m.cities[i+1:]...)
			return nil
		}
	}

	return ports.ErrFavoriteNotFound
}

func (m *memoryFavorites) ListPlaces(_ context.Context, userID int64) ([]domain.FavoritePlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.FavoritePlace{}

	for _, p := range m.places {
		if p.UserID == userID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (m *memoryFavorites) CreatePlace(_ context.Context, userID int64, place ports.NewFavoritePlace) (domain.FavoritePlace, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.places {
		if p.UserID == userID && p.FsqID == place.FsqID {
			return p, false, nil
		}
	}

	m.nextID++
	now := time.Now().UTC()
	stored := domain.FavoritePlace{
		ID:           m.nextID,
		UserID:       userID,
		FsqID:        place.FsqID,
		Name:         place.Name,
		Address:      place.Address,
		Latitude:     place.Latitude,
		Longitude:    place.Longitude,
		PhotoURL:     place.PhotoURL,
		Category:     place.Category,
		CategoryIcon: place.CategoryIcon,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.places = append(m.places, stored)

	return stored, true, nil
}

func (m *memoryFavorites) DeletePlace(_ context.Context, userID int64, fsqID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.places {
		if p.UserID == userID && p.FsqID == fsqID {
			m.places = append(m.places[:i], m.places[i+1:]...)
			return nil
		}
	}

	return ports.ErrFavoriteNotFound
}
