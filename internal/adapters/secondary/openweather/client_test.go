package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

const moscowWeather = `{
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 12.5, "feels_like": 11.2, "temp_min": 11, "temp_max": 14, "pressure": 1012, "humidity": 81},
	"visibility": 10000,
	"wind": {"speed": 4.1, "deg": 220},
	"clouds": {"all": 75},
	"rain": {"1h": 0.4},
	"sys": {"country": "RU", "sunrise": 1700000000, "sunset": 1700030000},
	"timezone": 10800,
	"name": "Moscow"
}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func TestCurrentConditions_FormatsResponse(t *testing.T) {
	var gotQuery map[string]string

	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"lat":   q.Get("lat"),
			"lon":   q.Get("lon"),
			"appid": q.Get("appid"),
			"units": q.Get("units"),
		}
		_, _ = w.Write([]byte(moscowWeather))
	})

	client := NewClient(Config{APIKey: "key", WeatherURL: server.URL}, upstream.Config{}, zap.NewNop())

	got := client.CurrentConditions(context.Background(), domain.Coordinates{Latitude: 55.7558, Longitude: 37.6173})

	require.True(t, got.IsSuccess())
	assert.Equal(t, map[string]string{"lat": "55.7558", "lon": "37.6173", "appid": "key", "units": "metric"}, gotQuery)

	snapshot := got.Value()
	assert.Equal(t, 12.5, snapshot.Temperature)
	assert.Equal(t, float64(81), snapshot.Humidity)
	assert.Equal(t, "light rain", snapshot.Description)
	assert.Equal(t, "Rain", snapshot.MainCondition)
	require.NotNil(t, snapshot.IconURL)
	assert.Equal(t, "https://openweathermap.org/img/wn/10d@2x.png", *snapshot.IconURL)
	require.NotNil(t, snapshot.Rain1h)
	assert.Equal(t, 0.4, *snapshot.Rain1h)
	assert.Nil(t, snapshot.Snow1h)
	assert.Nil(t, snapshot.WindGust)
	require.NotNil(t, snapshot.Sunrise)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *snapshot.Sunrise)
	require.NotNil(t, snapshot.TimezoneOffsetSeconds)
	assert.Equal(t, 10800, *snapshot.TimezoneOffsetSeconds)
	assert.Equal(t, "Moscow", snapshot.CityName)
	assert.Equal(t, "RU", snapshot.CountryCode)
}

func TestCurrentConditions_IncompleteResponse(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Nowhere","weather":[]}`))
	})

	client := NewClient(Config{APIKey: "key", WeatherURL: server.URL}, upstream.Config{}, zap.NewNop())

	got := client.CurrentConditions(context.Background(), domain.Coordinates{Latitude: 1, Longitude: 2})

	require.True(t, got.IsFailure())
	assert.Equal(t, domain.ErrAPI, got.ErrorCode())
	assert.Equal(t, "Invalid weather data format received.", got.ErrorMessage())
	assert.Equal(t, domain.ProviderOpenWeatherMap, got.Provider())
}

func TestCurrentConditions_ForwardsProviderFailure(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	})

	client := NewClient(Config{APIKey: "bad", WeatherURL: server.URL}, upstream.Config{}, zap.NewNop())

	got := client.CurrentConditions(context.Background(), domain.Coordinates{})

	assert.Equal(t, domain.ErrAPI, got.ErrorCode())
	assert.Equal(t, "Invalid API key.", got.ErrorMessage())
	assert.Equal(t, http.StatusUnauthorized, got.ErrorContext()[domain.ContextAPIStatus])
}

func TestLookupCity(t *testing.T) {
	var gotQ, gotLimit string

	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[{"name":"Paris","lat":48.8566,"lon":2.3522,"country":"FR","state":"Ile-de-France"}]`))
	})

	client := NewClient(Config{APIKey: "key", GeocodingURL: server.URL}, upstream.Config{}, zap.NewNop())

	got := client.LookupCity(context.Background(), "Paris")

	require.True(t, got.IsSuccess())
	assert.Equal(t, "Paris", gotQ)
	assert.Equal(t, "1", gotLimit)
	require.Len(t, got.Value(), 1)

	match := got.Value()[0]
	assert.Equal(t, "FR", match.Country)
	require.NotNil(t, match.Lat)
	assert.Equal(t, 48.8566, *match.Lat)
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}, upstream.Config{}, zap.NewNop()).Configured())
	assert.True(t, NewClient(Config{APIKey: "k"}, upstream.Config{}, zap.NewNop()).Configured())
}

func TestFormatWeather_Defaults(t *testing.T) {
	raw := CurrentWeather{
		Main:    &MainReadings{Temp: -3},
		Weather: []Condition{{Main: "Snow"}},
	}

	snapshot, err := FormatWeather(raw)

	require.NoError(t, err)
	assert.Equal(t, "N/A", snapshot.Description)
	assert.Nil(t, snapshot.IconURL)
	assert.Nil(t, snapshot.Sunrise)
	assert.Equal(t, float64(-3), snapshot.Temperature)
}
