package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Cache.WeatherTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.GeocodingTTL)
	assert.Equal(t, 168*time.Hour, cfg.Cache.PlacesTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.FailureTTL)
	assert.Equal(t, 10*time.Second, cfg.External.HTTPTimeout)
	assert.Equal(t, "https://api.foursquare.com/v3/places", cfg.External.FoursquareBaseURL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "owm")
	t.Setenv("CACHE_WEATHER_TTL", "90")
	t.Setenv("CACHE_PLACES_TTL", "2h")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("REDIS_ENABLED", "false")

	cfg := FromEnv()

	assert.Equal(t, "owm", cfg.External.OpenWeatherAPIKey)
	assert.Equal(t, 90*time.Second, cfg.Cache.WeatherTTL)
	assert.Equal(t, 2*time.Hour, cfg.Cache.PlacesTTL)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOURSQUARE_API_KEY=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("FOURSQUARE_API_KEY")
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.External.FoursquareAPIKey)
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load()

	assert.NoError(t, err)
}
