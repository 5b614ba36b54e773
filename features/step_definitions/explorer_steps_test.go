package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/primary/rest"
	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/foursquare"
	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/openweather"
	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/city-explorer-service/internal/core/services"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/cache"
	"github.com/sean-rowe/city-explorer-service/internal/middleware"
)

type testContext struct {
	providers  *fakeProviders
	favorites  *memoryFavorites
	server     *httptest.Server
	weatherKey string
	placesKey  string
	userID     string

	status int
	body   []byte
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &testContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*tc = testContext{}
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, nil
	})

	ctx.Step(`^the city explorer service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^I am user (\d+)$`, tc.iAmUser)
	ctx.Step(`^I request "([^"]*)"$`, tc.iRequest)
	ctx.Step(`^I delete "([^"]*)"$`, tc.iDelete)

	ctx.Step(`^OpenWeatherMap knows the city "([^"]*)" at latitude ([\-\d.]+) and longitude ([\-\d.]+)$`, tc.openWeatherKnowsCity)
	ctx.Step(`^OpenWeatherMap reports ([\-\d.]+) degrees with "([^"]*)"$`, tc.openWeatherReports)
	ctx.Step(`^OpenWeatherMap responds with status (\d+)$`, tc.openWeatherRespondsWith)
	ctx.Step(`^the OpenWeatherMap API key is not configured$`, tc.openWeatherKeyMissing)
	ctx.Step(`^OpenWeatherMap should have received (\d+) (weather|geocoding) requests?$`, tc.openWeatherShouldHaveReceived)

	ctx.Step(`^Foursquare lists the place "([^"]*)" named "([^"]*)" in category "([^"]*)"$`, tc.foursquareListsPlace)
	ctx.Step(`^Foursquare responds with status (\d+)$`, tc.foursquareRespondsWith)
	ctx.Step(`^the Foursquare API key is not configured$`, tc.foursquareKeyMissing)
	ctx.Step(`^Foursquare should have been asked for (\d+) results$`, tc.foursquareAskedFor)

	ctx.Step(`^I save the favorite city "([^"]*)" at latitude ([\-\d.]+) and longitude ([\-\d.]+)$`, tc.iSaveFavoriteCity)
	ctx.Step(`^I save the favorite place "([^"]*)" named "([^"]*)"$`, tc.iSaveFavoritePlace)

	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, tc.theResponseFieldShouldBeString)
	ctx.Step(`^the response field "([^"]*)" should be ([\-\d.]+)$`, tc.theResponseFieldShouldBeNumber)
	ctx.Step(`^the error code should be "([^"]*)"$`, tc.theErrorCodeShouldBe)
	ctx.Step(`^the error message should contain "([^"]*)"$`, tc.theErrorMessageShouldContain)
	ctx.Step(`^the response should list (\d+) places?$`, tc.theResponseShouldListPlaces)
	ctx.Step(`^the response should list (\d+) favorites?$`, tc.theResponseShouldListFavorites)
	ctx.Step(`^the first place should be named "([^"]*)"$`, tc.theFirstPlaceShouldBeNamed)
	ctx.Step(`^the first place photo should end with "([^"]*)"$`, tc.theFirstPlacePhotoShouldEndWith)
	ctx.Step(`^the response photo should end with "([^"]*)"$`, tc.theResponsePhotoShouldEndWith)
}

func (tc *testContext) close() {
	if tc.server != nil {
		tc.server.Close()
	}

	if tc.providers != nil {
		tc.providers.server.Close()
	}
}

func (tc *testContext) theServiceIsRunning() error {
	tc.providers = newFakeProviders()
	tc.favorites = &memoryFavorites{}
	tc.weatherKey = "owm-test-key"
	tc.placesKey = "fsq-test-key"

	return nil
}

// handler builds the service on first use so that Given steps can still
// change provider keys after the service is declared running.
func (tc *testContext) handler() *httptest.Server {
	if tc.server != nil {
		return tc.server
	}

	logger := zap.NewNop()
	base := tc.providers.server.URL
	transport := upstream.Config{HTTPClient: tc.providers.server.Client(), Timeout: 2 * time.Second}

	weatherClient := openweather.NewClient(openweather.Config{
		APIKey:       tc.weatherKey,
		WeatherURL:   base + "/data/2.5/weather",
		GeocodingURL: base + "/geo/1.0/direct",
	}, transport, logger)

	placesClient := foursquare.NewClient(foursquare.Config{
		APIKey:  tc.placesKey,
		BaseURL: base + "/v3/places",
	}, transport, logger)

	resultCache := services.NewResultCache(cache.NewMemoryCache(time.Hour, time.Minute, logger), time.Minute, nil, logger)
	geocoding := services.NewGeocodingService(weatherClient, resultCache, time.Hour, logger)

	router := mux.NewRouter()
	rest.RegisterRoutes(
		router.PathPrefix("/api/v1").Subrouter(),
		rest.NewWeatherHandler(services.NewWeatherService(weatherClient, geocoding, resultCache, time.Hour, logger), geocoding, logger),
		rest.NewPlacesHandler(services.NewPlacesService(placesClient, resultCache, time.Hour, logger), logger),
		rest.NewFavoritesHandler(
			services.NewFavoriteCityService(tc.favorites, logger),
			services.NewFavoritePlaceService(tc.favorites, logger),
			logger,
		),
	)

	tc.server = httptest.NewServer(router)

	return tc.server
}

func (tc *testContext) do(method, path string, payload interface{}) error {
	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, tc.handler().URL+path, body)
	if err != nil {
		return err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tc.userID != "" {
		req.Header.Set(middleware.UserIDHeader, tc.userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)

	return err
}

func (tc *testContext) object() (map[string]interface{}, error) {
	var out map[string]interface{}

	if err := json.Unmarshal(tc.body, &out); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.body)
	}

	return out, nil
}

func (tc *testContext) iAmUser(id int) error {
	tc.userID = strconv.Itoa(id)
	return nil
}

func (tc *testContext) iRequest(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *testContext) iDelete(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *testContext) openWeatherKnowsCity(city string, lat, lon float64) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	tc.providers.cities[strings.ToLower(city)] = [2]float64{lat, lon}
	tc.providers.weatherCity = city

	return nil
}

func (tc *testContext) openWeatherReports(temperature float64, description string) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	tc.providers.temperature = temperature
	tc.providers.description = description

	return nil
}

func (tc *testContext) openWeatherRespondsWith(status int) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	tc.providers.weatherStatus = status

	return nil
}

func (tc *testContext) openWeatherKeyMissing() error {
	tc.weatherKey = ""
	return nil
}

func (tc *testContext) openWeatherShouldHaveReceived(expected int, endpoint string) error {
	if got := tc.providers.count(endpoint); got != expected {
		return fmt.Errorf("expected %d %s requests, got %d", expected, endpoint, got)
	}
	return nil
}

func (tc *testContext) foursquareListsPlace(id, name, category string) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	tc.providers.places = append(tc.providers.places, foursquare.APIPlace{
		FsqID: id,
		Name:  name,
		Categories: []foursquare.APICategory{{
			Name: category,
			Icon: &foursquare.ImageRef{Prefix: "https://ss3.4sqi.net/img/categories_v2/food/", Suffix: ".png"},
		}},
		Location: map[string]interface{}{"formatted_address": "Av. 24 de Julho 49, Lisboa"},
		Photos:   []foursquare.ImageRef{{Prefix: "https://fastly.4sqi.net/img/general/", Suffix: "/photo.jpg"}},
	})

	return nil
}

func (tc *testContext) foursquareRespondsWith(status int) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	tc.providers.placesStatus = status

	return nil
}

func (tc *testContext) foursquareKeyMissing() error {
	tc.placesKey = ""
	return nil
}

func (tc *testContext) foursquareAskedFor(limit int) error {
	tc.providers.mu.Lock()
	defer tc.providers.mu.Unlock()

	if tc.providers.lastLimit != strconv.Itoa(limit) {
		return fmt.Errorf("expected limit %d, got %q", limit, tc.providers.lastLimit)
	}
	return nil
}

func (tc *testContext) iSaveFavoriteCity(city string, lat, lon float64) error {
	return tc.do(http.MethodPost, "/api/v1/favorite-cities", map[string]interface{}{
		"city_name": city,
		"latitude":  lat,
		"longitude": lon,
	})
}

func (tc *testContext) iSaveFavoritePlace(id, name string) error {
	return tc.do(http.MethodPost, "/api/v1/favorite-places", map[string]interface{}{
		"fsq_id": id,
		"name":   name,
	})
}

func (tc *testContext) theResponseStatusShouldBe(expected int) error {
	if tc.status != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, tc.status, tc.body)
	}
	return nil
}

func (tc *testContext) theResponseFieldShouldBeString(field, expected string) error {
	body, err := tc.object()
	if err != nil {
		return err
	}

	if got, _ := body[field].(string); got != expected {
		return fmt.Errorf("expected %s to be %q, got %v", field, expected, body[field])
	}
	return nil
}

func (tc *testContext) theResponseFieldShouldBeNumber(field string, expected float64) error {
	body, err := tc.object()
	if err != nil {
		return err
	}

	if got, ok := body[field].(float64); !ok || got != expected {
		return fmt.Errorf("expected %s to be %v, got %v", field, expected, body[field])
	}
	return nil
}

func (tc *testContext) theErrorCodeShouldBe(expected string) error {
	return tc.theResponseFieldShouldBeString("error", expected)
}

func (tc *testContext) theErrorMessageShouldContain(substring string) error {
	body, err := tc.object()
	if err != nil {
		return err
	}

	message, ok := body["message"].(string)
	if !ok {
		return fmt.Errorf("error message not found in response")
	}
	if !strings.Contains(strings.ToLower(message), strings.ToLower(substring)) {
		return fmt.Errorf("error message '%s' does not contain '%s'", message, substring)
	}
	return nil
}

func (tc *testContext) places() ([]interface{}, error) {
	body, err := tc.object()
	if err != nil {
		return nil, err
	}

	places, ok := body["places"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("response does not contain places: %s", tc.body)
	}

	return places, nil
}

func (tc *testContext) theResponseShouldListPlaces(expected int) error {
	places, err := tc.places()
	if err != nil {
		return err
	}

	if len(places) != expected {
		return fmt.Errorf("expected %d places, got %d", expected, len(places))
	}
	return nil
}

func (tc *testContext) theResponseShouldListFavorites(expected int) error {
	var favorites []interface{}

	if err := json.Unmarshal(tc.body, &favorites); err != nil {
		return fmt.Errorf("response is not a JSON array: %s", tc.body)
	}

	if len(favorites) != expected {
		return fmt.Errorf("expected %d favorites, got %d", expected, len(favorites))
	}
	return nil
}

func (tc *testContext) firstPlace() (map[string]interface{}, error) {
	places, err := tc.places()
	if err != nil {
		return nil, err
	}

	if len(places) == 0 {
		return nil, fmt.Errorf("response lists no places")
	}

	place, ok := places[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected place entry: %v", places[0])
	}

	return place, nil
}

func (tc *testContext) theFirstPlaceShouldBeNamed(expected string) error {
	place, err := tc.firstPlace()
	if err != nil {
		return err
	}

	if place["name"] != expected {
		return fmt.Errorf("expected first place %q, got %v", expected, place["name"])
	}
	return nil
}

func (tc *testContext) theFirstPlacePhotoShouldEndWith(suffix string) error {
	place, err := tc.firstPlace()
	if err != nil {
		return err
	}

	return photoEndsWith(place, suffix)
}

func (tc *testContext) theResponsePhotoShouldEndWith(suffix string) error {
	body, err := tc.object()
	if err != nil {
		return err
	}

	return photoEndsWith(body, suffix)
}

func photoEndsWith(place map[string]interface{}, suffix string) error {
	photos, _ := place["photos"].([]interface{})

	if len(photos) == 0 {
		return fmt.Errorf("place has no photos")
	}

	if photo, _ := photos[0].(string); !strings.HasSuffix(photo, suffix) {
		return fmt.Errorf("photo %v does not end with %q", photos[0], suffix)
	}
	return nil
}
