package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sean-rowe/city-explorer-service/internal/middleware"
)

// RegisterRoutes mounts the API on api, normally the /api/v1 subrouter.
// Favorites routes require the X-User-ID header.
func RegisterRoutes(api *mux.Router, weather *WeatherHandler, places *PlacesHandler, favorites *FavoritesHandler) {
	api.HandleFunc("/weather", weather.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/geocode", weather.Geocode).Methods(http.MethodGet)

	api.HandleFunc("/places", places.Search).Methods(http.MethodGet)
	api.HandleFunc("/places/{placeId}", places.Details).Methods(http.MethodGet)

	user := api.NewRoute().Subrouter()
	user.Use(middleware.RequireUser)

	user.HandleFunc("/favorite-cities", favorites.ListCities).Methods(http.MethodGet)
	user.HandleFunc("/favorite-cities", favorites.StoreCity).Methods(http.MethodPost)
	user.HandleFunc("/favorite-cities/{cityName}", favorites.DeleteCity).Methods(http.MethodDelete)

	user.HandleFunc("/favorite-places", favorites.ListPlaces).Methods(http.MethodGet)
	user.HandleFunc("/favorite-places", favorites.StorePlace).Methods(http.MethodPost)
	user.HandleFunc("/favorite-places/{fsqId}", favorites.DeletePlace).Methods(http.MethodDelete)
}
