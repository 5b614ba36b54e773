package rest

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
	"github.com/sean-rowe/city-explorer-service/internal/middleware"
)

// FavoritesHandler manages the caller's favorite cities and places.
// Every route expects middleware.RequireUser in front of it.
type FavoritesHandler struct {
	responder
	cities   ports.FavoriteCityService
	places   ports.FavoritePlaceService
	validate *validator.Validate
}

func NewFavoritesHandler(cities ports.FavoriteCityService, places ports.FavoritePlaceService, logger *zap.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		responder: responder{logger: logger},
		cities:    cities,
		places:    places,
		validate:  newValidator(),
	}
}

// StoreFavoriteCityRequest is the body of POST /favorite-cities.
type StoreFavoriteCityRequest struct {
	CityName  string   `json:"city_name" validate:"required,max=255"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

// StoreFavoritePlaceRequest is the body of POST /favorite-places.
type StoreFavoritePlaceRequest struct {
	FsqID        string   `json:"fsq_id" validate:"required,max=255"`
	Name         string   `json:"name" validate:"required,max=255"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PhotoURL     *string  `json:"photo_url" validate:"omitempty,url,max=1024"`
	Category     *string  `json:"category" validate:"omitempty,max=255"`
	CategoryIcon *string  `json:"category_icon" validate:"omitempty,url,max=1024"`
}

var errMissingUser = errors.New("missing user in request context")

func (h *FavoritesHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserID(r.Context())

	if !ok {
		h.logger.Error("favorites route served without user", zap.Error(errMissingUser), zap.String("path", r.URL.Path))
		h.respondWithError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication is required.")
	}

	return id, ok
}

// decodeAndValidate writes the error response itself and reports whether dst is usable.
func (h *FavoritesHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		h.logger.Debug("rejected request body", zap.Error(err))
		h.respondWithError(w, http.StatusBadRequest, domain.ErrBadRequest.String(), "Request body must be a valid JSON object.")

		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.respondWithValidationError(w, err)
		return false
	}

	return true
}

// storedStatus is 201 for a new favorite and 200 when it already existed.
func storedStatus(created bool) int {
	if created {
		return http.StatusCreated
	}

	return http.StatusOK
}

// ListCities handles GET /favorite-cities, ordered by city name.
func (h *FavoritesHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	result := h.cities.GetFavoriteCities(r.Context(), userID)

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result.Value())
}

// StoreCity handles POST /favorite-cities.
func (h *FavoritesHandler) StoreCity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	var req StoreFavoriteCityRequest

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result := h.cities.StoreFavoriteCity(r.Context(), userID, ports.NewFavoriteCity{
		CityName:  req.CityName,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	stored := result.Value()
	h.respondWithJSON(w, storedStatus(stored.Created), stored.Record)
}

// DeleteCity handles DELETE /favorite-cities/{cityName}.
func (h *FavoritesHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	result := h.cities.DeleteFavoriteCity(r.Context(), userID, mux.Vars(r)["cityName"])

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPlaces handles GET /favorite-places, most recent first.
func (h *FavoritesHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	result := h.places.GetFavoritePlaces(r.Context(), userID)

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result.Value())
}

// StorePlace handles POST /favorite-places.
func (h *FavoritesHandler) StorePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	var req StoreFavoritePlaceRequest

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result := h.places.StoreFavoritePlace(r.Context(), userID, ports.NewFavoritePlace{
		FsqID:        req.FsqID,
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		PhotoURL:     req.PhotoURL,
		Category:     req.Category,
		CategoryIcon: req.CategoryIcon,
	})

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	stored := result.Value()
	h.respondWithJSON(w, storedStatus(stored.Created), stored.Record)
}

// DeletePlace handles DELETE /favorite-places/{fsqId}.
func (h *FavoritesHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)

	if !ok {
		return
	}

	result := h.places.DeleteFavoritePlace(r.Context(), userID, mux.Vars(r)["fsqId"])

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), "", favoritesStatuses)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
