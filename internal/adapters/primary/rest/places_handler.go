package rest

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// PlacesHandler serves nearby place search and place details.
type PlacesHandler struct {
	responder
	service  ports.PlacesService
	validate *validator.Validate
}

func NewPlacesHandler(service ports.PlacesService, logger *zap.Logger) *PlacesHandler {
	return &PlacesHandler{
		responder: responder{logger: logger},
		service:   service,
		validate:  newValidator(),
	}
}

type placesQuery struct {
	Latitude  string `json:"latitude" validate:"required,numeric"`
	Longitude string `json:"longitude" validate:"required,numeric"`
	Limit     string `json:"limit" validate:"omitempty,number"`
	Radius    string `json:"radius" validate:"omitempty,number"`
}

// placesLimit bounds a parsed limit the way the provider accepts it.
type placesLimit struct {
	Limit *int `json:"limit" validate:"omitempty,min=1,max=50"`
}

// PlacesResponse wraps a search result list.
type PlacesResponse struct {
	Places []domain.PlaceSummary `json:"places"`
}

// Search handles GET /places?latitude=&longitude=[&limit=][&radius=].
// The limit defaults to 6; values outside 1..50 are rejected with 422.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := placesQuery{
		Latitude:  params.Get("latitude"),
		Longitude: params.Get("longitude"),
		Limit:     params.Get("limit"),
		Radius:    params.Get("radius"),
	}

	if err := h.validate.Struct(query); err != nil {
		h.respondWithValidationError(w, err)
		return
	}

	var bounds placesLimit

	if query.Limit != "" {
		limit, err := strconv.Atoi(query.Limit)

		if err != nil {
			limit = -1
		}

		bounds.Limit = &limit
	}

	if err := h.validate.Struct(bounds); err != nil {
		h.respondWithValidationError(w, err)
		return
	}

	latitude, _ := strconv.ParseFloat(query.Latitude, 64)
	longitude, _ := strconv.ParseFloat(query.Longitude, 64)

	search := domain.PlaceSearch{
		Coordinates: domain.Coordinates{Latitude: latitude, Longitude: longitude},
	}

	if bounds.Limit != nil {
		search.Limit = *bounds.Limit
	}

	search.Radius, _ = strconv.Atoi(query.Radius)

	result := h.service.Search(r.Context(), search)

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), result.Provider(), placesStatuses)
		return
	}

	h.respondWithJSON(w, http.StatusOK, PlacesResponse{Places: result.Value()})
}

// Details handles GET /places/{placeId}.
func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	result := h.service.Details(r.Context(), mux.Vars(r)["placeId"])

	if result.IsFailure() {
		h.respondWithFailure(w, r, result.ErrorCode(), result.ErrorMessage(), result.Provider(), placesStatuses)
		return
	}

	h.respondWithJSON(w, http.StatusOK, result.Value())
}
