// Package foursquare implements the places provider on top of the Foursquare
// Places API (v3).
package foursquare

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// DefaultBaseURL is the Places API root; search and details hang off it.
const DefaultBaseURL = "https://api.foursquare.com/v3/places"

// Config holds the API key and base URL.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client implements ports.PlacesProvider.
type Client struct {
	cfg    Config
	http   *upstream.Client
	logger *zap.Logger
}

var _ ports.PlacesProvider = (*Client)(nil)

type searchResponse struct {
	Results []APIPlace `json:"results"`
}

// NewClient creates a Foursquare client. The API key is sent verbatim in the
// Authorization header.
func NewClient(cfg Config, transport upstream.Config, logger *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	headers := make(map[string]string, len(transport.Headers)+1)

	for k, v := range transport.Headers {
		headers[k] = v
	}

	headers["Authorization"] = cfg.APIKey

	transport.Provider = domain.ProviderFoursquare
	transport.Headers = headers

	return &Client{
		cfg:    cfg,
		http:   upstream.NewClient(transport, logger),
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Search lists places near the query coordinates with list-sized photos.
func (c *Client) Search(ctx context.Context, query domain.PlaceSearch) domain.Result[[]domain.PlaceSummary] {
	params := url.Values{
		"ll":     {query.Coordinates.LatLon()},
		"limit":  {strconv.Itoa(query.Limit)},
		"fields": {domain.PlaceFields},
	}

	if query.Radius > 0 {
		params.Set("radius", strconv.Itoa(query.Radius))
	}

	raw := upstream.GetJSON[searchResponse](ctx, c.http, c.cfg.BaseURL+"/search", params)

	if raw.IsFailure() {
		return domain.ForwardFailure[[]domain.PlaceSummary](raw)
	}

	places := make([]domain.PlaceSummary, 0, len(raw.Value().Results))

	for _, p := range raw.Value().Results {
		places = append(places, MapPlace(p, domain.PhotoSizeList))
	}

	return domain.Success(places)
}

// Details fetches one place by its Foursquare ID with original-size photos.
// An empty body fails with API_ERROR.
func (c *Client) Details(ctx context.Context, placeID string) domain.Result[domain.PlaceDetail] {
	params := url.Values{"fields": {domain.PlaceFields}}

	raw := upstream.GetJSON[*APIPlace](ctx, c.http, c.cfg.BaseURL+"/"+url.PathEscape(placeID), params)

	if raw.IsFailure() {
		return domain.ForwardFailure[domain.PlaceDetail](raw)
	}

	if raw.Value() == nil || raw.Value().empty() {
		c.logger.Warn("place details response was empty", zap.String("place_id", placeID))

		return domain.Failure[domain.PlaceDetail](
			domain.ErrAPI,
			"Received invalid data format from Foursquare.",
			map[string]any{domain.ContextProvider: domain.ProviderFoursquare, "fsq_id": placeID},
		)
	}

	return domain.Success(MapPlace(*raw.Value(), domain.PhotoSizeDetail))
}
