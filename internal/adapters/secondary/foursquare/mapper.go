package foursquare

import (
	"github.com/google/uuid"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

const categoryIconSize = "bg_64"

// ImageRef is a Foursquare image split into URL prefix and suffix.
type ImageRef struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

func (r ImageRef) url(size string) (string, bool) {
	if r.Prefix == "" || r.Suffix == "" {
		return "", false
	}

	return r.Prefix + size + r.Suffix, true
}

// APICategory is one entry of a place's categories.
type APICategory struct {
	Name string    `json:"name"`
	Icon *ImageRef `json:"icon"`
}

// APIPlace is a place as returned by the search and details endpoints.
type APIPlace struct {
	FsqID      string         `json:"fsq_id"`
	Name       string         `json:"name"`
	Categories []APICategory  `json:"categories"`
	Location   map[string]any `json:"location"`
	Photos     []ImageRef     `json:"photos"`
}

func (p APIPlace) empty() bool {
	return p.FsqID == "" && p.Name == "" && len(p.Categories) == 0 && len(p.Location) == 0 && len(p.Photos) == 0
}

// MapPlace converts a provider place into the domain shape, filling defaults
// for missing fields. photoSize is inserted between each photo's prefix and suffix.
func MapPlace(p APIPlace, photoSize string) domain.Place {
	place := domain.Place{
		ID:       p.FsqID,
		FsqID:    p.FsqID,
		Name:     p.Name,
		Address:  address(p.Location),
		Category: domain.DefaultPlaceCategory,
		Photos:   make([]string, 0, len(p.Photos)),
		Location: p.Location,
	}

	if place.ID == "" {
		place.ID = "place_" + uuid.NewString()
	}

	if place.Name == "" {
		place.Name = domain.DefaultPlaceName
	}

	if place.Location == nil {
		place.Location = map[string]any{}
	}

	if len(p.Categories) > 0 {
		first := p.Categories[0]

		if first.Name != "" {
			place.Category = first.Name
		}

		if first.Icon != nil {
			if icon, ok := first.Icon.url(categoryIconSize); ok {
				place.CategoryIcon = &icon
			}
		}
	}

	for _, photo := range p.Photos {
		if u, ok := photo.url(photoSize); ok {
			place.Photos = append(place.Photos, u)
		}
	}

	return place
}

func address(location map[string]any) string {
	for _, key := range []string{"formatted_address", "address"} {
		if s, ok := location[key].(string); ok && s != "" {
			return s
		}
	}

	return domain.AddressNotAvailable
}
