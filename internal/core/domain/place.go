package domain

// Default values applied when the places provider omits data.
const (
	DefaultPlaceCategory = "Place"
	DefaultPlaceName     = "Unknown Place"
	AddressNotAvailable  = "Address not available"
)

// PlaceFields is the field list requested from the places provider.
const PlaceFields = "fsq_id,name,categories,location,photos"

// Photo size tokens inserted between a photo's prefix and suffix.
const (
	PhotoSizeList   = "300x300"
	PhotoSizeDetail = "original"
)

// Places search limits.
const (
	DefaultPlacesLimit = 6
	MaxPlacesLimit     = 50
)

// Place is a point of interest as returned by search and details.
// CategoryIcon is nil when the provider has no usable icon. Photos never
// contain empty entries.
type Place struct {
	ID           string         `json:"id"`
	FsqID        string         `json:"fsq_id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Category     string         `json:"category"`
	CategoryIcon *string        `json:"category_icon"`
	Photos       []string       `json:"photos"`
	Location     map[string]any `json:"location"`
}

// PlaceSummary is the list view of a place.
type PlaceSummary = Place

// PlaceDetail is the single-place view of a place.
type PlaceDetail = Place

// PlaceSearch describes a nearby search.
type PlaceSearch struct {
	Coordinates Coordinates
	Limit       int
	// Radius in meters; zero lets the provider decide.
	Radius int
}

// Normalize applies the default limit and caps it at MaxPlacesLimit.
func (q PlaceSearch) Normalize() PlaceSearch {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultPlacesLimit
	case q.Limit > MaxPlacesLimit:
		q.Limit = MaxPlacesLimit
	}

	if q.Radius < 0 {
		q.Radius = 0
	}

	return q
}
