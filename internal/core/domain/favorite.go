package domain

import "time"

// FavoriteCity is a city saved by a user, unique per (UserID, CityName).
type FavoriteCity struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CityName  string    `json:"city_name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FavoritePlace is a place saved by a user, unique per (UserID, FsqID).
type FavoritePlace struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	FsqID        string    `json:"fsq_id"`
	Name         string    `json:"name"`
	Address      *string   `json:"address"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	PhotoURL     *string   `json:"photo_url"`
	Category     *string   `json:"category"`
	CategoryIcon *string   `json:"category_icon"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stored is the outcome of a get-or-create: the row plus whether this call created it.
type Stored[T any] struct {
	Record  T
	Created bool
}
