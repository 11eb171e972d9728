package models

import "time"

// Category is a lookup row (house, apartment, warehouse, ...).
type Category struct {
	ID   int64
	Name string
}

// PriceRange is a lookup row for the price bracket a listing advertises.
type PriceRange struct {
	ID   int64
	Name string
}

// Property is a real-estate listing owned by a user. ImageKey refers to an
// object in the S3-compatible image bucket; it is empty until the owner
// completes the image step, and a listing cannot be published without it.
type Property struct {
	ID          string
	Title       string
	Description string
	CategoryID  int64
	PriceID     int64
	Rooms       int
	Parking     int
	Bathrooms   int
	Street      string
	Lat         float64
	Lng         float64
	ImageKey    string
	Published   bool
	UserID      string
	CreatedAt   time.Time
}

// Listing is the public projection of a published property, with the
// category and price names joined in. It is what the map API serves and
// what the Redis cache stores.
type Listing struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ImageKey   string  `json:"image"`
	Category   string  `json:"category"`
	Price      string  `json:"price"`
	CategoryID int64   `json:"categoryId"`
	PriceID    int64   `json:"priceId"`
}
