package domain

import (
	"time"
)

// WishlistEntry is a saved wishlist row joined with the experience it points at,
// shaped for display.
type WishlistEntry struct {
	WishlistItemID string    `json:"wishlist_item_id"`
	ExperienceID   string    `json:"experience_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	ImageURL       string    `json:"image_url,omitempty"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
	Location       string    `json:"location,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

// WishlistFolder groups a user's saved entries under one category.
type WishlistFolder struct {
	CategorySlug string          `json:"category_slug"`
	CategoryName string          `json:"category_name"`
	Items        []WishlistEntry `json:"items"`
}
