package domain

import (
	"time"
)

// Experience represents a bookable tourism experience in the Cuzco region,
// such as a guided tour, a restaurant, or a place to stay.
type Experience struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategorySlug    string    `json:"category_slug"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	ImageURL        string    `json:"image_url,omitempty"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	Location        string    `json:"location,omitempty"`
	Duration        string    `json:"duration,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	ContactWhatsapp string    `json:"contact_whatsapp,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	WebsiteURL      string    `json:"website_url,omitempty"`
	BookingURL      string    `json:"booking_url,omitempty"`
	GooglePlaceID   string    `json:"google_place_id,omitempty"`
	IsFeatured      bool      `json:"is_featured"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExperienceFilter narrows down experience listings.
type ExperienceFilter struct {
	CategorySlug string
	Search       string
	FeaturedOnly bool
	Page         int
	PerPage      int
}

// FeaturedLimit caps the number of experiences shown on the landing page.
const FeaturedLimit = 6
