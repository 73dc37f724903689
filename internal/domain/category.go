package domain

// Category slug constants for the six fixed directory sections.
const (
	CategoryTravelAround    = "travel-around"
	CategoryStays           = "stays"
	CategoryTransportation  = "transportation"
	CategoryToursActivities = "tours-activities"
	CategoryEatDrink        = "eat-drink"
	CategoryFlights         = "flights"
)

// Category represents a directory section that experiences are grouped under.
type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// ValidCategorySlugs returns the set of known category slugs.
func ValidCategorySlugs() []string {
	return []string{
		CategoryTravelAround,
		CategoryStays,
		CategoryTransportation,
		CategoryToursActivities,
		CategoryEatDrink,
		CategoryFlights,
	}
}

// IsValidCategorySlug checks whether the given slug names a known category.
func IsValidCategorySlug(slug string) bool {
	for _, s := range ValidCategorySlugs() {
		if s == slug {
			return true
		}
	}
	return false
}
