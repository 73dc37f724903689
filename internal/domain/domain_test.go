package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Role Validation Tests
// ============================================================================

func TestValidRoles_ContainsAll(t *testing.T) {
	roles := ValidRoles()
	expected := []string{RoleTraveler, RoleAdmin}
	assert.ElementsMatch(t, expected, roles)
}

func TestIsValidRole_ValidRoles(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r), "expected %q to be valid", r)
	}
}

func TestIsValidRole_Invalid(t *testing.T) {
	assert.False(t, IsValidRole("unknown"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("customer"))
}

// ============================================================================
// Category Slug Tests
// ============================================================================

func TestValidCategorySlugs_ContainsAll(t *testing.T) {
	slugs := ValidCategorySlugs()
	expected := []string{
		CategoryTravelAround,
		CategoryStays,
		CategoryTransportation,
		CategoryToursActivities,
		CategoryEatDrink,
		CategoryFlights,
	}
	assert.ElementsMatch(t, expected, slugs)
}

func TestIsValidCategorySlug(t *testing.T) {
	for _, s := range ValidCategorySlugs() {
		assert.True(t, IsValidCategorySlug(s), "expected %q to be valid", s)
	}
	assert.False(t, IsValidCategorySlug("shopping"))
	assert.False(t, IsValidCategorySlug(""))
	assert.False(t, IsValidCategorySlug("Tours-Activities"))
}

// ============================================================================
// Serialization Tests
// ============================================================================

func TestUser_SensitiveFieldsExcludedFromJSON(t *testing.T) {
	u := User{
		ID:           "user-1",
		Email:        "qori@example.com",
		PasswordHash: "secret",
		OAuthSubject: "google-sub-123",
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "google-sub-123")
	assert.Contains(t, string(data), "qori@example.com")
}

func TestWishlistFolder_EmptyItemsSerializeAsArray(t *testing.T) {
	f := WishlistFolder{
		CategorySlug: CategoryEatDrink,
		CategoryName: "Eat & Drink",
		Items:        []WishlistEntry{},
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
}
