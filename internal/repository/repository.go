package repository

import (
	"context"
	"time"

	"github.com/wayralabs/qosqo/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByOAuth retrieves a user by identity provider name and provider subject.
	GetByOAuth(ctx context.Context, provider, subject string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	// Upsert inserts the profile or overwrites the existing one for the user.
	Upsert(ctx context.Context, profile *domain.Profile) error

	// GetByUserID retrieves a profile by its owning user's identifier.
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}

// CategoryRepository defines the interface for category lookups.
type CategoryRepository interface {
	// List returns all categories ordered by sort order.
	List(ctx context.Context) ([]domain.Category, error)

	// GetBySlug retrieves a category by its slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// ExperienceRepository defines the interface for experience persistence operations.
type ExperienceRepository interface {
	// Create inserts a new experience into the store.
	Create(ctx context.Context, exp *domain.Experience) error

	// GetByID retrieves an experience by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Experience, error)

	// List returns active experiences matching the filter, ordered by rating
	// descending, along with the total match count.
	List(ctx context.Context, filter domain.ExperienceFilter) ([]domain.Experience, int, error)

	// ListFeatured returns up to limit active featured experiences.
	ListFeatured(ctx context.Context, limit int) ([]domain.Experience, error)

	// Update modifies an existing experience in the store.
	Update(ctx context.Context, exp *domain.Experience) error

	// Delete removes an experience from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SetFeatured flips the featured flag on an experience.
	SetFeatured(ctx context.Context, id string, featured bool) error

	// SetActive flips the active flag on an experience.
	SetActive(ctx context.Context, id string, active bool) error
}

// WishlistRepository defines the interface for wishlist persistence operations.
type WishlistRepository interface {
	// FetchGrouped returns the user's saved entries grouped into per-category
	// folders, ordered by category sort order then newest first within a folder.
	FetchGrouped(ctx context.Context, userID string) ([]domain.WishlistFolder, error)

	// Insert saves an experience into the user's wishlist. A duplicate save
	// returns an already-exists error.
	Insert(ctx context.Context, userID, experienceID, notes string) error

	// Delete removes an experience from the user's wishlist.
	Delete(ctx context.Context, userID, experienceID string) error
}
