package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/pkg/database"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// FetchGrouped returns the user's saved entries grouped into per-category
// folders. Folders follow category sort order; entries within a folder are
// newest first. Categories with no saved entries produce no folder.
func (r *WishlistRepository) FetchGrouped(ctx context.Context, userID string) ([]domain.WishlistFolder, error) {
	query := `
		SELECT c.slug, c.name,
		       w.id, w.notes, w.created_at,
		       e.id, e.title, e.description, e.price, e.currency, e.image_url,
		       e.rating, e.review_count, e.location
		FROM wishlist_items w
		JOIN experiences e ON e.id = w.experience_id
		JOIN categories c ON c.slug = e.category_slug
		WHERE w.user_id = $1
		ORDER BY c.sort_order, w.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	defer rows.Close()

	folders := []domain.WishlistFolder{}
	for rows.Next() {
		var (
			categorySlug string
			categoryName string
			entry        domain.WishlistEntry
		)

		if err := rows.Scan(
			&categorySlug,
			&categoryName,
			&entry.WishlistItemID,
			&entry.Notes,
			&entry.AddedAt,
			&entry.ExperienceID,
			&entry.Title,
			&entry.Description,
			&entry.Price,
			&entry.Currency,
			&entry.ImageURL,
			&entry.Rating,
			&entry.ReviewCount,
			&entry.Location,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}

		// Rows arrive sorted by category, so a slug change starts a new folder.
		if len(folders) == 0 || folders[len(folders)-1].CategorySlug != categorySlug {
			folders = append(folders, domain.WishlistFolder{
				CategorySlug: categorySlug,
				CategoryName: categoryName,
				Items:        []domain.WishlistEntry{},
			})
		}

		last := &folders[len(folders)-1]
		last.Items = append(last.Items, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return folders, nil
}

// Insert saves an experience into the user's wishlist. A duplicate save
// returns an already-exists error so callers can decide how to treat it.
func (r *WishlistRepository) Insert(ctx context.Context, userID, experienceID, notes string) error {
	query := `
		INSERT INTO wishlist_items (id, user_id, experience_id, notes)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, uuid.New().String(), userID, experienceID, notes)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("wishlist item", "experience_id", experienceID)
		}
		return fmt.Errorf("add to wishlist: %w", err)
	}

	return nil
}

// Delete removes an experience from the user's wishlist.
func (r *WishlistRepository) Delete(ctx context.Context, userID, experienceID string) error {
	query := `DELETE FROM wishlist_items WHERE user_id = $1 AND experience_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, experienceID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", experienceID)
	}

	return nil
}
