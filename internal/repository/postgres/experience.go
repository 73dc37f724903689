package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/pkg/database"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
)

const experienceColumns = `id, slug, title, description, category_slug, price, currency, image_url,
	rating, review_count, location, duration, contact_phone, contact_whatsapp, contact_email,
	website_url, booking_url, google_place_id, is_featured, is_active, created_at, updated_at`

// ExperienceRepository implements repository.ExperienceRepository using PostgreSQL.
type ExperienceRepository struct {
	pool database.DBTX
}

// NewExperienceRepository creates a new PostgreSQL-backed experience repository.
func NewExperienceRepository(pool database.DBTX) *ExperienceRepository {
	return &ExperienceRepository{pool: pool}
}

// Create inserts a new experience into the database.
func (r *ExperienceRepository) Create(ctx context.Context, e *domain.Experience) error {
	query := `
		INSERT INTO experiences (id, slug, title, description, category_slug, price, currency, image_url,
			rating, review_count, location, duration, contact_phone, contact_whatsapp, contact_email,
			website_url, booking_url, google_place_id, is_featured, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Slug,
		e.Title,
		e.Description,
		e.CategorySlug,
		e.Price,
		e.Currency,
		e.ImageURL,
		e.Rating,
		e.ReviewCount,
		e.Location,
		e.Duration,
		e.ContactPhone,
		e.ContactWhatsapp,
		e.ContactEmail,
		e.WebsiteURL,
		e.BookingURL,
		e.GooglePlaceID,
		e.IsFeatured,
		e.IsActive,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("experience", "slug", e.Slug)
		}
		return fmt.Errorf("insert experience: %w", err)
	}

	return nil
}

// GetByID retrieves an experience by its ID.
func (r *ExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	query := fmt.Sprintf(`SELECT %s FROM experiences WHERE id = $1`, experienceColumns)

	var e domain.Experience
	err := r.pool.QueryRow(ctx, query, id).Scan(experienceScanDest(&e)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("experience", id)
		}
		return nil, fmt.Errorf("query experience: %w", err)
	}

	return &e, nil
}

// List returns active experiences matching the filter, ordered by rating
// descending, along with the total match count.
func (r *ExperienceRepository) List(ctx context.Context, filter domain.ExperienceFilter) ([]domain.Experience, int, error) {
	var (
		conditions = []string{"is_active"}
		args       []any
		argIndex   = 1
	)

	if filter.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("category_slug = $%d", argIndex))
		args = append(args, filter.CategorySlug)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.FeaturedOnly {
		conditions = append(conditions, "is_featured")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM experiences
		WHERE %s
		ORDER BY rating DESC, review_count DESC
		LIMIT $%d OFFSET $%d`,
		experienceColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list experiences: %w", err)
	}
	defer rows.Close()

	var (
		experiences []domain.Experience
		totalCount  int
	)

	for rows.Next() {
		var e domain.Experience
		dest := append(experienceScanDest(&e), &totalCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan experience: %w", err)
		}
		experiences = append(experiences, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate experience rows: %w", err)
	}

	if experiences == nil {
		experiences = []domain.Experience{}
	}

	return experiences, totalCount, nil
}

// ListFeatured returns up to limit active featured experiences.
func (r *ExperienceRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Experience, error) {
	if limit <= 0 {
		limit = domain.FeaturedLimit
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM experiences
		WHERE is_active AND is_featured
		ORDER BY rating DESC, review_count DESC
		LIMIT $1`, experienceColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured experiences: %w", err)
	}
	defer rows.Close()

	var experiences []domain.Experience
	for rows.Next() {
		var e domain.Experience
		if err := rows.Scan(experienceScanDest(&e)...); err != nil {
			return nil, fmt.Errorf("scan featured experience: %w", err)
		}
		experiences = append(experiences, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate featured experience rows: %w", err)
	}

	if experiences == nil {
		experiences = []domain.Experience{}
	}

	return experiences, nil
}

// Update modifies an existing experience in the database.
func (r *ExperienceRepository) Update(ctx context.Context, e *domain.Experience) error {
	e.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE experiences
		SET slug = $1, title = $2, description = $3, category_slug = $4, price = $5, currency = $6,
		    image_url = $7, rating = $8, review_count = $9, location = $10, duration = $11,
		    contact_phone = $12, contact_whatsapp = $13, contact_email = $14, website_url = $15,
		    booking_url = $16, google_place_id = $17, is_featured = $18, is_active = $19, updated_at = $20
		WHERE id = $21`

	ct, err := r.pool.Exec(ctx, query,
		e.Slug,
		e.Title,
		e.Description,
		e.CategorySlug,
		e.Price,
		e.Currency,
		e.ImageURL,
		e.Rating,
		e.ReviewCount,
		e.Location,
		e.Duration,
		e.ContactPhone,
		e.ContactWhatsapp,
		e.ContactEmail,
		e.WebsiteURL,
		e.BookingURL,
		e.GooglePlaceID,
		e.IsFeatured,
		e.IsActive,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("experience", "slug", e.Slug)
		}
		return fmt.Errorf("update experience: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("experience", e.ID)
	}

	return nil
}

// Delete removes an experience from the database by its ID.
func (r *ExperienceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM experiences WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("experience", id)
	}

	return nil
}

// SetFeatured flips the featured flag on an experience.
func (r *ExperienceRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.setFlag(ctx, id, "is_featured", featured)
}

// SetActive flips the active flag on an experience.
func (r *ExperienceRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.setFlag(ctx, id, "is_active", active)
}

func (r *ExperienceRepository) setFlag(ctx context.Context, id, column string, value bool) error {
	query := fmt.Sprintf(`UPDATE experiences SET %s = $1, updated_at = $2 WHERE id = $3`, column)

	ct, err := r.pool.Exec(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set experience %s: %w", column, err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("experience", id)
	}

	return nil
}

// experienceScanDest returns scan destinations matching experienceColumns order.
func experienceScanDest(e *domain.Experience) []any {
	return []any{
		&e.ID,
		&e.Slug,
		&e.Title,
		&e.Description,
		&e.CategorySlug,
		&e.Price,
		&e.Currency,
		&e.ImageURL,
		&e.Rating,
		&e.ReviewCount,
		&e.Location,
		&e.Duration,
		&e.ContactPhone,
		&e.ContactWhatsapp,
		&e.ContactEmail,
		&e.WebsiteURL,
		&e.BookingURL,
		&e.GooglePlaceID,
		&e.IsFeatured,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
}
