package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/pkg/database"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Upsert inserts the profile or overwrites the existing one for the user.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO profiles (user_id, full_name, avatar_url, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url,
		    email = EXCLUDED.email,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, p.UserID, p.FullName, p.AvatarURL, p.Email, now)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves a profile by its owning user's identifier.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, full_name, avatar_url, email, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.AvatarURL,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return &p, nil
}
