// Package redis mirrors each user's wishlist membership index into Redis so
// other instances can answer membership checks without hitting PostgreSQL.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wishlist:index:"

// IndexRepository maintains a per-user set of saved experience IDs in Redis.
type IndexRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIndexRepository creates a new Redis-backed membership index repository.
func NewIndexRepository(client *redis.Client, ttl time.Duration) *IndexRepository {
	return &IndexRepository{
		client: client,
		ttl:    ttl,
	}
}

// Replace overwrites the user's membership set with the given experience IDs.
// The swap is atomic from the point of view of readers.
func (r *IndexRepository) Replace(ctx context.Context, userID string, experienceIDs []string) error {
	key := keyPrefix + userID

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(experienceIDs) > 0 {
		members := make([]any, len(experienceIDs))
		for i, id := range experienceIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis replace wishlist index: %w", err)
	}

	return nil
}

// Add records a single experience in the user's membership set.
func (r *IndexRepository) Add(ctx context.Context, userID, experienceID string) error {
	key := keyPrefix + userID

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, experienceID)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis add to wishlist index: %w", err)
	}

	return nil
}

// Remove drops a single experience from the user's membership set.
func (r *IndexRepository) Remove(ctx context.Context, userID, experienceID string) error {
	key := keyPrefix + userID

	if err := r.client.SRem(ctx, key, experienceID).Err(); err != nil {
		return fmt.Errorf("redis remove from wishlist index: %w", err)
	}

	return nil
}

// Contains reports whether the experience is in the user's membership set.
func (r *IndexRepository) Contains(ctx context.Context, userID, experienceID string) (bool, error) {
	key := keyPrefix + userID

	ok, err := r.client.SIsMember(ctx, key, experienceID).Result()
	if err != nil {
		return false, fmt.Errorf("redis check wishlist index: %w", err)
	}

	return ok, nil
}

// Clear removes the user's membership set entirely.
func (r *IndexRepository) Clear(ctx context.Context, userID string) error {
	key := keyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis clear wishlist index: %w", err)
	}

	return nil
}
