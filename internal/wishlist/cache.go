// Package wishlist keeps an in-process copy of each signed-in user's saved
// experiences so membership checks never touch storage. The database stays
// authoritative: every mutation is followed by a wholesale refetch.
package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/internal/event"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
)

// Store is the persistent wishlist the cache sits in front of.
type Store interface {
	// FetchGrouped returns the user's saved entries grouped into per-category folders.
	FetchGrouped(ctx context.Context, userID string) ([]domain.WishlistFolder, error)

	// Insert saves an experience. A duplicate save returns an already-exists error.
	Insert(ctx context.Context, userID, experienceID, notes string) error

	// Delete removes an experience. A missing row returns a not-found error.
	Delete(ctx context.Context, userID, experienceID string) error
}

// Index is the shared membership mirror kept in Redis so other instances can
// answer membership checks. All Index calls are best effort.
type Index interface {
	Replace(ctx context.Context, userID string, experienceIDs []string) error
	Add(ctx context.Context, userID, experienceID string) error
	Remove(ctx context.Context, userID, experienceID string) error
	Clear(ctx context.Context, userID string) error
}

// state is one user's cached wishlist.
type state struct {
	folders []domain.WishlistFolder
	members map[string]struct{}
}

// Cache holds the per-user wishlist state.
type Cache struct {
	store    Store
	index    Index
	producer *event.Producer
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]*state
	// gens guards against a fetch that was in flight when Clear ran: the
	// fetch result is discarded if the user's generation moved on.
	gens map[string]uint64
}

// NewCache creates a wishlist cache. index may be nil when no Redis mirror is
// configured.
func NewCache(store Store, index Index, producer *event.Producer, logger *slog.Logger) *Cache {
	return &Cache{
		store:    store,
		index:    index,
		producer: producer,
		logger:   logger,
		entries:  make(map[string]*state),
		gens:     make(map[string]uint64),
	}
}

// Fetch loads the user's wishlist from storage and replaces the cached copy
// wholesale. If the user's state was cleared while the fetch was in flight,
// the result is discarded and the (empty) cleared state is returned instead.
func (c *Cache) Fetch(ctx context.Context, userID string) ([]domain.WishlistFolder, error) {
	c.mu.RLock()
	gen := c.gens[userID]
	c.mu.RUnlock()

	folders, err := c.store.FetchGrouped(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gens[userID] != gen {
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "discarding stale wishlist fetch",
			slog.String("user_id", userID),
		)
		return []domain.WishlistFolder{}, nil
	}
	c.entries[userID] = buildState(folders)
	c.mu.Unlock()

	c.mirrorReplace(ctx, userID, folders)

	return folders, nil
}

// Add saves an experience to the user's wishlist and returns the refreshed
// wishlist. The cached membership set is updated optimistically before the
// write; a duplicate save is treated as success. Either way the wishlist is
// refetched so the cache converges on what storage holds.
func (c *Cache) Add(ctx context.Context, userID, experienceID, notes string) ([]domain.WishlistFolder, error) {
	if experienceID == "" {
		return nil, apperrors.InvalidInput("experience id is required")
	}

	added := c.optimisticAdd(userID, experienceID)

	err := c.store.Insert(ctx, userID, experienceID, notes)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyExists) {
		if added {
			c.optimisticRemove(userID, experienceID)
		}
		return nil, err
	}
	if err != nil {
		// The row already exists, so the save is a success from the
		// user's point of view.
		c.logger.DebugContext(ctx, "wishlist item already saved",
			slog.String("user_id", userID),
			slog.String("experience_id", experienceID),
		)
	}

	if c.index != nil {
		if err := c.index.Add(ctx, userID, experienceID); err != nil {
			c.logger.WarnContext(ctx, "wishlist index mirror add failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := c.producer.PublishWishlistItemAdded(ctx, userID, experienceID); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish wishlist.item_added event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return c.Fetch(ctx, userID)
}

// Remove deletes an experience from the user's wishlist and returns the
// refreshed wishlist. An item that is already gone counts as success, since
// the membership set was stale rather than wrong.
func (c *Cache) Remove(ctx context.Context, userID, experienceID string) ([]domain.WishlistFolder, error) {
	if experienceID == "" {
		return nil, apperrors.InvalidInput("experience id is required")
	}

	removed := c.optimisticRemove(userID, experienceID)

	err := c.store.Delete(ctx, userID, experienceID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		if removed {
			c.optimisticAdd(userID, experienceID)
		}
		return nil, err
	}

	if c.index != nil {
		if err := c.index.Remove(ctx, userID, experienceID); err != nil {
			c.logger.WarnContext(ctx, "wishlist index mirror remove failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := c.producer.PublishWishlistItemRemoved(ctx, userID, experienceID); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish wishlist.item_removed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return c.Fetch(ctx, userID)
}

// Contains reports whether the experience is in the user's cached wishlist.
// It is a pure in-memory lookup and never touches storage; before the first
// Fetch it answers false.
func (c *Cache) Contains(userID, experienceID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return false
	}
	_, ok = entry.members[experienceID]
	return ok
}

// Clear drops the user's cached wishlist, typically at sign-out. The
// generation counter moves forward so an in-flight Fetch cannot resurrect
// the cleared state, and the Redis mirror is cleared best effort.
func (c *Cache) Clear(ctx context.Context, userID string) {
	c.mu.Lock()
	c.gens[userID]++
	delete(c.entries, userID)
	c.mu.Unlock()

	if c.index != nil {
		if err := c.index.Clear(ctx, userID); err != nil {
			c.logger.WarnContext(ctx, "wishlist index mirror clear failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Cache) optimisticAdd(userID, experienceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		// No cached state yet (warm fetch failed or never ran). Start an
		// empty one so the membership check holds right after the add.
		entry = &state{members: make(map[string]struct{})}
		c.entries[userID] = entry
	}
	if _, exists := entry.members[experienceID]; exists {
		return false
	}
	entry.members[experienceID] = struct{}{}
	return true
}

func (c *Cache) optimisticRemove(userID, experienceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return false
	}
	if _, exists := entry.members[experienceID]; !exists {
		return false
	}
	delete(entry.members, experienceID)
	return true
}

func (c *Cache) mirrorReplace(ctx context.Context, userID string, folders []domain.WishlistFolder) {
	if c.index == nil {
		return
	}
	if err := c.index.Replace(ctx, userID, memberIDs(folders)); err != nil {
		c.logger.WarnContext(ctx, "wishlist index mirror replace failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func buildState(folders []domain.WishlistFolder) *state {
	members := make(map[string]struct{})
	for _, f := range folders {
		for _, item := range f.Items {
			members[item.ExperienceID] = struct{}{}
		}
	}
	return &state{folders: folders, members: members}
}

func memberIDs(folders []domain.WishlistFolder) []string {
	var ids []string
	for _, f := range folders {
		for _, item := range f.Items {
			ids = append(ids, item.ExperienceID)
		}
	}
	return ids
}
