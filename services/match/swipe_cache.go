package match

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
)

const DefaultSwipeCacheTTL = 30 * time.Second

// swipeState is one user's cached view of a room: what they rejected and
// which library the room draws from.
type swipeState struct {
	rejected  map[string]struct{}
	library   string
	fetchedAt time.Time
}

// SwipeSource loads the swipe state the cache memoizes.
type SwipeSource interface {
	RejectedItems(ctx context.Context, roomID, userID string) (map[string]struct{}, error)
	LibraryFilter(ctx context.Context, roomID string) (string, error)
}

// SwipeCache memoizes per-user rejection sets and room library filters so
// that rapid swiping does not hammer the store. Entries are keyed by
// room and user and live for a short freshness window; recording a swipe
// invalidates the entry immediately.
type SwipeCache struct {
	source SwipeSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]swipeState
}

func NewSwipeCache(source SwipeSource, ttl time.Duration) *SwipeCache {
	if ttl <= 0 {
		ttl = DefaultSwipeCacheTTL
	}
	return &SwipeCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]swipeState),
	}
}

func cacheKey(roomID, userID string) string {
	return roomID + "|" + userID
}

// GetOrRefresh returns the user's rejection set and the room's library
// filter, fetching both concurrently when the cached entry is missing or
// stale. Either fetch failing fails the whole refresh; nothing stale is
// served in that case.
func (c *SwipeCache) GetOrRefresh(ctx context.Context, roomID, userID string) (map[string]struct{}, string, error) {
	key := cacheKey(roomID, userID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.rejected, entry.library, nil
	}

	var (
		rejected map[string]struct{}
		library  string
	)
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		rejected, err = c.source.RejectedItems(ctx, roomID, userID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		library, err = c.source.LibraryFilter(ctx, roomID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, "", err
	}

	c.mu.Lock()
	c.entries[key] = swipeState{rejected: rejected, library: library, fetchedAt: time.Now()}
	c.mu.Unlock()

	return rejected, library, nil
}

// Invalidate drops the cached entry for one user in one room. Called on
// every recorded swipe so the next suggestion reflects it.
func (c *SwipeCache) Invalidate(roomID, userID string) {
	c.mu.Lock()
	delete(c.entries, cacheKey(roomID, userID))
	c.mu.Unlock()
}

// InvalidateRoom drops every user's entry for a room, for room deletion
// or expiry.
func (c *SwipeCache) InvalidateRoom(roomID string) {
	prefix := roomID + "|"
	c.mu.Lock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
