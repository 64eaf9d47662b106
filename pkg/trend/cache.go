package trend

import (
	"context"
	"sync"
	"time"

	"truetrend/pkg/source"
)

// DefaultCacheTTL is the window during which a platform snapshot is served
// without refetching.
const DefaultCacheTTL = 5 * time.Minute

// FetchFunc produces one platform's current hot list.
type FetchFunc func(ctx context.Context) ([]source.HeatItem, error)

type cacheEntry struct {
	items      []source.HeatItem
	capturedAt time.Time
}

// Cache is a per-platform TTL cache over fetcher output. Entries are
// replaced wholesale on refresh; a refresh race between two callers
// resolves by last write, and serving a snapshot up to one TTL window
// stale during such a race is acceptable.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[source.Platform]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache. A non-positive ttl selects DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[source.Platform]cacheEntry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached snapshot for platform when useCache is set
// and the entry is younger than the TTL; otherwise it invokes fetch and
// overwrites the entry wholesale. A failed fetch leaves the previous
// snapshot untouched so later callers within its TTL still get data; the
// failing caller receives no items and the error.
func (c *Cache) GetOrFetch(ctx context.Context, platform source.Platform, fetch FetchFunc, useCache bool) ([]source.HeatItem, error) {
	if useCache {
		if items, ok := c.lookup(platform); ok {
			return items, nil
		}
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[platform] = cacheEntry{items: items, capturedAt: c.now()}
	c.mu.Unlock()
	return items, nil
}

func (c *Cache) lookup(platform source.Platform) ([]source.HeatItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[platform]
	if !ok || c.now().Sub(entry.capturedAt) >= c.ttl {
		return nil, false
	}
	return entry.items, true
}

// Clear drops the entries for the given platforms, or every entry when
// called with no arguments.
func (c *Cache) Clear(platforms ...source.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(platforms) == 0 {
		c.entries = make(map[source.Platform]cacheEntry)
		return
	}
	for _, p := range platforms {
		delete(c.entries, p)
	}
}
