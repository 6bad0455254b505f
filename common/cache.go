package common

import (
	"fmt"
	"sync"
	"time"
)

// Cache categories. Every cached hub resource belongs to exactly one.
const (
	CategoryHub      = "hub"
	CategoryProducts = "products"
	CategoryPlayers  = "players"
)

// NeverExpires marks a category whose entries stay valid forever.
const NeverExpires = -1 * time.Second

// Default trust windows per category. Hub metadata changes only on redeploy;
// player verification has the shortest window.
const (
	DefaultHubTTL      = NeverExpires
	DefaultProductsTTL = 5 * time.Minute
	DefaultPlayersTTL  = 1 * time.Minute
)

// CacheDurations holds the per-category TTL. Negative means never expires.
// Read-only after the store is constructed.
type CacheDurations struct {
	Hub      time.Duration
	Products time.Duration
	Players  time.Duration
}

// DefaultCacheDurations returns the stock TTL table.
func DefaultCacheDurations() CacheDurations {
	return CacheDurations{
		Hub:      DefaultHubTTL,
		Products: DefaultProductsTTL,
		Players:  DefaultPlayersTTL,
	}
}

// CacheStore is a category-scoped response cache. Entries are immutable once
// written and replaced wholesale on refresh; a write is refused while the
// existing entry is still inside its trust window, so a slow concurrent
// refresh cannot clobber a just-written fresh value.
type CacheStore interface {
	// ShouldReturnCached reports whether a fresh entry exists for the key.
	// Unknown categories are an error.
	ShouldReturnCached(category, path string) (bool, error)
	// Set stores {value, now} unless the existing entry is still fresh, in
	// which case it reports false and leaves the entry untouched.
	Set(category, path string, value any) (bool, error)
	// Get returns the stored data regardless of freshness.
	Get(category, path string) (any, bool)
	// Delete forcibly removes an entry.
	Delete(category, path string)
	// SetClockForTest replaces the time source.
	SetClockForTest(now func() time.Time)
}

type cacheEntry struct {
	data        any
	generatedAt time.Time
}

type cacheStore struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	entries   map[string]map[string]cacheEntry
	now       func() time.Time
}

var _ CacheStore = (*cacheStore)(nil)

// NewCacheStore builds a store over the fixed category set with the given
// TTL table.
func NewCacheStore(durations CacheDurations) CacheStore {
	return &cacheStore{
		durations: map[string]time.Duration{
			CategoryHub:      durations.Hub,
			CategoryProducts: durations.Products,
			CategoryPlayers:  durations.Players,
		},
		entries: map[string]map[string]cacheEntry{
			CategoryHub:      {},
			CategoryProducts: {},
			CategoryPlayers:  {},
		},
		now: time.Now,
	}
}

func (c *cacheStore) ShouldReturnCached(category, path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isFresh(category, path)
}

// isFresh is the single freshness rule; callers hold c.mu.
func (c *cacheStore) isFresh(category, path string) (bool, error) {
	ttl, ok := c.durations[category]
	if !ok {
		return false, fmt.Errorf("unknown cache category %q", category)
	}
	entry, ok := c.entries[category][path]
	if !ok {
		return false, nil
	}
	if ttl < 0 {
		return true, nil
	}
	return c.now().Sub(entry.generatedAt) < ttl, nil
}

func (c *cacheStore) Set(category, path string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh, err := c.isFresh(category, path)
	if err != nil {
		return false, err
	}
	if fresh {
		return false, nil
	}
	c.entries[category][path] = cacheEntry{data: value, generatedAt: c.now()}
	return true, nil
}

func (c *cacheStore) Get(category, path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[category][path]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

func (c *cacheStore) Delete(category, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if paths, ok := c.entries[category]; ok {
		delete(paths, path)
	}
}

func (c *cacheStore) SetClockForTest(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
