package cache

import (
	"context"
	"sync"
	"time"

	"instatistics/internal/domain"
)

// MemoryCache is an in-memory dataset store with TTL support.
// A zero TTL keeps entries until they are invalidated.
type MemoryCache struct {
	datasets sync.Map
	ttl      time.Duration
	done     chan struct{}
	once     sync.Once
}

// cacheEntry holds a cached dataset with expiration metadata.
type cacheEntry struct {
	dataset   *domain.Dataset
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache with the specified TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{ttl: ttl, done: make(chan struct{})}
	if ttl > 0 {
		go cache.cleanup()
	}
	return cache
}

// Get retrieves a dataset from the cache.
// Returns the dataset and true if found and not expired, otherwise nil and false.
func (c *MemoryCache) Get(_ context.Context, key string) (*domain.Dataset, bool) {
	value, ok := c.datasets.Load(key)
	if !ok {
		return nil, false
	}

	entry := value.(*cacheEntry)
	if c.expired(entry, time.Now()) {
		c.datasets.Delete(key)
		return nil, false
	}

	return entry.dataset, true
}

// Set stores a dataset in the cache with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, key string, ds *domain.Dataset) {
	entry := &cacheEntry{dataset: ds}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.datasets.Store(key, entry)
}

// Invalidate removes a dataset from the cache.
func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.datasets.Delete(key)
}

// Close stops the background cleanup.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *MemoryCache) expired(entry *cacheEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}

// cleanup periodically removes expired entries from the cache.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.datasets.Range(func(key, value any) bool {
				if c.expired(value.(*cacheEntry), now) {
					c.datasets.Delete(key)
				}
				return true
			})
		}
	}
}
