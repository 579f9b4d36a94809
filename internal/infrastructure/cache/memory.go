// Package cache provides the in-process CacheService implementation.
// It backs the remote client's short-TTL single-order lookups, so
// entries are small and churn quickly.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache builds a go-cache backed CacheService. cleanupInterval
// controls how often expired entries are evicted for real; reads treat
// them as gone either way.
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.store.Set(key, value, duration)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}
