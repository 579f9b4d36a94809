// Package cache defines the small caching port the remote client and
// other short-lived lookups are written against, keeping the concrete
// cache implementation out of the callers.
package cache

import "time"

// CacheService is a TTL key-value cache. Implementations must be safe
// for concurrent use.
type CacheService interface {
	// Get returns the cached value and true, or nil and false when the
	// key is absent or expired.
	Get(key string) (interface{}, bool)

	// Set stores a value under key for the given duration. A zero
	// duration means the implementation's default TTL.
	Set(key string, value interface{}, duration time.Duration)

	// Delete drops one key, absent keys are a no-op.
	Delete(key string)

	// Flush drops every entry.
	Flush()
}
