// Package cache defines the result-cache interface.
//
// The cache stores opaque serialized blobs with a bounded TTL; serialization
// is the caller's responsibility. The backing store is shared across process
// instances.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for result-cache operations.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns nil if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the default TTL is used.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePattern removes all keys matching the given pattern.
	// Returns the number of keys deleted.
	DeletePattern(ctx context.Context, pattern string) (int64, error)

	// Ping checks if the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
