// Package cache provides the windowed cache used for burst counters,
// per-channel rate limits and the learned correlation accuracy tables. All
// counter updates are atomic so filter and dispatcher workers can share the
// cache without external locking.
package cache

import (
	"context"
	"time"
)

// Cache is the windowed cache adapter contract
type Cache interface {
	// IncrWithExpire atomically increments a counter and resets its TTL,
	// returning the post-increment value
	IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get retrieves a value; returns a NOT_FOUND error on miss
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with a TTL; zero TTL means no expiry
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// HGet retrieves a hash field; returns a NOT_FOUND error on miss
	HGet(ctx context.Context, key, field string) (string, error)

	// HSet stores a hash field
	HSet(ctx context.Context, key, field, value string) error

	// HGetAll retrieves all fields of a hash
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HIncrBy atomically increments a hash field counter
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// Delete removes a key
	Delete(ctx context.Context, key string) error

	// Close releases the underlying client
	Close() error
}
