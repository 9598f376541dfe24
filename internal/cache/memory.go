package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

// MemoryCache implements Cache in process memory. Used for single-node
// deployments and tests; semantics mirror the redis implementation.
type MemoryCache struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	hashes map[string]map[string]string
	now    func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an in-memory cache
func NewMemory() *MemoryCache {
	return &MemoryCache{
		values: make(map[string]memoryEntry),
		hashes: make(map[string]map[string]string),
		now:    time.Now,
	}
}

// SetClock overrides the clock, for tests
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryCache) live(key string) (memoryEntry, bool) {
	e, ok := c.values[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.values, key)
		return memoryEntry{}, false
	}
	return e, true
}

// IncrWithExpire increments a counter, resetting its TTL
func (c *MemoryCache) IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if e, ok := c.live(key); ok {
		n, _ = strconv.ParseInt(e.value, 10, 64)
	}
	n++

	e := memoryEntry{value: strconv.FormatInt(n, 10)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.values[key] = e
	return n, nil
}

// Get retrieves a value
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return "", errors.NotFound("cache key")
	}
	return e.value, nil
}

// Set stores a value with a TTL
func (c *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.values[key] = e
	return nil
}

// HGet retrieves a hash field
func (c *MemoryCache) HGet(ctx context.Context, key, field string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.hashes[key]
	if !ok {
		return "", errors.NotFound("cache field")
	}
	v, ok := h[field]
	if !ok {
		return "", errors.NotFound("cache field")
	}
	return v, nil
}

// HSet stores a hash field
func (c *MemoryCache) HSet(ctx context.Context, key, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	h[field] = value
	return nil
}

// HGetAll retrieves all fields of a hash
func (c *MemoryCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.hashes[key]
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

// HIncrBy increments a hash field counter
func (c *MemoryCache) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	n, _ := strconv.ParseInt(h[field], 10, 64)
	n += delta
	h[field] = strconv.FormatInt(n, 10)
	return n, nil
}

// Delete removes a key
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
	delete(c.hashes, key)
	return nil
}

// Close is a no-op for the in-memory cache
func (c *MemoryCache) Close() error {
	return nil
}
