package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

// RedisCache implements Cache on a redis server
type RedisCache struct {
	client *redis.Client
}

// NewRedis creates a redis-backed cache and verifies connectivity
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// IncrWithExpire increments a counter and resets its TTL. INCR and EXPIRE
// run in one pipeline so concurrent workers never observe a counter
// without expiry.
func (c *RedisCache) IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Transient("cache increment failed", err)
	}
	return incr.Val(), nil
}

// Get retrieves a value
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errors.NotFound("cache key")
	}
	if err != nil {
		return "", errors.Transient("cache get failed", err)
	}
	return val, nil
}

// Set stores a value with a TTL
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Transient("cache set failed", err)
	}
	return nil
}

// HGet retrieves a hash field
func (c *RedisCache) HGet(ctx context.Context, key, field string) (string, error) {
	val, err := c.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", errors.NotFound("cache field")
	}
	if err != nil {
		return "", errors.Transient("cache hget failed", err)
	}
	return val, nil
}

// HSet stores a hash field
func (c *RedisCache) HSet(ctx context.Context, key, field, value string) error {
	if err := c.client.HSet(ctx, key, field, value).Err(); err != nil {
		return errors.Transient("cache hset failed", err)
	}
	return nil
}

// HGetAll retrieves all fields of a hash
func (c *RedisCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Transient("cache hgetall failed", err)
	}
	return val, nil
}

// HIncrBy increments a hash field counter
func (c *RedisCache) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	val, err := c.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, errors.Transient("cache hincrby failed", err)
	}
	return val, nil
}

// Delete removes a key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errors.Transient("cache delete failed", err)
	}
	return nil
}

// Close closes the redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
