package buildcache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a Redis server so several machines can
// share compiled programs.
type RedisCache struct {
	client redis.UniversalClient
	config Config
	hits   int64
	misses int64
}

// NewRedisCache creates a Redis-backed cache. The connection is opened
// lazily by the first command.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	opts := &redis.Options{Addr: "localhost:6379"}
	if cfg.URL != "" {
		var err error
		if opts, err = redis.ParseURL(cfg.URL); err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	return &RedisCache{
		client: redis.NewClient(opts),
		config: cfg,
	}, nil
}

func (c *RedisCache) prefixKey(key string) string {
	if c.config.Prefix != "" {
		return c.config.Prefix + ":" + key
	}
	return key
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	atomic.AddInt64(&c.hits, 1)
	return data, nil
}

// Set stores a value in the cache with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}
	if err := c.client.Set(ctx, c.prefixKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefixKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// keys scans every key under the configured prefix.
func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		all    []string
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefixKey("*"), 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		all = append(all, keys...)
		cursor = next
		if cursor == 0 {
			return all, nil
		}
	}
}

// Purge removes every key under the configured prefix.
func (c *RedisCache) Purge(ctx context.Context) error {
	keys, err := c.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis purge: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Stats returns cache statistics. Keys counts the prefixed keys; it is left
// at zero, with Error set, when the server cannot be reached.
func (c *RedisCache) Stats() Stats {
	s := Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
	keys, err := c.keys(context.Background())
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Keys = int64(len(keys))
	return s
}
