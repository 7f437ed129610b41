// Package buildcache stores compiled event programs keyed by a digest of
// their inputs, with in-memory, SQLite and Redis backends.
package buildcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned when a key is not found in the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for cache operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Purge removes every entry.
	Purge(ctx context.Context) error

	Close() error
	Stats() Stats
}

// Stats holds cache statistics.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Keys       int64 `json:"keys"`
	MemoryUsed int64 `json:"memoryUsed"`
	// Error reports why Keys and MemoryUsed could not be read.
	Error string `json:"error,omitempty"`
}

// Config holds cache configuration.
type Config struct {
	// Type is the cache backend type: "memory", "sqlite", "redis" or "none".
	Type string `json:"type" yaml:"type" validate:"omitempty,oneof=memory sqlite redis none"`

	// Path is the SQLite database file.
	Path string `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Type sqlite"`

	// Redis settings, for a build cache shared between machines
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	PoolSize int    `json:"poolSize,omitempty" yaml:"poolSize,omitempty" validate:"gte=0"`

	DefaultTTL time.Duration `json:"defaultTTL,omitempty" yaml:"defaultTTL,omitempty" validate:"gte=0"`

	// Memory cache settings
	MaxMemory int64 `json:"maxMemory,omitempty" yaml:"maxMemory,omitempty" validate:"gte=0"` // Maximum memory in bytes (0 = unlimited)
	MaxItems  int   `json:"maxItems,omitempty" yaml:"maxItems,omitempty" validate:"gte=0"`   // Maximum number of items (0 = unlimited)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Type:       "memory",
		DefaultTTL: 24 * time.Hour,
		MaxMemory:  64 * 1024 * 1024, // 64MB
		MaxItems:   1000,
		Prefix:     "eventc",
	}
}

// New creates a new cache instance based on configuration. Type "none"
// returns a nil Cache.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryCache(cfg), nil
	case "sqlite":
		c, err := OpenSQLite(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		c, err := NewRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none":
		return nil, nil
	default:
		return nil, errors.New("unsupported cache type: " + cfg.Type)
	}
}

// GetJSON retrieves and unmarshals a JSON value from c.
func GetJSON(ctx context.Context, c Cache, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

// SetJSON marshals and stores a value as JSON in c.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}
