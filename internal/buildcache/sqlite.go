package buildcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS programs (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)
`

// SQLiteCache implements Cache on a SQLite database so compiled programs
// survive between runs.
type SQLiteCache struct {
	db     *sql.DB
	config Config
	hits   int64
	misses int64
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the cache database at cfg.Path.
func OpenSQLite(cfg Config) (*SQLiteCache, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite cache requires a path")
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &SQLiteCache{db: db, config: cfg, now: time.Now}, nil
}

// Get retrieves a value from the cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx, "SELECT value, expires_at FROM programs WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if c.now().UnixNano() > expiresAt {
		atomic.AddInt64(&c.misses, 1)
		if err := c.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrCacheMiss
	}
	atomic.AddInt64(&c.hits, 1)
	return value, nil
}

// Set stores a value in the cache with the given TTL.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO programs (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, c.now().Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes a key from the cache.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM programs WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Purge removes every entry.
func (c *SQLiteCache) Purge(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM programs"); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Stats returns cache statistics. Keys counts rows, expired or not. When the
// database cannot be read the sizes are zero and Error says why.
func (c *SQLiteCache) Stats() Stats {
	s := Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
	var keys, size int64
	err := c.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM programs").Scan(&keys, &size)
	if err != nil {
		s.Error = fmt.Sprintf("failed to read cache size: %v", err)
		return s
	}
	s.Keys, s.MemoryUsed = keys, size
	return s
}
