package buildcache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps compiled program blobs in process memory. When a limit
// is reached the program built or read least recently is dropped first.
// Memory is accounted as the blob length; keys are fixed-size digests.
type MemoryCache struct {
	mu       sync.Mutex
	programs map[string]*program
	tick     uint64
	bytes    int64
	hits     int64
	misses   int64
	config   Config
	now      func() time.Time
}

type program struct {
	blob     []byte
	expires  time.Time
	lastUsed uint64
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache(cfg Config) *MemoryCache {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &MemoryCache{
		programs: make(map[string]*program),
		config:   cfg,
		now:      time.Now,
	}
}

// touch marks p as the most recently used program.
func (c *MemoryCache) touch(p *program) {
	c.tick++
	p.lastUsed = c.tick
}

func (c *MemoryCache) drop(key string) {
	if p, ok := c.programs[key]; ok {
		c.bytes -= int64(len(p.blob))
		delete(c.programs, key)
	}
}

// full reports whether adding a blob of size would break a limit.
func (c *MemoryCache) full(size int64) bool {
	if len(c.programs) == 0 {
		return false
	}
	if c.config.MaxItems > 0 && len(c.programs) >= c.config.MaxItems {
		return true
	}
	return c.config.MaxMemory > 0 && c.bytes+size > c.config.MaxMemory
}

// makeRoom drops expired programs, then the least recently used ones, until
// a blob of size fits.
func (c *MemoryCache) makeRoom(size int64) {
	now := c.now()
	for key, p := range c.programs {
		if now.After(p.expires) {
			c.drop(key)
		}
	}
	for c.full(size) {
		oldest, at := "", ^uint64(0)
		for key, p := range c.programs {
			if p.lastUsed < at {
				oldest, at = key, p.lastUsed
			}
		}
		c.drop(oldest)
	}
}

// Get returns a copy of the program stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.programs[key]
	if ok && c.now().After(p.expires) {
		c.drop(key)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, ErrCacheMiss
	}
	c.hits++
	c.touch(p)
	return append([]byte(nil), p.blob...), nil
}

// Set stores a copy of blob under key. A blob larger than MaxMemory is not
// kept at all.
func (c *MemoryCache) Set(_ context.Context, key string, blob []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}
	size := int64(len(blob))

	c.mu.Lock()
	defer c.mu.Unlock()

	c.drop(key)
	if c.config.MaxMemory > 0 && size > c.config.MaxMemory {
		return nil
	}
	c.makeRoom(size)

	p := &program{blob: append([]byte(nil), blob...), expires: c.now().Add(ttl)}
	c.touch(p)
	c.programs[key] = p
	c.bytes += size
	return nil
}

// Delete removes the program stored under key, if any.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop(key)
	return nil
}

// Purge removes every program.
func (c *MemoryCache) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.programs)
	c.bytes = 0
	return nil
}

// Close releases the stored programs.
func (c *MemoryCache) Close() error {
	return c.Purge(context.Background())
}

// Stats returns hit and size counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Keys:       int64(len(c.programs)),
		MemoryUsed: c.bytes,
	}
}
