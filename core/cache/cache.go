package cache

import (
	"strings"
	"sync"
	"time"
)

// entry is a cached value with its write timestamp.
type entry struct {
	value   string
	written time.Time
}

// Cache is a TTL-based in-memory store for rendered calendar documents.
// Keys are feed identifiers (property slug, or "slug/roomslug" for room
// feeds). All methods are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a cache whose entries expire ttl after they were written.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// NewFromConfig creates a cache from the application configuration.
func NewFromConfig(cfg Config) *Cache {
	return New(time.Duration(cfg.TTLSeconds) * time.Second)
}

// Get returns the cached value for key, or false if the key is absent or
// its entry has expired. Expired entries are removed on access.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if time.Since(e.written) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && time.Since(cur.written) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return e.value, true
}

// Set stores value under key, resetting its TTL.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, written: time.Now()}
	c.mu.Unlock()
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix.
// The match is a plain string prefix, not path-segment aware: invalidating
// "beach-house" also removes "beach-house-deluxe/main". Callers avoid
// collisions by always keying feeds as "slug" or "slug/roomslug".
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, including entries
// that have expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
