// Package viewcache holds rendered pages keyed by their logical request
// path. Mutations invalidate by path prefix so the next read after a
// redirect always recomputes the view.
package viewcache

import (
	"strings"
	"sync"
	"time"
)

// Invalidator is the invalidation signal injected into services. Services
// depend on this interface, never on the concrete cache.
type Invalidator interface {
	Invalidate(path string)
}

type entry struct {
	body    []byte
	expires time.Time
}

// Cache is an in-process TTL cache of rendered views. Safe for concurrent
// use by parallel requests.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

// Get returns the cached body for the exact key if present and fresh.
// Stale entries are evicted on the miss, not just skipped.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.body, true
}

// Set stores a rendered body under the given key and sweeps any entries
// that have expired, so keys that are never read again do not pile up.
func (c *Cache) Set(key string, body []byte) {
	c.mu.Lock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{body: body, expires: now.Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the view at path and every view nested under it,
// including query-string variants.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	for key := range c.entries {
		if key == path || strings.HasPrefix(key, path+"?") || strings.HasPrefix(key, path+"/") {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
