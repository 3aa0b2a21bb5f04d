// Package cache provides the in-process TTL cache backing the analytics
// endpoints. Entries expire lazily: an expired entry is deleted the next
// time it is read, there is no background sweeper.
package cache

import (
	"math"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// Observer receives hit/miss notifications, typically to feed Prometheus.
type Observer interface {
	CacheHit()
	CacheMiss()
}

// Cache is a mutex-guarded map with per-entry TTLs.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	hits     int64
	misses   int64
	now      func() time.Time
	observer Observer
}

// Option configures optional cache behavior.
type Option func(*Cache)

// WithClock overrides the time source, used by tests to force expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver registers a hit/miss observer.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live value for key. Expired entries are deleted on the
// spot and reported as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Before(e.expiresAt) {
		c.hits++
		if c.observer != nil {
			c.observer.CacheHit()
		}
		return e.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	if c.observer != nil {
		c.observer.CacheMiss()
	}
	return nil, false
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear empties the cache and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.hits = 0
	c.misses = 0
}

// ClearPrefix removes every entry whose key starts with prefix and returns
// how many were dropped. Counters are left untouched.
func (c *Cache) ClearPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports counters plus the live entry count. Expired-but-unread
// entries still count toward Entries until something touches them.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = roundRate(float64(c.hits) / float64(total) * 100)
	}
	return s
}

func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}
