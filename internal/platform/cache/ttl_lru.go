// Package cache provides the bounded, read-mostly caches spec §5 requires:
// per-tenant configuration cached in-process with a bounded LRU and a
// 60-second TTL, invalidated on mutation. Built on hashicorp/golang-lru,
// the same library the wider retrieval corpus reaches for.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry wraps a cached value with its insertion time for TTL expiry.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a bounded LRU cache with a fixed time-to-live per entry.
// Safe for concurrent use.
type TTLCache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *lru.Cache[K, entry[V]]
	ttl time.Duration
}

// New builds a TTLCache holding at most size entries, each valid for ttl.
func New[K comparable, V any](size int, ttl time.Duration) (*TTLCache[K, V], error) {
	l, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[K, V]{lru: l, ttl: ttl}, nil
}

// Get returns the cached value if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces a cached value, resetting its TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// Invalidate removes a single key — called whenever the underlying record
// (organization settings, notification preferences) is mutated, per §5's
// "mutations invalidate the cache entry".
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}
