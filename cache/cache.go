// Package cache provides a small thread-safe TTL cache used to memoize
// repository query results between CLI invocations of the same process.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a generic key-value store with per-item expiry. Expired entries
// are dropped lazily on access and by Prune.
type Cache[K comparable, V any] struct {
	mu         sync.RWMutex
	store      map[K]entry[V]
	defaultTTL time.Duration
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the expiry applied by Set. Zero means no expiry.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{store: make(map[K]entry[V])}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL. A zero ttl means
// the entry never expires.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.store[key] = entry[V]{value: value, expiresAt: expires}
	c.mu.Unlock()
}

// Get returns the value for key and whether a live entry was present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including not-yet-pruned
// expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Prune drops all expired entries and returns how many were removed.
func (c *Cache[K, V]) Prune() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.store {
		if e.expired(now) {
			delete(c.store, key)
			removed++
		}
	}
	return removed
}
