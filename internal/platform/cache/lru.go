// Package cache provides a size-bounded, expiring in-process cache.
package cache

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// LRU is a least-recently-used cache whose entries also expire after a fixed TTL.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// New creates an LRU holding at most size entries, each for at most ttl.
// A ttl of zero disables expiry.
func New[K comparable, V any](size int, ttl time.Duration) *LRU[K, V] {
	return &LRU[K, V]{
		cache: lru.New(size),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	raw, ok := c.cache.Get(key)
	if !ok {
		return zero, false
	}

	e, ok := raw.(entry[V])
	if !ok {
		return zero, false
	}

	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		c.cache.Remove(key)
		return zero, false
	}

	return e.value, true
}

func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

func (c *LRU[K, V]) Remove(keys ...K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		c.cache.Remove(key)
	}
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Clear()
}

// SetClock replaces the time source. It exists for tests.
func (c *LRU[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}
