// Package cache is a small in-process TTL map.
package cache

import (
	"sync"
	"time"
)

// sweepThreshold is the map size at which Set first drops expired entries.
const sweepThreshold = 1024

type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	m       map[K]entry[V]
	sweepAt int
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[K, V]{
		ttl:     ttl,
		now:     time.Now,
		m:       make(map[K]entry[V]),
		sweepAt: sweepThreshold,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		if cur, still := c.m[key]; still && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.val, true
}

func (c *Cache[K, V]) Set(key K, val V) {
	now := c.now()

	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
	c.sweep(now)
	c.mu.Unlock()
}

// sweep drops expired entries once the map reaches sweepAt, then moves
// sweepAt to twice the surviving size. Caller holds mu.
func (c *Cache[K, V]) sweep(now time.Time) {
	if len(c.m) < c.sweepAt {
		return
	}
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.sweepAt = max(sweepThreshold, 2*len(c.m))
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
