// Package cache provides the in-memory memoization used on hot lookup paths.
package cache

import (
	"sync"
	"time"
)

// sweepAfterWrites bounds how much garbage can pile up between sweeps.
const sweepAfterWrites = 256

// Cache is the read-through cache backing product-name lookups on the
// claim response path.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
}

type record[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache keeps every entry for one fixed lifetime chosen at construction.
// Expired entries are dropped lazily on read; a full sweep runs once the
// cache has absorbed sweepAfterWrites writes, keeping the map bounded even
// when keys are never read again.
type TTLCache[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	items  map[K]record[V]
	writes int
}

// NewTTLCache builds a cache whose entries live for ttl. A non-positive ttl
// keeps entries forever.
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]record[V]),
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.expired(item, c.now()) {
		delete(c.items, key)
		return zero, false
	}
	return item.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.items[key] = record[V]{value: value, storedAt: now}
	c.writes++
	if c.writes >= sweepAfterWrites {
		c.sweepLocked(now)
		c.writes = 0
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len reports live entries, counting out anything already expired.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for _, item := range c.items {
		if !c.expired(item, now) {
			count++
		}
	}
	return count
}

func (c *TTLCache[K, V]) expired(item record[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(item.storedAt) >= c.ttl
}

func (c *TTLCache[K, V]) sweepLocked(now time.Time) {
	for key, item := range c.items {
		if c.expired(item, now) {
			delete(c.items, key)
		}
	}
}
