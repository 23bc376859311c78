package secrets

import (
	"sync"
	"time"
)

type cacheItem[T any] struct {
	value   T
	expires time.Time
}

// Cache is a thread-safe TTL cache keyed by secret name.
type Cache[T any] struct {
	mu   sync.RWMutex
	data map[string]cacheItem[T]
	ttl  time.Duration
	now  func() time.Time
}

// NewCache creates a TTL cache. A non-positive ttl disables caching.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		data: make(map[string]cacheItem[T]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached value if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !c.now().Before(item.expires) {
		c.Bust(key)
		return zero, false
	}
	return item.value, true
}

// Put stores value under key for the cache TTL.
func (c *Cache[T]) Put(key string, value T) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.data[key] = cacheItem[T]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Bust deletes a single entry (e.g., after a credentials rotation).
func (c *Cache[T]) Bust(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
