// Package cache provides the in-process TTL cache used for resolved user
// profiles. Durable per-user state lives in the kvstore package instead.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// New creates a new in-memory cache with the given TTL and starts the
// janitor goroutine. Call Close to stop it.
func New[T any](ttl time.Duration) *InMemory[T] {
	return newCache[T](ttl, time.Now, true)
}

// NewWithClock is New without the janitor, reading time from now. Expired
// entries are still never returned.
func NewWithClock[T any](ttl time.Duration, now func() time.Time) *InMemory[T] {
	return newCache[T](ttl, now, false)
}

func newCache[T any](ttl time.Duration, now func() time.Time, janitor bool) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		now:   now,
		stop:  make(chan struct{}),
	}
	if janitor && ttl > 0 {
		go c.cleanup()
	}
	return c
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len counts stored entries, expired ones included until swept.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Sweep removes expired entries.
func (c *InMemory[T]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
}

// Close stops the janitor. The cache stays usable.
func (c *InMemory[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *InMemory[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
