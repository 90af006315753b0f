package infra

import (
	"sort"
	"sync"
	"time"
)

// Cache size limits to prevent unbounded memory growth
const (
	DefaultMaxCacheEntries = 1000            // Maximum number of cache entries
	DefaultCacheCleanup    = 5 * time.Minute // How often to run cache cleanup
)

// cacheEntry holds cached data with expiration and LRU tracking
type cacheEntry[V any] struct {
	value      V
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache is an LRU cache with per-entry TTL. It is safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry[V]
	maxEntries int
	now        func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCache creates a cache holding at most maxEntries values and starts its
// background cleanup loop. Call Close to stop the loop.
func NewCache[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	c := &Cache[V]{
		entries:    make(map[string]*cacheEntry[V]),
		maxEntries: maxEntries,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a cached value if it exists and hasn't expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	now := c.now()
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	e.accessedAt = now
	return e.value, true
}

// Set stores a value with the given TTL, evicting the least recently used
// entries when the cache is full.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		// Evict 10% extra so a full cache doesn't sort on every insert
		c.evictLRU(len(c.entries) - c.maxEntries + 1 + c.maxEntries/10)
	}
	c.entries[key] = &cacheEntry[V]{
		value:      value,
		expiresAt:  now.Add(ttl),
		accessedAt: now,
	}
}

// Delete removes a key from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Size returns the current number of entries, expired ones included until
// the next cleanup.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(DefaultCacheCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries
func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// evictLRU removes the count least recently used entries. Caller holds c.mu.
func (c *Cache[V]) evictLRU(count int) {
	if count <= 0 {
		return
	}
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].accessedAt.Before(c.entries[keys[j]].accessedAt)
	})
	if count > len(keys) {
		count = len(keys)
	}
	for _, k := range keys[:count] {
		delete(c.entries, k)
	}
}
