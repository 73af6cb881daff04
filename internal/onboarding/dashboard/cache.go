package dashboard

import (
	"strings"
	"sync"
	"time"
)

// AggregateCache is an in-memory TTL cache for computed dashboard aggregates
type AggregateCache struct {
	data    map[string]*cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
	cleanup *time.Ticker
	done    chan struct{}
	stop    sync.Once

	hits   int64
	misses int64
}

type cacheEntry struct {
	value      interface{}
	expiration time.Time
}

// CacheStats reports cache usage
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewAggregateCache creates a cache and starts its expiry sweep
func NewAggregateCache(ttl time.Duration) *AggregateCache {
	cache := &AggregateCache{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		cleanup: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// Get retrieves an unexpired value
func (c *AggregateCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok || c.now().After(entry.expiration) {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.value, true
}

// Set stores a value for the cache TTL
func (c *AggregateCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// GetOrSet returns the cached value or computes and stores it
func (c *AggregateCache) GetOrSet(key string, compute func() (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.Set(key, value)
	return value, nil
}

// Delete removes a value from the cache
func (c *AggregateCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

// DeleteByPrefix removes all entries with keys starting with the given prefix
func (c *AggregateCache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
}

// Size returns the number of entries, expired or not
func (c *AggregateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

// Stats returns hit and miss counters
func (c *AggregateCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{Size: len(c.data), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func (c *AggregateCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *AggregateCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *AggregateCache) Stop() {
	c.stop.Do(func() {
		c.cleanup.Stop()
		close(c.done)
	})
}
