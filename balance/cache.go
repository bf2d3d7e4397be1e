package balance

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// =============================================================================
// BALANCE CACHE - TTL bounded, load on miss
// =============================================================================

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

// ttlCache holds at most size values for ttl each. Concurrent misses on the
// same key share one load. When full, the entry closest to expiry is evicted.
type ttlCache[V any] struct {
	mu      sync.Mutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	size    int
	now     func() time.Time
	loads   singleflight.Group
}

func newTTLCache[V any](ttl time.Duration, size int, now func() time.Time) *ttlCache[V] {
	if size < 1 {
		size = 1
	}
	if now == nil {
		now = time.Now
	}
	return &ttlCache[V]{entries: make(map[string]cacheEntry[V]), ttl: ttl, size: size, now: now}
}

// get returns the cached value of key, calling load on a miss. hit reports
// whether the value came from the cache.
func (c *ttlCache[V]) get(ctx context.Context, key string, load func(context.Context) (V, error)) (v V, hit bool, err error) {
	if v, ok := c.lookup(key); ok {
		return v, true, nil
	}
	res, err, _ := c.loads.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

func (c *ttlCache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[V]) store(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.size {
		c.evict(now)
	}
	c.entries[key] = cacheEntry[V]{value: v, expires: now.Add(c.ttl)}
}

// evict drops expired entries, or the oldest one if none have expired.
// Caller holds mu.
func (c *ttlCache[V]) evict(now time.Time) {
	oldestKey, oldest := "", time.Time{}
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	if len(c.entries) >= c.size && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *ttlCache[V]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
