package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryCache is an in-process Cache used when no Redis URL is configured (single-instance dev setups and tests).
type MemoryCache struct {
	mu   sync.RWMutex
	m    map[string]memEntry
	nowF func() time.Time
}

// NewMemoryCache returns an empty in-memory session cache.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(func() time.Time { return time.Now().UTC() })
}

// NewMemoryCacheWithClock returns an empty cache that reads time from now.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{m: make(map[string]memEntry), nowF: now}
}

// Get returns the entry for id if present and not expired. Expired entries are dropped on read.
func (c *MemoryCache) Get(ctx context.Context, id string) (Entry, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key(id)]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if !e.expiresAt.After(c.nowF()) {
		c.mu.Lock()
		delete(c.m, key(id))
		c.mu.Unlock()
		return Entry{}, false, nil
	}
	return e.entry, true, nil
}

// Set stores e under id until now+ttl. A non-positive ttl removes the entry.
func (c *MemoryCache) Set(ctx context.Context, id string, e Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		delete(c.m, key(id))
		return nil
	}
	c.m[key(id)] = memEntry{entry: e, expiresAt: c.nowF().Add(ttl)}
	return nil
}

// Delete removes the entries for ids.
func (c *MemoryCache) Delete(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.m, key(id))
	}
	return nil
}

// Ping always succeeds.
func (c *MemoryCache) Ping(context.Context) error { return nil }

// TTL returns the remaining lifetime of id, or 0 when absent. Used by tests and diagnostics.
func (c *MemoryCache) TTL(id string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key(id)]
	if !ok {
		return 0
	}
	if d := e.expiresAt.Sub(c.nowF()); d > 0 {
		return d
	}
	return 0
}
