// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached value and its expiry.
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Stats tracks cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Loads     int64
}

// Cache is a TTL cache safe for concurrent use. Expired entries are removed
// lazily on Get, so no background goroutine is needed.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group

	statsMu sync.Mutex
	stats   Stats
}

// New returns a Cache whose entries live for ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func(s *Stats) { s.Misses++ })
		var zero V
		return zero, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Another goroutine may have refreshed it in between.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		var zero V
		return zero, false
	}

	c.record(func(s *Stats) { s.Hits++ })
	return entry.Data, true
}

// Set stores value under key for the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Data: value, ExpiresAt: c.now().Add(c.ttl)}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.record(func(s *Stats) { s.Evictions++ })
}

// GetOrLoad returns the cached value or calls load once for all concurrent
// callers of the same key. Errors are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		c.record(func(s *Stats) { s.Loads++ })
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// peek is Get without statistics.
func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.ExpiresAt) {
		var zero V
		return zero, false
	}
	return entry.Data, true
}

// Len reports stored entries, including expired ones not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the counters.
func (c *Cache[V]) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups.
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache[V]) record(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}
