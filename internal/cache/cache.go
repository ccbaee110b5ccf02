// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cache provides the short-lived key/value store behind egress route
// affinity, with an in-memory and a Redis implementation.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a thread-safe string store with per-entry expiration.
type Cache interface {
	// Get retrieves a value. Returns false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores a value with the specified TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes a value.
	Delete(ctx context.Context, key string)
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	value      string
	expiration time.Time
}

func (e entry) expiredAt(now time.Time) bool {
	return now.After(e.expiration)
}

// MemoryCache is an in-memory implementation of Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	stats   Stats
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryCache creates an in-memory cache. A positive cleanupInterval starts
// a janitor goroutine that drops expired entries; call Stop to end it.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || e.expiredAt(c.now()) {
		c.stats.Misses++
		return "", false
	}
	c.stats.Hits++
	return e.value, true
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiration: c.now().Add(ttl)}
	c.stats.Sets++
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

// Stop ends the janitor goroutine. Safe to call more than once.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if e.expiredAt(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.Evictions += int64(count)
	return count
}

func (c *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}
