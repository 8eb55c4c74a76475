// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a process-local Cacher.
type MemoryCache struct {
	data       sync.Map
	count      atomic.Int64
	defaultTTL time.Duration
	maxSize    int
	stopCh     chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures NewMemoryCache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	// MaxSize caps the number of entries; 0 is unlimited.
	MaxSize int
	// CleanupInterval enables a background sweep of expired entries.
	CleanupInterval time.Duration
}

// NewMemoryCache creates a MemoryCache. Call Close to stop the sweeper.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Hour
	}
	c := &MemoryCache{
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopCh:     make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// Get implements Cacher. The returned slice is a copy.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	v, ok := c.data.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	e := v.(*memoryEntry)
	if time.Now().After(e.expiresAt) {
		c.remove(key)
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set implements Cacher. When the cache is full, expired entries are swept
// first and then the entry closest to expiry is evicted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if _, exists := c.data.Load(key); !exists && c.maxSize > 0 && int(c.count.Load()) >= c.maxSize {
		c.removeExpired()
		if int(c.count.Load()) >= c.maxSize {
			c.evictOne()
		}
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	if _, loaded := c.data.Swap(key, &memoryEntry{value: buf, expiresAt: time.Now().Add(ttl)}); !loaded {
		c.count.Add(1)
	}
	c.sets.Add(1)
	return nil
}

// Delete implements Cacher.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.remove(key)
	return nil
}

// DeleteByPrefix implements Cacher.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.data.Range(func(k, _ any) bool {
		if key := k.(string); strings.HasPrefix(key, prefix) {
			c.remove(key)
		}
		return true
	})
	return nil
}

// Clear implements Cacher.
func (c *MemoryCache) Clear(ctx context.Context) error {
	return c.DeleteByPrefix(ctx, "")
}

// Close stops the sweeper. Later calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats implements StatsProvider.
func (c *MemoryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Backend: "memory",
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   int(c.count.Load()),
		HitRate: hitRate(hits, misses),
	}
}

// ResetStats implements StatsProvider.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

func (c *MemoryCache) remove(key string) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.count.Add(-1)
	}
}

func (c *MemoryCache) removeExpired() {
	now := time.Now()
	c.data.Range(func(k, v any) bool {
		if now.After(v.(*memoryEntry).expiresAt) {
			c.remove(k.(string))
		}
		return true
	})
}

func (c *MemoryCache) evictOne() {
	var (
		victim  string
		soonest time.Time
	)
	c.data.Range(func(k, v any) bool {
		e := v.(*memoryEntry)
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k.(string), e.expiresAt
		}
		return true
	})
	if victim != "" {
		c.remove(victim)
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
