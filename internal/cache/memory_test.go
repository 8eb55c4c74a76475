// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(missing) err = %v, want ErrCacheMiss", err)
	}

	value := []byte("tree")
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "tree" {
		t.Errorf("Get = %q, stored value must be a copy", got)
	}
	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "tree" {
		t.Errorf("returned slice must be a copy, got %q", again)
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 || s.Items != 1 || s.Backend != "memory" {
		t.Errorf("Stats = %+v", s)
	}
	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("ResetStats left %+v", s)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry err = %v, want ErrCacheMiss", err)
	}
	if n := c.Stats().Items; n != 0 {
		t.Errorf("Items = %d after expiry", n)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "menu:tree:slug:main", []byte("a"), 0)
	_ = c.Set(ctx, "menu:tree:id:1", []byte("b"), 0)
	_ = c.Set(ctx, "other", []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, "menu:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, err := c.Get(ctx, "menu:tree:id:1"); !errors.Is(err, ErrCacheMiss) {
		t.Error("prefixed key survived")
	}
	if _, err := c.Get(ctx, "other"); err != nil {
		t.Errorf("unrelated key removed: %v", err)
	}

	_ = c.Delete(ctx, "other")
	if n := c.Stats().Items; n != 0 {
		t.Errorf("Items = %d, want 0", n)
	}
}

func TestMemoryCache_MaxSizeEvicts(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 2})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "soon", []byte("1"), time.Minute)
	_ = c.Set(ctx, "later", []byte("2"), time.Hour)
	_ = c.Set(ctx, "new", []byte("3"), time.Hour)

	if n := c.Stats().Items; n != 2 {
		t.Errorf("Items = %d, want 2", n)
	}
	if _, err := c.Get(ctx, "soon"); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry closest to expiry should be evicted")
	}

	// overwriting an existing key never evicts
	_ = c.Set(ctx, "later", []byte("2b"), time.Hour)
	if _, err := c.Get(ctx, "new"); err != nil {
		t.Errorf("overwrite evicted a neighbour: %v", err)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{CleanupInterval: time.Millisecond})
	_ = c.Close()
	_ = c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set err = %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get err = %v", err)
	}
	if err := c.Clear(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Clear err = %v", err)
	}
}
