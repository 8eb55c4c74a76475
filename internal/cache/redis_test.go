// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// redisURL skips the test unless LEDGERLINE_TEST_REDIS_URL is set.
func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("LEDGERLINE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LEDGERLINE_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Roundtrip(t *testing.T) {
	c, err := NewRedisCacheFromURL(redisURL(t), "ledgerline-test:", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCacheFromURL: %v", err)
	}
	defer func() { _ = c.Close() }()
	ctx := context.Background()
	_ = c.Clear(ctx)

	if err := c.Set(ctx, "menu:tree:slug:main", []byte(`{"menu_id":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "menu:tree:slug:main")
	if err != nil || string(got) != `{"menu_id":1}` {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}

	if err := c.DeleteByPrefix(ctx, "menu:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, err := c.Get(ctx, "menu:tree:slug:main"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after delete err = %v", err)
	}
	if s := c.Stats(); s.Backend != "redis" || s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
