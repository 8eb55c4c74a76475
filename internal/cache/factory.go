// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"

	"github.com/ledgerline/site/internal/model"
)

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL selects Redis when set, e.g. redis://localhost:6379/0.
	RedisURL        string
	Prefix          string
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// New returns a Redis cache when RedisURL is set, otherwise a memory cache.
// An unreachable Redis falls back to memory with a warning so the site
// still starts.
func New(cfg Config, logger *slog.Logger) Cacher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			logger.Info("using redis cache", "prefix", cfg.Prefix)
			return rc
		}
		logger.Warn("redis cache unavailable, falling back to memory",
			"category", model.EventCategorySystem, "error", err)
	}

	interval := cfg.CleanupInterval
	if interval == 0 {
		interval = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: interval,
	})
}
