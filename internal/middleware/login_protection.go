// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ledgerline/site/internal/model"
)

// maxLockout caps the exponential lockout.
const maxLockout = 24 * time.Hour

// LoginProtection combines a per-IP rate limit on the login form with a
// per-account lockout after repeated failures.
type LoginProtection struct {
	ip *RateLimiter

	mu       sync.Mutex
	attempts map[string]*loginAttempt

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
	now               func() time.Time
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // doubles the next lockout
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account.
	MaxFailedAttempts int
	// LockoutDuration doubles with each repeated lockout.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a LoginProtection; zero config fields take the
// defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ip:                NewRateLimiter("login", cfg.IPRateLimit, cfg.IPBurst),
		attempts:          make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
	}
}

// RateLimiter returns the per-IP limiter for mounting on the login route.
func (lp *LoginProtection) RateLimiter() *RateLimiter {
	return lp.ip
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	attempt, ok := lp.attempts[accountKey(email)]
	if !ok {
		return false, 0
	}
	now := lp.now()
	if now.Before(attempt.lockedUntil) {
		return true, attempt.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed login and reports a lockout if it triggered one.
func (lp *LoginProtection) RecordFailure(email string) (bool, time.Duration) {
	key := accountKey(email)
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := lp.now()
	attempt, ok := lp.attempts[key]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		if !ok {
			attempt = &loginAttempt{}
			lp.attempts[key] = attempt
		}
		attempt.count = 1
		attempt.firstFailed = now
		return lp.lockIfExceeded(key, attempt, now)
	}

	attempt.count++
	return lp.lockIfExceeded(key, attempt, now)
}

func (lp *LoginProtection) lockIfExceeded(key string, attempt *loginAttempt, now time.Time) (bool, time.Duration) {
	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	d := lp.lockoutDuration
	for i := 0; i < attempt.lockouts && d < maxLockout; i++ {
		d *= 2
	}
	if d > maxLockout {
		d = maxLockout
	}

	attempt.lockedUntil = now.Add(d)
	attempt.lockouts++
	attempt.count = 0
	slog.Warn("account locked after failed logins",
		"category", model.EventCategoryAuth,
		"email", key,
		"lockouts", attempt.lockouts,
		"duration", d.String(),
	)
	return true, d
}

// RecordSuccess clears the failure history of email.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.attempts, accountKey(email))
}

// RemainingAttempts returns how many failures email has left before a lockout.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	attempt, ok := lp.attempts[accountKey(email)]
	if !ok || lp.now().Sub(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-attempt.count, 0)
}

// Prune drops expired entries. main calls it from the scheduler.
func (lp *LoginProtection) Prune() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := lp.now()
	for key, attempt := range lp.attempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.attempts, key)
		}
	}
}
