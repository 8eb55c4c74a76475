// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager used for admin
// logins and flash messages.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyUserID = "user_id"
	KeyFlash  = "flash"
)

// Lifetime is how long a login lasts.
const Lifetime = 24 * time.Hour

// New creates a session manager backed by the sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, 30*time.Minute)

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	if !isDev {
		// __Host- requires Secure, Path=/ and no Domain
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Secure = true
	}
	return sm
}

// Login renews the token to prevent fixation and stores the user id.
func Login(ctx context.Context, sm *scs.SessionManager, userID int64) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, userID)
	return nil
}

// Logout destroys the session.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the logged-in user id, or 0.
func UserID(ctx context.Context, sm *scs.SessionManager) int64 {
	return sm.GetInt64(ctx, KeyUserID)
}

// SetFlash stores a one-time message for the next page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, msg string) {
	sm.Put(ctx, KeyFlash, msg)
}

// PopFlash returns and clears the flash message.
func PopFlash(ctx context.Context, sm *scs.SessionManager) string {
	return sm.PopString(ctx, KeyFlash)
}
