// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting and response headers.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/session"
	"github.com/ledgerline/site/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// UserLoader looks up the account behind a session.
type UserLoader interface {
	Get(ctx context.Context, id int64) (store.User, error)
}

// LoadUser puts the logged-in user into the request context. A session that
// points at a deleted account is cleared and the request continues anonymous.
func LoadUser(sm *scs.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := session.UserID(r.Context(), sm)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					sm.Remove(r.Context(), session.KeyUserID)
				} else {
					slog.Error("loading session user", "user_id", userID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests: API paths get a 401 JSON error,
// pages are redirected to the login form.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			denyAnonymous(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func denyAnonymous(w http.ResponseWriter, r *http.Request) {
	if IsAPIRequest(r) {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Login required", nil)
		return
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

// IsAPIRequest reports whether r targets the JSON API.
func IsAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns a pointer to the current user's ID, or nil. Event log
// calls take the pointer form.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// RequestPath stores the request path in the context for error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// roleLevel returns a numeric level for role hierarchy. Unknown roles get 0.
func roleLevel(role string) int {
	switch role {
	case model.RoleAdmin:
		return 2
	case model.RoleEditor:
		return 1
	default:
		return 0
	}
}

// RequireRole requires a minimum role: admin > editor. Denials are logged and,
// when events is non-nil, written to the event log.
func RequireRole(minRole string, events *service.EventService) func(http.Handler) http.Handler {
	minLevel := roleLevel(minRole)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				denyAnonymous(w, r)
				return
			}

			if roleLevel(user.Role) < minLevel {
				slog.Info("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_role", minRole,
				)
				if events != nil {
					_ = events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: insufficient permissions",
						GetUserIDPtr(r), ClientIP(r), map[string]any{
							"method":        r.Method,
							"path":          r.URL.Path,
							"required_role": minRole,
						})
				}
				if IsAPIRequest(r) {
					WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
					return
				}
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(model.RoleAdmin, events).
func RequireAdmin(events *service.EventService) func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin, events)
}
