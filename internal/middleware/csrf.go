// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"filippo.io/csrf/gorilla"

	"github.com/ledgerline/site/internal/model"
)

// CSRFConfig holds configuration for CSRF protection. filippo.io/csrf checks
// Fetch metadata headers, so there is no token cookie to configure.
type CSRFConfig struct {
	// AuthKey is kept for the gorilla-compatible constructor; the session
	// secret is passed in.
	AuthKey []byte

	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig trusts the configured site origin, plus localhost in
// development.
func DefaultCSRFConfig(authKey []byte, siteURL string, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, u.Host)
	}
	if isDev {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, "localhost:8080", "127.0.0.1:8080")
	}
	return cfg
}

// CSRF rejects cross-origin state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler))}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"category", model.EventCategoryAuth,
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	if IsAPIRequest(r) {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "Cross-origin request rejected", nil)
		return
	}
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
