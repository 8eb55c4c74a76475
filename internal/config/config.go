// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads runtime settings from LEDGERLINE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets are example values from .env.example and the docs.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum session secret size in bytes.
const MinSessionSecretLength = 32

// Config holds the application configuration.
type Config struct {
	DBPath        string `env:"LEDGERLINE_DB_PATH" envDefault:"./data/ledgerline.db"`
	SessionSecret string `env:"LEDGERLINE_SESSION_SECRET,required"`
	ServerHost    string `env:"LEDGERLINE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LEDGERLINE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LEDGERLINE_ENV" envDefault:"development"`
	LogLevel      string `env:"LEDGERLINE_LOG_LEVEL" envDefault:"info"`

	SiteName   string `env:"LEDGERLINE_SITE_NAME" envDefault:"Ledgerline Accounting"`
	SiteURL    string `env:"LEDGERLINE_SITE_URL" envDefault:"http://localhost:8080"`
	UploadsDir string `env:"LEDGERLINE_UPLOADS_DIR" envDefault:"./uploads"`

	// BehindProxy trusts X-Real-IP and X-Forwarded-For for the client
	// address. Leave it off unless a reverse proxy sets those headers.
	BehindProxy bool `env:"LEDGERLINE_BEHIND_PROXY" envDefault:"false"`

	// Menu tree cache. Memory unless RedisURL is set.
	RedisURL     string `env:"LEDGERLINE_REDIS_URL"`
	CachePrefix  string `env:"LEDGERLINE_CACHE_PREFIX" envDefault:"ledgerline:"`
	CacheTTL     int    `env:"LEDGERLINE_CACHE_TTL" envDefault:"3600"`
	CacheMaxSize int    `env:"LEDGERLINE_CACHE_MAX_SIZE" envDefault:"10000"`

	// ShortcodeAutoProcess expands directives as soon as content is loaded.
	ShortcodeAutoProcess bool `env:"LEDGERLINE_SHORTCODE_AUTO_PROCESS" envDefault:"true"`

	// GeoIPDBPath points at a GeoLite2-Country .mmdb file. Contact messages
	// get no country when empty.
	GeoIPDBPath string `env:"LEDGERLINE_GEOIP_DB_PATH"`

	// ContactRateLimit is contact submissions allowed per IP per hour.
	ContactRateLimit int `env:"LEDGERLINE_CONTACT_RATE_LIMIT" envDefault:"5"`

	// Seeding creates the first admin plus default menus on start.
	// An empty AdminPassword is generated and logged once.
	DoSeed        bool   `env:"LEDGERLINE_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"LEDGERLINE_ADMIN_EMAIL" envDefault:"admin@ledgerline.local"`
	AdminPassword string `env:"LEDGERLINE_ADMIN_PASSWORD"`
}

// IsDevelopment returns true when running with LEDGERLINE_ENV=development.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns host:port for the HTTP listener.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache reports whether a Redis URL was configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration converts CacheTTL seconds to a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// BaseURL returns SiteURL without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.SiteURL, "/")
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("LEDGERLINE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("LEDGERLINE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("LEDGERLINE_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("LEDGERLINE_SERVER_PORT out of range: %d", c.ServerPort)
	}
	if u, err := url.Parse(c.SiteURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LEDGERLINE_SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}
	if c.CacheTTL < 0 || c.CacheMaxSize < 0 {
		return fmt.Errorf("LEDGERLINE_CACHE_TTL and LEDGERLINE_CACHE_MAX_SIZE must not be negative")
	}
	if c.AdminPassword != "" && len(c.AdminPassword) < 10 {
		return fmt.Errorf("LEDGERLINE_ADMIN_PASSWORD must be at least 10 characters")
	}
	if c.ContactRateLimit < 1 {
		return fmt.Errorf("LEDGERLINE_CONTACT_RATE_LIMIT must be positive, got %d", c.ContactRateLimit)
	}
	return nil
}

// hasMinimumEntropy wants at least three of: lowercase, uppercase, digits, symbols.
func hasMinimumEntropy(s string) bool {
	classes := 0
	for _, set := range []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	} {
		if strings.ContainsAny(s, set) {
			classes++
		}
	}
	return classes >= 3
}
