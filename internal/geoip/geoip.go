// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves client IPs to ISO country codes with a MaxMind
// GeoLite2-Country database.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// CountryLocal is returned for loopback and private addresses.
const CountryLocal = "LOCAL"

// ErrNoDatabase is returned by Reload before a database path was opened.
var ErrNoDatabase = errors.New("geoip: no database configured")

var privateNets = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10",
	"fc00::/7",
	"fe80::/10",
)

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Lookup is safe for concurrent use. The zero value answers only LOCAL or "".
type Lookup struct {
	mu      sync.RWMutex
	reader  *maxminddb.Reader
	path    string
	modTime time.Time
}

// New returns a Lookup with no database.
func New() *Lookup {
	return &Lookup{}
}

// Open loads the database at path. An empty path leaves lookups disabled.
func (g *Lookup) Open(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.path = path
	if path == "" {
		return nil
	}
	return g.load()
}

// Reload reopens the database when the file changed since it was loaded.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.path == "" {
		return ErrNoDatabase
	}
	return g.load()
}

// load requires g.mu held for writing.
func (g *Lookup) load() error {
	info, err := os.Stat(g.path)
	if err != nil {
		return fmt.Errorf("geoip: %w", err)
	}
	if g.reader != nil && info.ModTime().Equal(g.modTime) {
		return nil
	}

	reader, err := maxminddb.Open(g.path)
	if err != nil {
		return fmt.Errorf("geoip: opening %s: %w", g.path, err)
	}
	if g.reader != nil {
		_ = g.reader.Close()
	}
	g.reader = reader
	g.modTime = info.ModTime()
	return nil
}

// Enabled reports whether a database is loaded.
func (g *Lookup) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reader != nil
}

// LookupCountry returns the country code of ip, CountryLocal for private
// ranges, or "" when the address is invalid or unknown.
func (g *Lookup) LookupCountry(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || isPrivate(parsed) {
		return CountryLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.reader == nil {
		return ""
	}

	var rec countryRecord
	if err := g.reader.Lookup(parsed, &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}

// Close releases the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.reader == nil {
		return nil
	}
	err := g.reader.Close()
	g.reader = nil
	return err
}

func isPrivate(ip net.IP) bool {
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDRs(blocks ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(blocks))
	for _, b := range blocks {
		_, n, err := net.ParseCIDR(b)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}
