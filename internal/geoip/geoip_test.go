// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupCountryWithoutDatabase(t *testing.T) {
	g := New()
	if err := g.Open(""); err != nil {
		t.Fatalf("Open(\"\") = %v", err)
	}
	if g.Enabled() {
		t.Error("lookup without a database should be disabled")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", CountryLocal},
		{"::1", CountryLocal},
		{"10.1.2.3", CountryLocal},
		{"172.20.0.9", CountryLocal},
		{"192.168.1.20", CountryLocal},
		{"fd00::1", CountryLocal},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := g.LookupCountry(tt.ip); got != tt.want {
			t.Errorf("LookupCountry(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	g := New()
	if err := g.Reload(); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Reload before Open = %v, want ErrNoDatabase", err)
	}

	if err := g.Open(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Error("Open on a missing file should fail")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.mmdb")
	if err := os.WriteFile(bogus, []byte("not a maxmind database"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := g.Open(bogus); err == nil {
		t.Error("Open on a corrupt file should fail")
	}
	if g.Enabled() {
		t.Error("failed Open must not enable lookups")
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
