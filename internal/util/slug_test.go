// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Payroll Services", "payroll-services"},
		{"ampersand", "Tax & VAT", "tax-and-vat"},
		{"punctuation", "Year-end, closing!", "year-end-closing"},
		{"accents", "Société Générale", "societe-generale"},
		{"underscores and dots", "q1_report.2026", "q1-report-2026"},
		{"surrounding space", "  About us  ", "about-us"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	got := Slugify(strings.Repeat("ledger ", 40))
	if len(got) > MaxSlugLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with hyphen", got)
	}
}

func TestSlugOrTitle(t *testing.T) {
	if got := SlugOrTitle("custom", "Ignored Title"); got != "custom" {
		t.Errorf("got %q, want custom", got)
	}
	if got := SlugOrTitle("  ", "Audit Checklist"); got != "audit-checklist" {
		t.Errorf("got %q, want audit-checklist", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"services", true},
		{"tax-advice-2026", true},
		{"", false},
		{"Services", false},
		{"-lead", false},
		{"trail-", false},
		{"double--hyphen", false},
		{"with space", false},
		{"über", false},
		{strings.Repeat("a", MaxSlugLength+1), false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.input); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
