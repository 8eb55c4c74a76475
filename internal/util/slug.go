// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small helpers shared by the service and handler
// layers: slugs, identifier parsing, nullable column conversion and
// upload path safety.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds generated slugs so URLs stay readable.
const MaxSlugLength = 120

var (
	slugStrip      = regexp.MustCompile(`[^a-z0-9-]+`)
	slugCollapse   = regexp.MustCompile(`-{2,}`)
	slugSeparators = strings.NewReplacer(" ", "-", "_", "-", "/", "-", ".", "-", "&", "-and-")
)

// Slugify turns a title such as "Tax & VAT Services" into "tax-and-vat-services".
// Accents are folded to their base letter before stripping.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	out := slugSeparators.Replace(strings.ToLower(strings.TrimSpace(folded)))
	out = slugStrip.ReplaceAllString(out, "")
	out = slugCollapse.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-")
	}
	return out
}

// SlugOrTitle returns slug when it is set, otherwise a slug derived from title.
func SlugOrTitle(slug, title string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}
	return Slugify(title)
}

// IsValidSlug reports whether s is lowercase alphanumerics separated by
// single hyphens.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
