// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"html"
	"strings"
	"unicode/utf8"
)

// DescriptionLength is the meta description budget search engines display.
const DescriptionLength = 160

// Describe returns the first non-empty candidate as a plain-text meta
// description, shortened at a word boundary. Candidates may contain HTML.
func Describe(candidates ...string) string {
	for _, c := range candidates {
		if text := stripHTML(c); text != "" {
			return truncateText(text, DescriptionLength)
		}
	}
	return ""
}

// CanonicalURL joins siteURL and path into an absolute URL.
func CanonicalURL(siteURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(siteURL, "/") + path
}

// stripHTML removes tags and shortcode directives and collapses whitespace.
func stripHTML(s string) string {
	var result strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<' || r == '[':
			depth++
		case (r == '>' || r == ']') && depth > 0:
			depth--
			result.WriteRune(' ')
		case depth == 0:
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(result.String())), " ")
}

// truncateText cuts text to maxLen runes, backing up to a word boundary.
func truncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	truncated := string(runes[:maxLen])
	if i := strings.LastIndex(truncated, " "); i > len(truncated)/2 {
		truncated = truncated[:i]
	}
	return strings.TrimSpace(truncated) + "..."
}
