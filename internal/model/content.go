// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Content statuses. Pages use draft and published; posts may also be scheduled.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusScheduled = "scheduled"
)

// Content formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// HomePageSlug is the page rendered above the latest posts on the home page.
const HomePageSlug = "home"

// IsValidPostStatus checks a post status.
func IsValidPostStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusScheduled
}

// IsValidPageStatus checks a page status.
func IsValidPageStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}

// IsValidFormat checks a content format.
func IsValidFormat(f string) bool {
	return f == FormatHTML || f == FormatMarkdown
}
