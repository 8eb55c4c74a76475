// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledgerline/site/internal/util"
)

const maxTitleLength = 200

// slugChecker counts rows other than excludeID that already use slug.
type slugChecker func(ctx context.Context, slug string, excludeID int64) (int64, error)

// checkSlug validates slug format and uniqueness into ve.
func checkSlug(ctx context.Context, ve *ValidationError, slug string, excludeID int64, exists slugChecker) error {
	if !util.IsValidSlug(slug) {
		ve.Add("slug", "must contain only lowercase letters, digits and single hyphens")
		return nil
	}
	n, err := exists(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("checking slug: %w", err)
	}
	if n > 0 {
		ve.Add("slug", "already exists")
	}
	return nil
}

func checkTitle(ve *ValidationError, field, title string) {
	if title == "" {
		ve.Add(field, "is required")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
}

// pick returns *p trimmed when set, otherwise fallback.
func pick(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return strings.TrimSpace(*p)
}
