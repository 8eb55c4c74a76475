// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/ledgerline/site/internal/shortcode"
	"github.com/ledgerline/site/internal/store"
)

// UncategorizedSlug names the sitemap group of posts without a category.
const UncategorizedSlug = "uncategorized"

// StoreSitemapSource feeds the [sitemap] shortcode from categories and
// published posts.
type StoreSitemapSource struct {
	queries *store.Queries
}

// NewStoreSitemapSource creates a source reading through q.
func NewStoreSitemapSource(q *store.Queries) *StoreSitemapSource {
	return &StoreSitemapSource{queries: q}
}

// SitemapGroups returns one group per category in display order, followed by
// an uncategorized group when some published posts have no category.
func (s *StoreSitemapSource) SitemapGroups(ctx context.Context) ([]shortcode.SitemapGroup, error) {
	categories, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	posts, err := s.queries.ListAllPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}

	byCategory := make(map[int64][]shortcode.SitemapEntry)
	var loose []shortcode.SitemapEntry
	for _, p := range posts {
		e := shortcode.SitemapEntry{Title: p.Title, URL: "/blog/" + p.Slug}
		if p.CategoryID.Valid {
			byCategory[p.CategoryID.Int64] = append(byCategory[p.CategoryID.Int64], e)
		} else {
			loose = append(loose, e)
		}
	}

	groups := make([]shortcode.SitemapGroup, 0, len(categories)+1)
	for _, c := range categories {
		groups = append(groups, shortcode.SitemapGroup{
			Name:    c.Name,
			Slug:    c.Slug,
			URL:     "/category/" + c.Slug,
			Entries: byCategory[c.ID],
		})
	}
	if len(loose) > 0 {
		groups = append(groups, shortcode.SitemapGroup{
			Name:    "Uncategorized",
			Slug:    UncategorizedSlug,
			URL:     "/blog",
			Entries: loose,
		})
	}
	return groups, nil
}
