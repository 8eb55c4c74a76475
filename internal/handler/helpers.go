// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the public site, the login form and the admin
// pages.
package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// ParseIDParam parses the {id} URL parameter as a positive integer.
func ParseIDParam(r *http.Request) (int64, error) {
	return util.ParseID(chi.URLParam(r, "id"))
}

// PostSummary is a post as shown in listings.
type PostSummary struct {
	Title        string
	Slug         string
	Excerpt      string
	PublishedAt  sql.NullTime
	CategoryName string
	CategorySlug string
}

// categoryIndex maps category id to category.
func categoryIndex(categories []store.Category) map[int64]store.Category {
	index := make(map[int64]store.Category, len(categories))
	for _, c := range categories {
		index[c.ID] = c
	}
	return index
}

// summarizePosts attaches category names to posts.
func summarizePosts(posts []store.Post, categories map[int64]store.Category) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		s := PostSummary{
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     p.Excerpt,
			PublishedAt: p.PublishedAt,
		}
		if p.CategoryID.Valid {
			if c, ok := categories[p.CategoryID.Int64]; ok {
				s.CategoryName = c.Name
				s.CategorySlug = c.Slug
			}
		}
		out = append(out, s)
	}
	return out
}

// loadCategoryIndex lists all categories. A failure only costs the category
// links, so it is logged and an empty index returned.
func loadCategoryIndex(ctx context.Context, categories *service.CategoryService) map[int64]store.Category {
	list, err := categories.List(ctx)
	if err != nil {
		slog.Error("listing categories", "error", err)
		return map[int64]store.Category{}
	}
	return categoryIndex(list)
}

// safeRedirectTarget accepts local paths only; anything else becomes fallback.
func safeRedirectTarget(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return fallback
	}
	return next
}
