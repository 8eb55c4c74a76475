// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// descriptionPolicy allows the usual inline formatting in category
// descriptions.
var descriptionPolicy = bluemonday.UGCPolicy()

// CategoryInput is the editable part of a category. On update, nil fields
// keep their stored value.
type CategoryInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Position    *int64  `json:"position"`
}

// CategoryService manages post categories.
type CategoryService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(db *sql.DB, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{queries: store.New(db), logger: logger}
}

// List returns categories in display order.
func (s *CategoryService) List(ctx context.Context) ([]store.Category, error) {
	cats, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []store.Category{}
	}
	return cats, nil
}

// Get returns category id or ErrNotFound.
func (s *CategoryService) Get(ctx context.Context, id int64) (store.Category, error) {
	c, err := s.queries.GetCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return c, err
}

// GetBySlug returns the category with slug or ErrNotFound.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (store.Category, error) {
	c, err := s.queries.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return c, err
}

// Create stores a new category.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (store.Category, error) {
	var c store.Category
	if err := s.apply(ctx, &c, in); err != nil {
		return c, err
	}
	now := time.Now().UTC()
	created, err := s.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return created, fmt.Errorf("creating category: %w", err)
	}
	s.logger.Info("category created", "category", model.EventCategoryContent, "category_id", created.ID, "slug", created.Slug)
	return created, nil
}

// Update changes category id.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (store.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if err := s.apply(ctx, &c, in); err != nil {
		return c, err
	}
	updated, err := s.queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:          id,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return updated, fmt.Errorf("updating category %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes category id. Its posts become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.queries.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	s.logger.Info("category deleted", "category", model.EventCategoryContent, "category_id", id)
	return nil
}

func (s *CategoryService) apply(ctx context.Context, c *store.Category, in CategoryInput) error {
	c.Name = pick(in.Name, c.Name)
	if in.Slug != nil || c.Slug == "" {
		c.Slug = util.SlugOrTitle(pick(in.Slug, ""), c.Name)
	}
	if in.Description != nil {
		desc := strings.TrimSpace(descriptionPolicy.Sanitize(*in.Description))
		c.Description = util.NullStringFromValue(desc)
	}
	if in.Position != nil {
		c.Position = *in.Position
	}

	ve := &ValidationError{}
	checkTitle(ve, "name", c.Name)
	if c.Slug == UncategorizedSlug {
		ve.Add("slug", "is reserved")
	}
	if c.Position < 0 {
		ve.Add("position", "must not be negative")
	}
	if err := checkSlug(ctx, ve, c.Slug, c.ID, s.slugExists); err != nil {
		return err
	}
	return ve.Err()
}

func (s *CategoryService) slugExists(ctx context.Context, slug string, excludeID int64) (int64, error) {
	if excludeID == 0 {
		return s.queries.CategorySlugExists(ctx, slug)
	}
	return s.queries.CategorySlugExistsExcluding(ctx, store.CategorySlugExistsExcludingParams{Slug: slug, ID: excludeID})
}
