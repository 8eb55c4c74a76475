// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

const maxMetaDescription = 300

// PageInput is the editable part of a page. On update, nil fields keep their
// stored value.
type PageInput struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Content         *string `json:"content"`
	Format          *string `json:"format"`
	Status          *string `json:"status"`
	MetaDescription *string `json:"meta_description"`
}

// reservedPageSlugs are paths served by fixed routes.
var reservedPageSlugs = map[string]bool{
	"admin": true, "api": true, "blog": true, "category": true, "contact": true,
	"files": true, "login": true, "logout": true, "static": true, "uploads": true,
	"health": true,
}

// PageService manages standalone pages.
type PageService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewPageService creates a PageService.
func NewPageService(db *sql.DB, logger *slog.Logger) *PageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageService{queries: store.New(db), logger: logger}
}

// List returns a page of pages ordered by title, with the total count.
func (s *PageService) List(ctx context.Context, limit, offset int64) ([]store.Page, int64, error) {
	pages, err := s.queries.ListPages(ctx, store.ListPagesParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountPages(ctx)
	if err != nil {
		return nil, 0, err
	}
	if pages == nil {
		pages = []store.Page{}
	}
	return pages, total, nil
}

// ListPublished returns every published page ordered by title.
func (s *PageService) ListPublished(ctx context.Context) ([]store.Page, error) {
	pages, err := s.queries.ListPublishedPages(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []store.Page{}
	}
	return pages, nil
}

// Get returns page id or ErrNotFound.
func (s *PageService) Get(ctx context.Context, id int64) (store.Page, error) {
	p, err := s.queries.GetPageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("page %d: %w", id, ErrNotFound)
	}
	return p, err
}

// GetPublishedBySlug returns the published page with slug or ErrNotFound.
func (s *PageService) GetPublishedBySlug(ctx context.Context, slug string) (store.Page, error) {
	p, err := s.queries.GetPublishedPageBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	return p, err
}

// Create stores a new page written by authorID.
func (s *PageService) Create(ctx context.Context, authorID int64, in PageInput) (store.Page, error) {
	p := store.Page{Format: model.FormatHTML, Status: model.StatusDraft}
	if err := s.apply(ctx, &p, in); err != nil {
		return store.Page{}, err
	}

	now := time.Now().UTC()
	created, err := s.queries.CreatePage(ctx, store.CreatePageParams{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Format:          p.Format,
		Status:          p.Status,
		MetaDescription: p.MetaDescription,
		AuthorID:        authorID,
		PublishedAt:     p.PublishedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return created, fmt.Errorf("creating page: %w", err)
	}
	s.logger.Info("page created", "category", model.EventCategoryContent, "page_id", created.ID, "slug", created.Slug)
	return created, nil
}

// Update changes page id.
func (s *PageService) Update(ctx context.Context, id int64, in PageInput) (store.Page, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if err := s.apply(ctx, &p, in); err != nil {
		return p, err
	}
	updated, err := s.queries.UpdatePage(ctx, store.UpdatePageParams{
		ID:              id,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Format:          p.Format,
		Status:          p.Status,
		MetaDescription: p.MetaDescription,
		PublishedAt:     p.PublishedAt,
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return updated, fmt.Errorf("updating page %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes page id.
func (s *PageService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.queries.DeletePage(ctx, id); err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	s.logger.Info("page deleted", "category", model.EventCategoryContent, "page_id", id)
	return nil
}

func (s *PageService) apply(ctx context.Context, p *store.Page, in PageInput) error {
	p.Title = pick(in.Title, p.Title)
	if in.Content != nil {
		p.Content = *in.Content
	}
	p.Format = pick(in.Format, p.Format)
	p.Status = pick(in.Status, p.Status)
	p.MetaDescription = pick(in.MetaDescription, p.MetaDescription)
	if in.Slug != nil || p.Slug == "" {
		p.Slug = util.SlugOrTitle(pick(in.Slug, ""), p.Title)
	}

	ve := &ValidationError{}
	checkTitle(ve, "title", p.Title)
	if !model.IsValidFormat(p.Format) {
		ve.Add("format", "must be html or markdown")
	}
	if !model.IsValidPageStatus(p.Status) {
		ve.Add("status", "must be draft or published")
	}
	if utf8.RuneCountInString(p.MetaDescription) > maxMetaDescription {
		ve.Add("meta_description", fmt.Sprintf("must be at most %d characters", maxMetaDescription))
	}
	if reservedPageSlugs[p.Slug] {
		ve.Add("slug", "is reserved")
	}
	if err := checkSlug(ctx, ve, p.Slug, p.ID, s.slugExists); err != nil {
		return err
	}
	if err := ve.Err(); err != nil {
		return err
	}

	if p.Status == model.StatusPublished {
		if !p.PublishedAt.Valid {
			p.PublishedAt = sql.NullTime{Time: time.Now().UTC().Truncate(time.Second), Valid: true}
		}
	} else {
		p.PublishedAt = sql.NullTime{}
	}
	return nil
}

func (s *PageService) slugExists(ctx context.Context, slug string, excludeID int64) (int64, error) {
	if excludeID == 0 {
		return s.queries.PageSlugExists(ctx, slug)
	}
	return s.queries.PageSlugExistsExcluding(ctx, store.PageSlugExistsExcludingParams{Slug: slug, ID: excludeID})
}
