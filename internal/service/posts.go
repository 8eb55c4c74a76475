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

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// PostInput is the editable part of a post. On update, nil fields keep their
// stored value. A CategoryID of 0 clears the category.
type PostInput struct {
	Title      *string    `json:"title"`
	Slug       *string    `json:"slug"`
	Excerpt    *string    `json:"excerpt"`
	Content    *string    `json:"content"`
	Format     *string    `json:"format"`
	Status     *string    `json:"status"`
	CategoryID *int64     `json:"category_id"`
	PublishAt  *time.Time `json:"publish_at"`
}

// PostService manages blog posts.
type PostService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewPostService creates a PostService.
func NewPostService(db *sql.DB, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{queries: store.New(db), logger: logger, now: time.Now}
}

// List returns a page of all posts, newest first, with the total count.
func (s *PostService) List(ctx context.Context, limit, offset int64) ([]store.Post, int64, error) {
	posts, err := s.queries.ListPosts(ctx, store.ListPostsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountPosts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return nonNilPosts(posts), total, nil
}

// ListPublished returns a page of published posts, most recent first.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int64) ([]store.Post, int64, error) {
	posts, err := s.queries.ListPublishedPosts(ctx, store.ListPublishedPostsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountPublishedPosts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return nonNilPosts(posts), total, nil
}

// ListAllPublished returns every published post, for the XML sitemap.
func (s *PostService) ListAllPublished(ctx context.Context) ([]store.Post, error) {
	posts, err := s.queries.ListAllPublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

// ListPublishedByCategory returns a page of published posts in categoryID.
func (s *PostService) ListPublishedByCategory(ctx context.Context, categoryID, limit, offset int64) ([]store.Post, int64, error) {
	cat := sql.NullInt64{Int64: categoryID, Valid: true}
	posts, err := s.queries.ListPublishedPostsByCategory(ctx, store.ListPublishedPostsByCategoryParams{
		CategoryID: cat, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountPublishedPostsByCategory(ctx, cat)
	if err != nil {
		return nil, 0, err
	}
	return nonNilPosts(posts), total, nil
}

// Get returns post id or ErrNotFound.
func (s *PostService) Get(ctx context.Context, id int64) (store.Post, error) {
	p, err := s.queries.GetPostByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return p, err
}

// GetPublishedBySlug returns the published post with slug or ErrNotFound.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (store.Post, error) {
	p, err := s.queries.GetPublishedPostBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return p, err
}

// Create stores a new post written by authorID.
func (s *PostService) Create(ctx context.Context, authorID int64, in PostInput) (store.Post, error) {
	var p store.Post
	p.Format = model.FormatHTML
	p.Status = model.StatusDraft
	if err := s.apply(ctx, &p, in); err != nil {
		return store.Post{}, err
	}

	now := s.now().UTC()
	created, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Format:      p.Format,
		Status:      p.Status,
		CategoryID:  p.CategoryID,
		AuthorID:    authorID,
		PublishAt:   p.PublishAt,
		PublishedAt: p.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return created, fmt.Errorf("creating post: %w", err)
	}
	s.logger.Info("post created", "category", model.EventCategoryContent, "post_id", created.ID, "status", created.Status)
	return created, nil
}

// Update changes post id.
func (s *PostService) Update(ctx context.Context, id int64, in PostInput) (store.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if err := s.apply(ctx, &p, in); err != nil {
		return p, err
	}

	updated, err := s.queries.UpdatePost(ctx, store.UpdatePostParams{
		ID:          id,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Format:      p.Format,
		Status:      p.Status,
		CategoryID:  p.CategoryID,
		PublishAt:   p.PublishAt,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return updated, fmt.Errorf("updating post %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes post id.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.queries.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	s.logger.Info("post deleted", "category", model.EventCategoryContent, "post_id", id)
	return nil
}

// apply merges in over p and validates the result. A scheduled post whose
// publish time has already passed is published right away.
func (s *PostService) apply(ctx context.Context, p *store.Post, in PostInput) error {
	p.Title = pick(in.Title, p.Title)
	p.Excerpt = pick(in.Excerpt, p.Excerpt)
	if in.Content != nil {
		p.Content = *in.Content
	}
	p.Format = pick(in.Format, p.Format)
	p.Status = pick(in.Status, p.Status)
	if in.Slug != nil || p.Slug == "" {
		p.Slug = util.SlugOrTitle(pick(in.Slug, ""), p.Title)
	}
	if in.CategoryID != nil {
		p.CategoryID = sql.NullInt64{Int64: *in.CategoryID, Valid: *in.CategoryID > 0}
	}
	if in.PublishAt != nil {
		p.PublishAt = sql.NullTime{Time: in.PublishAt.UTC().Truncate(time.Second), Valid: true}
	}

	ve := &ValidationError{}
	checkTitle(ve, "title", p.Title)
	if !model.IsValidFormat(p.Format) {
		ve.Add("format", "must be html or markdown")
	}
	if !model.IsValidPostStatus(p.Status) {
		ve.Add("status", "must be draft, published or scheduled")
	}
	if p.Status == model.StatusScheduled && !p.PublishAt.Valid {
		ve.Add("publish_at", "is required for scheduled posts")
	}
	if err := checkSlug(ctx, ve, p.Slug, p.ID, s.slugExists); err != nil {
		return err
	}
	if p.CategoryID.Valid {
		if _, err := s.queries.GetCategoryByID(ctx, p.CategoryID.Int64); errors.Is(err, sql.ErrNoRows) {
			ve.Add("category_id", "does not exist")
		} else if err != nil {
			return err
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}

	now := s.now().UTC().Truncate(time.Second)
	if p.Status == model.StatusScheduled && !p.PublishAt.Time.After(now) {
		p.Status = model.StatusPublished
	}
	switch p.Status {
	case model.StatusPublished:
		if !p.PublishedAt.Valid {
			p.PublishedAt = sql.NullTime{Time: now, Valid: true}
		}
	default:
		p.PublishedAt = sql.NullTime{}
	}
	return nil
}

func (s *PostService) slugExists(ctx context.Context, slug string, excludeID int64) (int64, error) {
	if excludeID == 0 {
		return s.queries.PostSlugExists(ctx, slug)
	}
	return s.queries.PostSlugExistsExcluding(ctx, store.PostSlugExistsExcludingParams{Slug: slug, ID: excludeID})
}

func nonNilPosts(posts []store.Post) []store.Post {
	if posts == nil {
		return []store.Post{}
	}
	return posts
}
