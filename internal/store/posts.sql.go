// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const postColumns = `id, title, slug, excerpt, content, format, status, category_id, author_id,
	publish_at, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Content,
		&p.Format,
		&p.Status,
		&p.CategoryID,
		&p.AuthorID,
		&p.PublishAt,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

type CreatePostParams struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Format      string
	Status      string
	CategoryID  sql.NullInt64
	AuthorID    int64
	PublishAt   sql.NullTime
	PublishedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, slug, excerpt, content, format, status, category_id, author_id,
			publish_at, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+postColumns,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.Format,
		arg.Status,
		arg.CategoryID,
		arg.AuthorID,
		arg.PublishAt,
		arg.PublishedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPost(row)
}

func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = 'published'`, slug))
}

type ListPostsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

type ListPublishedPostsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListPublishedPosts(ctx context.Context, arg ListPublishedPostsParams) ([]Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE status = 'published'
		ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = 'published'`).Scan(&n)
	return n, err
}

// ListAllPublishedPosts returns every published post ordered by title, for
// sitemaps and category listings.
func (q *Queries) ListAllPublishedPosts(ctx context.Context) ([]Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE status = 'published' ORDER BY title, id`)
}

type ListPublishedPostsByCategoryParams struct {
	CategoryID sql.NullInt64
	Limit      int64
	Offset     int64
}

func (q *Queries) ListPublishedPostsByCategory(ctx context.Context, arg ListPublishedPostsByCategoryParams) ([]Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE status = 'published' AND category_id = ?
		ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.CategoryID, arg.Limit, arg.Offset)
}

func (q *Queries) PostSlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

type PostSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) PostSlugExistsExcluding(ctx context.Context, arg PostSlugExistsExcludingParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n, err
}

type UpdatePostParams struct {
	ID          int64
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Format      string
	Status      string
	CategoryID  sql.NullInt64
	PublishAt   sql.NullTime
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, format = ?, status = ?,
			category_id = ?, publish_at = ?, published_at = ?, updated_at = ?
		WHERE id = ? RETURNING `+postColumns,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.Format,
		arg.Status,
		arg.CategoryID,
		arg.PublishAt,
		arg.PublishedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPost(row)
}

func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// ListScheduledPostsDue returns scheduled posts whose publish_at is at or before now.
func (q *Queries) ListScheduledPostsDue(ctx context.Context, now time.Time) ([]Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		WHERE status = 'scheduled' AND publish_at IS NOT NULL AND publish_at <= ?
		ORDER BY publish_at, id`,
		now)
}

type PublishPostParams struct {
	ID          int64
	PublishedAt time.Time
}

func (q *Queries) PublishPost(ctx context.Context, arg PublishPostParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = 'published', published_at = ?, updated_at = ? WHERE id = ?`,
		arg.PublishedAt, arg.PublishedAt, arg.ID)
	return err
}

func (q *Queries) CountPublishedPostsByCategory(ctx context.Context, categoryID sql.NullInt64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status = 'published' AND category_id = ?`, categoryID).Scan(&n)
	return n, err
}
