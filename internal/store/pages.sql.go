// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const pageColumns = `id, title, slug, content, format, status, meta_description, author_id,
	published_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Format,
		&p.Status,
		&p.MetaDescription,
		&p.AuthorID,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) queryPages(ctx context.Context, query string, args ...any) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

type CreatePageParams struct {
	Title           string
	Slug            string
	Content         string
	Format          string
	Status          string
	MetaDescription string
	AuthorID        int64
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO pages (title, slug, content, format, status, meta_description, author_id,
			published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+pageColumns,
		arg.Title,
		arg.Slug,
		arg.Content,
		arg.Format,
		arg.Status,
		arg.MetaDescription,
		arg.AuthorID,
		arg.PublishedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPage(row)
}

func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
}

func (q *Queries) GetPublishedPageBySlug(ctx context.Context, slug string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE slug = ? AND status = 'published'`, slug))
}

type ListPagesParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListPages(ctx context.Context, arg ListPagesParams) ([]Page, error) {
	return q.queryPages(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY title, id LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

func (q *Queries) ListPublishedPages(ctx context.Context) ([]Page, error) {
	return q.queryPages(ctx, `SELECT `+pageColumns+` FROM pages WHERE status = 'published' ORDER BY title, id`)
}

func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}

func (q *Queries) PageSlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

type PageSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) PageSlugExistsExcluding(ctx context.Context, arg PageSlugExistsExcludingParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n, err
}

type UpdatePageParams struct {
	ID              int64
	Title           string
	Slug            string
	Content         string
	Format          string
	Status          string
	MetaDescription string
	PublishedAt     sql.NullTime
	UpdatedAt       time.Time
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE pages SET title = ?, slug = ?, content = ?, format = ?, status = ?, meta_description = ?,
			published_at = ?, updated_at = ?
		WHERE id = ? RETURNING `+pageColumns,
		arg.Title,
		arg.Slug,
		arg.Content,
		arg.Format,
		arg.Status,
		arg.MetaDescription,
		arg.PublishedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPage(row)
}

func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}
