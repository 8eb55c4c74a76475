// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const categoryColumns = `id, name, slug, description, position, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description sql.NullString
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug, description, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.Description, arg.Position, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanCategory(row)
}

func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug))
}

// ListCategories returns categories in display order (position, then name).
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY position, name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

type CategorySlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) CategorySlugExistsExcluding(ctx context.Context, arg CategorySlugExistsExcludingParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n, err
}

type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description sql.NullString
	Position    int64
	UpdatedAt   time.Time
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, position = ?, updated_at = ?
		WHERE id = ? RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.Description, arg.Position, arg.UpdatedAt, arg.ID,
	)
	return scanCategory(row)
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}
