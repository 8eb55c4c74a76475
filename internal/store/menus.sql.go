// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const menuColumns = `id, name, slug, created_at, updated_at`

func scanMenu(row interface{ Scan(...any) error }) (Menu, error) {
	var m Menu
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const menuItemColumns = `id, menu_id, parent_id, title, url, target, position, is_active, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.MenuID,
		&i.ParentID,
		&i.Title,
		&i.Url,
		&i.Target,
		&i.Position,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectMenuItems(rows *sql.Rows) ([]MenuItem, error) {
	defer func() { _ = rows.Close() }()
	var items []MenuItem
	for rows.Next() {
		i, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateMenuParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO menus (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING `+menuColumns,
		arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanMenu(row)
}

func (q *Queries) GetMenuByID(ctx context.Context, id int64) (Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = ?`, id)
	return scanMenu(row)
}

func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE slug = ?`, slug)
	return scanMenu(row)
}

func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var menus []Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return menus, nil
}

func (q *Queries) MenuSlugExists(ctx context.Context, slug string) (int64, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menus WHERE slug = ?`, slug).Scan(&exists)
	return exists, err
}

type MenuSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) MenuSlugExistsExcluding(ctx context.Context, arg MenuSlugExistsExcludingParams) (int64, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menus WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&exists)
	return exists, err
}

type UpdateMenuParams struct {
	ID        int64
	Name      string
	Slug      string
	UpdatedAt time.Time
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE menus SET name = ?, slug = ?, updated_at = ? WHERE id = ? RETURNING `+menuColumns,
		arg.Name, arg.Slug, arg.UpdatedAt, arg.ID,
	)
	return scanMenu(row)
}

func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	return err
}

// ListMenuItems returns every item of a menu, active or not, in tree order
// (position, then id).
func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE menu_id = ? ORDER BY position, id`,
		menuID,
	)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

type ListActiveMenuItemsByParentParams struct {
	MenuID   int64
	ParentID sql.NullInt64
}

// ListActiveMenuItemsByParent lists the active direct children of ParentID,
// or the active top-level items when ParentID is NULL.
func (q *Queries) ListActiveMenuItemsByParent(ctx context.Context, arg ListActiveMenuItemsByParentParams) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items
		WHERE menu_id = ? AND is_active = 1
		  AND ((? IS NULL AND parent_id IS NULL) OR parent_id = ?)
		ORDER BY position, id`,
		arg.MenuID, arg.ParentID, arg.ParentID,
	)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

func (q *Queries) GetMenuItemByID(ctx context.Context, id int64) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id)
	return scanMenuItem(row)
}

func (q *Queries) CountMenuItemChildren(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items WHERE parent_id = ?`, parentID).Scan(&count)
	return count, err
}

type GetMaxMenuItemPositionParams struct {
	MenuID   int64
	ParentID sql.NullInt64
}

// GetMaxMenuItemPosition returns -1 when the sibling group is empty.
func (q *Queries) GetMaxMenuItemPosition(ctx context.Context, arg GetMaxMenuItemPositionParams) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM menu_items
		WHERE menu_id = ? AND ((? IS NULL AND parent_id IS NULL) OR parent_id = ?)`,
		arg.MenuID, arg.ParentID, arg.ParentID,
	).Scan(&pos)
	return pos, err
}

type CreateMenuItemParams struct {
	MenuID    int64
	ParentID  sql.NullInt64
	Title     string
	Url       sql.NullString
	Target    string
	Position  int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO menu_items (menu_id, parent_id, title, url, target, position, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+menuItemColumns,
		arg.MenuID,
		arg.ParentID,
		arg.Title,
		arg.Url,
		arg.Target,
		arg.Position,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanMenuItem(row)
}

type UpdateMenuItemParams struct {
	ID        int64
	ParentID  sql.NullInt64
	Title     string
	Url       sql.NullString
	Target    string
	Position  int64
	IsActive  bool
	UpdatedAt time.Time
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE menu_items
		SET parent_id = ?, title = ?, url = ?, target = ?, position = ?, is_active = ?, updated_at = ?
		WHERE id = ? RETURNING `+menuItemColumns,
		arg.ParentID,
		arg.Title,
		arg.Url,
		arg.Target,
		arg.Position,
		arg.IsActive,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanMenuItem(row)
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}
