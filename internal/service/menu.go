// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business logic shared by the public site, the
// admin pages and the JSON API: menus, content rendering, contacts, files
// and the event log.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledgerline/site/internal/cache"
	"github.com/ledgerline/site/internal/menutree"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

const maxMenuTitleLength = 200

// MenuInput is the editable part of a menu.
type MenuInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MenuItemInput is the editable part of a menu item. On update, nil fields
// keep their stored value and a ParentID of 0 moves the item to the top level.
type MenuItemInput struct {
	ParentID *int64  `json:"parent_id"`
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	Target   *string `json:"target"`
	Position *int64  `json:"position"`
	IsActive *bool   `json:"is_active"`
}

// MenuService manages menus and builds their navigation trees.
type MenuService struct {
	db      *sql.DB
	queries *store.Queries
	trees   *cache.MenuTreeCache
	logger  *slog.Logger
}

// NewMenuService creates a MenuService. trees may be nil to disable caching.
func NewMenuService(db *sql.DB, trees *cache.MenuTreeCache, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		db:      db,
		queries: store.New(db),
		trees:   trees,
		logger:  logger,
	}
}

// Tree builds the navigation tree for the menu identified by rawID. A
// malformed id is a validation error; an unknown menu yields an empty tree.
func (s *MenuService) Tree(ctx context.Context, rawID string) (menutree.Tree, error) {
	id, err := util.ParseID(rawID)
	if err != nil {
		return menutree.Tree{}, invalid("id", "must be a positive integer")
	}
	return s.TreeByID(ctx, id)
}

// TreeByID builds the tree for menu id.
func (s *MenuService) TreeByID(ctx context.Context, id int64) (menutree.Tree, error) {
	load := func(ctx context.Context) (menutree.Tree, error) {
		return s.build(ctx, id)
	}
	if s.trees == nil {
		return load(ctx)
	}
	return s.trees.ByID(ctx, id, load)
}

// TreeBySlug builds the tree for the menu with slug. It is what the site
// layout calls for the main and footer navigation.
func (s *MenuService) TreeBySlug(ctx context.Context, slug string) (menutree.Tree, error) {
	load := func(ctx context.Context) (menutree.Tree, error) {
		m, err := s.queries.GetMenuBySlug(ctx, slug)
		if errors.Is(err, sql.ErrNoRows) {
			return menutree.Tree{Items: []menutree.Node{}}, nil
		}
		if err != nil {
			return menutree.Tree{}, fmt.Errorf("loading menu %q: %w", slug, err)
		}
		return s.build(ctx, m.ID)
	}
	if s.trees == nil {
		return load(ctx)
	}
	return s.trees.BySlug(ctx, slug, load)
}

func (s *MenuService) build(ctx context.Context, menuID int64) (menutree.Tree, error) {
	items, err := s.queries.ListMenuItems(ctx, menuID)
	if err != nil {
		return menutree.Tree{}, fmt.Errorf("listing items of menu %d: %w", menuID, err)
	}
	return menutree.Build(menuID, items, model.MenuMaxDepth), nil
}

// Children lists the active direct children of rawParent in menuID, ordered
// by position. An empty rawParent lists the top-level items.
func (s *MenuService) Children(ctx context.Context, menuID int64, rawParent string) ([]store.MenuItem, error) {
	var parent sql.NullInt64
	if strings.TrimSpace(rawParent) != "" {
		id, err := util.ParseID(rawParent)
		if err != nil {
			return nil, invalid("parent_id", "must be a positive integer")
		}
		parent = sql.NullInt64{Int64: id, Valid: true}
	}
	items, err := s.queries.ListActiveMenuItemsByParent(ctx, store.ListActiveMenuItemsByParentParams{
		MenuID:   menuID,
		ParentID: parent,
	})
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	if items == nil {
		items = []store.MenuItem{}
	}
	return items, nil
}

// ListMenus returns every menu ordered by name.
func (s *MenuService) ListMenus(ctx context.Context) ([]store.Menu, error) {
	return s.queries.ListMenus(ctx)
}

// GetMenu returns menu id or ErrNotFound.
func (s *MenuService) GetMenu(ctx context.Context, id int64) (store.Menu, error) {
	m, err := s.queries.GetMenuByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("menu %d: %w", id, ErrNotFound)
	}
	return m, err
}

// ListItems returns every item of a menu, inactive ones included.
func (s *MenuService) ListItems(ctx context.Context, menuID int64) ([]store.MenuItem, error) {
	items, err := s.queries.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.MenuItem{}
	}
	return items, nil
}

// GetItem returns menu item id or ErrNotFound.
func (s *MenuService) GetItem(ctx context.Context, id int64) (store.MenuItem, error) {
	it, err := s.queries.GetMenuItemByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return it, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return it, err
}

// CreateMenu validates and stores a new menu. An empty slug is derived from
// the name.
func (s *MenuService) CreateMenu(ctx context.Context, in MenuInput) (store.Menu, error) {
	name := strings.TrimSpace(in.Name)
	slug := util.SlugOrTitle(in.Slug, name)
	if err := s.validateMenu(ctx, name, slug, 0); err != nil {
		return store.Menu{}, err
	}

	now := time.Now().UTC()
	m, err := s.queries.CreateMenu(ctx, store.CreateMenuParams{
		Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return m, fmt.Errorf("creating menu: %w", err)
	}
	s.logger.Info("menu created", "category", model.EventCategoryMenu, "menu_id", m.ID, "slug", slug)
	s.invalidate(ctx)
	return m, nil
}

// UpdateMenu renames a menu. The slug of a default menu cannot change.
func (s *MenuService) UpdateMenu(ctx context.Context, id int64, in MenuInput) (store.Menu, error) {
	existing, err := s.GetMenu(ctx, id)
	if err != nil {
		return existing, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = existing.Name
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = existing.Slug
	}
	if model.IsDefaultMenu(existing.Slug) && slug != existing.Slug {
		return existing, invalid("slug", "the slug of a default menu cannot change")
	}
	if err := s.validateMenu(ctx, name, slug, id); err != nil {
		return existing, err
	}

	m, err := s.queries.UpdateMenu(ctx, store.UpdateMenuParams{
		ID: id, Name: name, Slug: slug, UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return m, fmt.Errorf("updating menu %d: %w", id, err)
	}
	s.invalidate(ctx)
	return m, nil
}

// DeleteMenu removes a menu and all of its items. Default menus are kept.
func (s *MenuService) DeleteMenu(ctx context.Context, id int64) error {
	m, err := s.GetMenu(ctx, id)
	if err != nil {
		return err
	}
	if model.IsDefaultMenu(m.Slug) {
		return ErrDefaultMenu
	}
	if err := s.queries.DeleteMenu(ctx, id); err != nil {
		return fmt.Errorf("deleting menu %d: %w", id, err)
	}
	s.logger.Info("menu deleted", "category", model.EventCategoryMenu, "menu_id", id, "slug", m.Slug)
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) validateMenu(ctx context.Context, name, slug string, excludeID int64) error {
	ve := &ValidationError{}
	if name == "" {
		ve.Add("name", "is required")
	} else if utf8.RuneCountInString(name) > maxMenuTitleLength {
		ve.Add("name", fmt.Sprintf("must be at most %d characters", maxMenuTitleLength))
	}
	if !util.IsValidSlug(slug) {
		ve.Add("slug", "must contain only lowercase letters, digits and single hyphens")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	var (
		n   int64
		err error
	)
	if excludeID == 0 {
		n, err = s.queries.MenuSlugExists(ctx, slug)
	} else {
		n, err = s.queries.MenuSlugExistsExcluding(ctx, store.MenuSlugExistsExcludingParams{Slug: slug, ID: excludeID})
	}
	if err != nil {
		return fmt.Errorf("checking menu slug: %w", err)
	}
	if n > 0 {
		return invalid("slug", "already exists")
	}
	return nil
}

// CreateItem adds an item to menuID. Without a position the item is placed
// after its last sibling.
func (s *MenuService) CreateItem(ctx context.Context, menuID int64, in MenuItemInput) (store.MenuItem, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return store.MenuItem{}, err
	}

	ve := &ValidationError{}
	title := ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	validateItemTitle(ve, title)
	link := ""
	if in.URL != nil {
		link = strings.TrimSpace(*in.URL)
	}
	validateItemURL(ve, link)
	target := model.TargetSelf
	if in.Target != nil && *in.Target != "" {
		target = *in.Target
	}
	if !model.IsValidTarget(target) {
		ve.Add("target", "must be _self or _blank")
	}
	if in.Position != nil && *in.Position < 0 {
		ve.Add("position", "must not be negative")
	}
	if err := ve.Err(); err != nil {
		return store.MenuItem{}, err
	}

	var parent sql.NullInt64
	if in.ParentID != nil && *in.ParentID != 0 {
		items, err := s.queries.ListMenuItems(ctx, menuID)
		if err != nil {
			return store.MenuItem{}, fmt.Errorf("listing items of menu %d: %w", menuID, err)
		}
		if err := checkPlacement(items, 0, *in.ParentID); err != nil {
			return store.MenuItem{}, err
		}
		parent = sql.NullInt64{Int64: *in.ParentID, Valid: true}
	}

	position, err := s.resolvePosition(ctx, menuID, parent, in.Position)
	if err != nil {
		return store.MenuItem{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := time.Now().UTC()
	it, err := s.queries.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuID:    menuID,
		ParentID:  parent,
		Title:     title,
		Url:       util.NullStringFromValue(link),
		Target:    target,
		Position:  position,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return it, fmt.Errorf("creating menu item: %w", err)
	}
	s.logger.Info("menu item created", "category", model.EventCategoryMenu, "menu_id", menuID, "item_id", it.ID)
	s.invalidate(ctx)
	return it, nil
}

// UpdateItem changes an item in place. Moving it under another parent keeps
// it in the same menu and may not create a cycle or exceed the depth limit.
func (s *MenuService) UpdateItem(ctx context.Context, id int64, in MenuItemInput) (store.MenuItem, error) {
	existing, err := s.GetItem(ctx, id)
	if err != nil {
		return existing, err
	}

	ve := &ValidationError{}
	title := existing.Title
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	validateItemTitle(ve, title)
	link := existing.Url
	if in.URL != nil {
		l := strings.TrimSpace(*in.URL)
		validateItemURL(ve, l)
		link = util.NullStringFromValue(l)
	}
	target := existing.Target
	if in.Target != nil {
		target = *in.Target
	}
	if !model.IsValidTarget(target) {
		ve.Add("target", "must be _self or _blank")
	}
	if in.Position != nil && *in.Position < 0 {
		ve.Add("position", "must not be negative")
	}
	if err := ve.Err(); err != nil {
		return existing, err
	}

	parent := existing.ParentID
	moved := false
	if in.ParentID != nil {
		if *in.ParentID == 0 {
			parent = sql.NullInt64{}
		} else {
			parent = sql.NullInt64{Int64: *in.ParentID, Valid: true}
		}
		moved = parent != existing.ParentID
	}
	if moved && parent.Valid {
		items, err := s.queries.ListMenuItems(ctx, existing.MenuID)
		if err != nil {
			return existing, fmt.Errorf("listing items of menu %d: %w", existing.MenuID, err)
		}
		if err := checkPlacement(items, id, parent.Int64); err != nil {
			return existing, err
		}
	}

	position := existing.Position
	switch {
	case in.Position != nil:
		position = *in.Position
	case moved:
		if position, err = s.resolvePosition(ctx, existing.MenuID, parent, nil); err != nil {
			return existing, err
		}
	}

	active := existing.IsActive
	if in.IsActive != nil {
		active = *in.IsActive
	}

	it, err := s.queries.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
		ID:        id,
		ParentID:  parent,
		Title:     title,
		Url:       link,
		Target:    target,
		Position:  position,
		IsActive:  active,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return it, fmt.Errorf("updating menu item %d: %w", id, err)
	}
	s.invalidate(ctx)
	return it, nil
}

// DeleteItem removes a childless item. Items with children are rejected with
// ErrMenuItemHasChildren; callers delete bottom-up.
func (s *MenuService) DeleteItem(ctx context.Context, id int64) error {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.queries.CountMenuItemChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("counting children of item %d: %w", id, err)
	}
	if n > 0 {
		return fmt.Errorf("menu item %d has %d children: %w", id, n, ErrMenuItemHasChildren)
	}
	if err := s.queries.DeleteMenuItem(ctx, id); err != nil {
		// A child added after the count above.
		if isForeignKeyViolation(err) {
			return fmt.Errorf("menu item %d gained children: %w", id, ErrMenuItemHasChildren)
		}
		return fmt.Errorf("deleting menu item %d: %w", id, err)
	}
	s.logger.Info("menu item deleted", "category", model.EventCategoryMenu, "menu_id", it.MenuID, "item_id", id)
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) resolvePosition(ctx context.Context, menuID int64, parent sql.NullInt64, requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}
	maxPos, err := s.queries.GetMaxMenuItemPosition(ctx, store.GetMaxMenuItemPositionParams{
		MenuID: menuID, ParentID: parent,
	})
	if err != nil {
		return 0, fmt.Errorf("reading sibling positions: %w", err)
	}
	return maxPos + 1, nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.trees == nil {
		return
	}
	if err := s.trees.Invalidate(ctx); err != nil {
		s.logger.Warn("menu cache invalidation failed", "category", model.EventCategoryMenu, "error", err)
	}
}

// checkPlacement validates putting item (0 for a new item) under parentID,
// given every item of the menu.
func checkPlacement(items []store.MenuItem, itemID, parentID int64) error {
	byID := make(map[int64]store.MenuItem, len(items))
	children := make(map[int64][]int64)
	for _, it := range items {
		byID[it.ID] = it
		if it.ParentID.Valid {
			children[it.ParentID.Int64] = append(children[it.ParentID.Int64], it.ID)
		}
	}

	if _, ok := byID[parentID]; !ok {
		return invalid("parent_id", "must reference an item of the same menu")
	}
	if parentID == itemID {
		return invalid("parent_id", "an item cannot be its own parent")
	}

	// walk up from the new parent; bounded by the number of items
	parentDepth := 1
	seen := map[int64]bool{parentID: true}
	for cur := byID[parentID]; cur.ParentID.Valid; {
		up := cur.ParentID.Int64
		if up == itemID {
			return invalid("parent_id", "an item cannot be moved under its own descendant")
		}
		if seen[up] {
			break
		}
		seen[up] = true
		next, ok := byID[up]
		if !ok {
			break
		}
		parentDepth++
		cur = next
	}

	// height of the subtree being moved, 1 for a leaf or a new item
	height := 1
	if itemID != 0 {
		level := []int64{itemID}
		visited := map[int64]bool{itemID: true}
		for {
			var next []int64
			for _, id := range level {
				for _, c := range children[id] {
					if !visited[c] {
						visited[c] = true
						next = append(next, c)
					}
				}
			}
			if len(next) == 0 {
				break
			}
			height++
			level = next
		}
	}

	if parentDepth+height > model.MenuMaxDepth {
		return invalid("parent_id", fmt.Sprintf("menus are limited to %d levels", model.MenuMaxDepth))
	}
	return nil
}

func validateItemTitle(ve *ValidationError, title string) {
	if title == "" {
		ve.Add("title", "is required")
	} else if utf8.RuneCountInString(title) > maxMenuTitleLength {
		ve.Add("title", fmt.Sprintf("must be at most %d characters", maxMenuTitleLength))
	}
}

// validateItemURL accepts site paths, fragments, http(s) links and
// mailto/tel links. Empty is allowed for group headings.
func validateItemURL(ve *ValidationError, link string) {
	if link == "" || strings.HasPrefix(link, "#") {
		return
	}
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return
	}
	u, err := url.Parse(link)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			if u.Host != "" {
				return
			}
		case "mailto", "tel":
			if u.Opaque != "" {
				return
			}
		}
	}
	ve.Add("url", "must be a site path, an http(s) URL, or a mailto/tel link")
}
