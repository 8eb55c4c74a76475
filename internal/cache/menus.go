// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/ledgerline/site/internal/menutree"
)

const menuTreePrefix = "menu:tree:"

// MenuTreeCache caches built navigation trees by menu slug and by id.
// Every menu or menu item mutation must call Invalidate.
type MenuTreeCache struct {
	trees *TypedCache[menutree.Tree]

	// mu orders stores against Invalidate. A tree loaded before the latest
	// Invalidate is never stored.
	mu         sync.Mutex
	generation uint64
}

// NewMenuTreeCache wraps c.
func NewMenuTreeCache(c Cacher) *MenuTreeCache {
	return &MenuTreeCache{trees: NewTypedCache[menutree.Tree](c, 0)}
}

// BySlug returns the cached tree for slug or builds it with load.
func (m *MenuTreeCache) BySlug(ctx context.Context, slug string, load func(context.Context) (menutree.Tree, error)) (menutree.Tree, error) {
	return m.getOrLoad(ctx, menuTreePrefix+"slug:"+slug, load)
}

// ByID returns the cached tree for id or builds it with load.
func (m *MenuTreeCache) ByID(ctx context.Context, id int64, load func(context.Context) (menutree.Tree, error)) (menutree.Tree, error) {
	return m.getOrLoad(ctx, menuTreePrefix+"id:"+strconv.FormatInt(id, 10), load)
}

// Invalidate drops every cached tree. Item moves can change two menus, so
// there is no per-menu invalidation.
func (m *MenuTreeCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	return m.trees.DeleteByPrefix(ctx, menuTreePrefix)
}

// getOrLoad returns the cached tree or calls load. The result is stored only
// when no Invalidate ran while load was reading. A failed store is ignored;
// the next call loads again.
func (m *MenuTreeCache) getOrLoad(ctx context.Context, key string, load func(context.Context) (menutree.Tree, error)) (menutree.Tree, error) {
	if t, ok := m.trees.Get(ctx, key); ok {
		return t, nil
	}

	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	t, err := load(ctx)
	if err != nil {
		return t, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		_ = m.trees.Set(ctx, key, t)
	}
	return t, nil
}
