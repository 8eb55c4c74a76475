// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// MenuResponse represents a menu in API responses. Items is only filled for
// signed-in users and lists inactive items too.
type MenuResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Items     []MenuItemResponse `json:"items,omitempty"`
}

// MenuItemResponse represents a menu item in API responses.
type MenuItemResponse struct {
	ID        int64     `json:"id"`
	MenuID    int64     `json:"menu_id"`
	ParentID  *int64    `json:"parent_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Target    string    `json:"target"`
	Position  int64     `json:"position"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func storeMenuToResponse(m store.Menu) MenuResponse {
	return MenuResponse{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func storeMenuItemToResponse(it store.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:        it.ID,
		MenuID:    it.MenuID,
		ParentID:  util.PtrFromNullInt64(it.ParentID),
		Title:     it.Title,
		URL:       it.Url.String,
		Target:    it.Target,
		Position:  it.Position,
		IsActive:  it.IsActive,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func menuItemsToResponse(items []store.MenuItem) []MenuItemResponse {
	responses := make([]MenuItemResponse, 0, len(items))
	for _, it := range items {
		responses = append(responses, storeMenuItemToResponse(it))
	}
	return responses
}

// ListMenus handles GET /api/v1/menus.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menus.ListMenus(r.Context())
	if err != nil {
		writeServiceError(w, err, "menu", "list menus")
		return
	}

	responses := make([]MenuResponse, 0, len(menus))
	for _, m := range menus {
		responses = append(responses, storeMenuToResponse(m))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetMenu handles GET /api/v1/menus/{id}.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	m, ok := requireEntityByID(w, r, "menu", func(id int64) (store.Menu, error) {
		return h.menus.GetMenu(r.Context(), id)
	})
	if !ok {
		return
	}

	resp := storeMenuToResponse(m)
	if middleware.GetUser(r) != nil {
		items, err := h.menus.ListItems(r.Context(), m.ID)
		if err != nil {
			writeServiceError(w, err, "menu", "list menu items")
			return
		}
		resp.Items = menuItemsToResponse(items)
	}
	WriteSuccess(w, resp, nil)
}

// MenuTree handles GET /api/v1/menus/{id}/tree. The id is checked by the
// menu service: a malformed id is a validation error and an unknown menu
// yields an empty tree.
func (h *Handler) MenuTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.menus.Tree(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "menu", "build menu tree")
		return
	}
	WriteSuccess(w, tree, &Meta{Total: int64(tree.Count())})
}

// MenuItems handles GET /api/v1/menus/{id}/items?parent_id=. It lists the
// active direct children of parent_id, or the top level without it.
func (h *Handler) MenuItems(w http.ResponseWriter, r *http.Request) {
	menuID, ok := requireID(w, r, "menu")
	if !ok {
		return
	}

	items, err := h.menus.Children(r.Context(), menuID, r.URL.Query().Get("parent_id"))
	if err != nil {
		writeServiceError(w, err, "menu", "list menu items")
		return
	}
	WriteSuccess(w, menuItemsToResponse(items), &Meta{Total: int64(len(items))})
}

// CreateMenu handles POST /api/v1/menus.
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var in service.MenuInput
	if !decodeJSON(w, r, &in) {
		return
	}

	m, err := h.menus.CreateMenu(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "menu", "create menu")
		return
	}
	WriteCreated(w, storeMenuToResponse(m))
}

// UpdateMenu handles PUT /api/v1/menus/{id}.
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "menu")
	if !ok {
		return
	}
	var in service.MenuInput
	if !decodeJSON(w, r, &in) {
		return
	}

	m, err := h.menus.UpdateMenu(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "menu", "update menu")
		return
	}
	WriteSuccess(w, storeMenuToResponse(m), nil)
}

// DeleteMenu handles DELETE /api/v1/menus/{id}. The main and footer menus
// cannot be deleted.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "menu")
	if !ok {
		return
	}
	if err := h.menus.DeleteMenu(r.Context(), id); err != nil {
		writeServiceError(w, err, "menu", "delete menu")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateMenuItem handles POST /api/v1/menus/{id}/items.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	menuID, ok := requireID(w, r, "menu")
	if !ok {
		return
	}
	var in service.MenuItemInput
	if !decodeJSON(w, r, &in) {
		return
	}

	it, err := h.menus.CreateItem(r.Context(), menuID, in)
	if err != nil {
		writeServiceError(w, err, "menu", "create menu item")
		return
	}
	WriteCreated(w, storeMenuItemToResponse(it))
}

// GetMenuItem handles GET /api/v1/menu-items/{id}.
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	it, ok := requireEntityByID(w, r, "menu item", func(id int64) (store.MenuItem, error) {
		return h.menus.GetItem(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, storeMenuItemToResponse(it), nil)
}

// UpdateMenuItem handles PUT /api/v1/menu-items/{id}.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "menu item")
	if !ok {
		return
	}
	var in service.MenuItemInput
	if !decodeJSON(w, r, &in) {
		return
	}

	it, err := h.menus.UpdateItem(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "menu item", "update menu item")
		return
	}
	WriteSuccess(w, storeMenuItemToResponse(it), nil)
}

// DeleteMenuItem handles DELETE /api/v1/menu-items/{id}. Items that still
// have children are refused with 409.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "menu item")
	if !ok {
		return
	}
	if err := h.menus.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, err, "menu item", "delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
