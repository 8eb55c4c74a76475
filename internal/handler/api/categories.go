// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Position    int64     `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// storeCategoryToResponse converts a store.Category to CategoryResponse.
func storeCategoryToResponse(c store.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	return resp
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "category", "list categories")
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, storeCategoryToResponse(c))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetCategory handles GET /api/v1/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := requireEntityByID(w, r, "category", func(id int64) (store.Category, error) {
		return h.categories.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, storeCategoryToResponse(c), nil)
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "category", "create category")
		return
	}
	WriteCreated(w, storeCategoryToResponse(c))
}

// UpdateCategory handles PUT /api/v1/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "category")
	if !ok {
		return
	}
	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.categories.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "category", "update category")
		return
	}
	WriteSuccess(w, storeCategoryToResponse(c), nil)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}.
// Posts in the category are kept and lose their category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "category")
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "category", "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
