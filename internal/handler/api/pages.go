// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// PageResponse represents a page in API responses.
type PageResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Format          string     `json:"format"`
	Status          string     `json:"status"`
	MetaDescription string     `json:"meta_description,omitempty"`
	AuthorID        int64      `json:"author_id"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// storePageToResponse converts a store.Page to PageResponse.
func storePageToResponse(p store.Page) PageResponse {
	return PageResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Format:          p.Format,
		Status:          p.Status,
		MetaDescription: p.MetaDescription,
		AuthorID:        p.AuthorID,
		PublishedAt:     nullTimePtr(p.PublishedAt),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ListPages handles GET /api/v1/pages.
// Anonymous callers get every published page; signed-in users get all pages,
// paginated.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if middleware.GetUser(r) == nil {
		pages, err := h.pages.ListPublished(ctx)
		if err != nil {
			writeServiceError(w, err, "page", "list pages")
			return
		}
		responses := make([]PageResponse, 0, len(pages))
		for _, p := range pages {
			responses = append(responses, storePageToResponse(p))
		}
		WriteSuccess(w, responses, &Meta{Total: int64(len(pages))})
		return
	}

	page, perPage, limit, offset := listParams(r)
	pages, total, err := h.pages.List(ctx, limit, offset)
	if err != nil {
		writeServiceError(w, err, "page", "list pages")
		return
	}
	responses := make([]PageResponse, 0, len(pages))
	for _, p := range pages {
		responses = append(responses, storePageToResponse(p))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// GetPage handles GET /api/v1/pages/{id}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := requireEntityByID(w, r, "page", func(id int64) (store.Page, error) {
		return h.pages.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	if p.Status != model.StatusPublished && middleware.GetUser(r) == nil {
		WriteNotFound(w, "Page not found")
		return
	}
	WriteSuccess(w, storePageToResponse(p), nil)
}

// CreatePage handles POST /api/v1/pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.pages.Create(r.Context(), middleware.GetUserID(r), in)
	if err != nil {
		writeServiceError(w, err, "page", "create page")
		return
	}
	WriteCreated(w, storePageToResponse(p))
}

// UpdatePage handles PUT /api/v1/pages/{id}.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "page")
	if !ok {
		return
	}
	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.pages.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "page", "update page")
		return
	}
	WriteSuccess(w, storePageToResponse(p), nil)
}

// DeletePage handles DELETE /api/v1/pages/{id}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "page")
	if !ok {
		return
	}
	if err := h.pages.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "page", "delete page")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PageContent handles GET /api/v1/pages/{id}/content.
func (h *Handler) PageContent(w http.ResponseWriter, r *http.Request) {
	view, ok := requireEntityByID(w, r, "page", func(id int64) (service.ContentView, error) {
		return h.content.PageContent(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, view, nil)
}
