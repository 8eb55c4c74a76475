// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// Content kinds accepted by the preview route.
const (
	ContentKindPost = "post"
	ContentKindPage = "page"
)

// recentContentLimit is how many posts and pages each the dashboard lists.
const recentContentLimit = 5

// DashboardCount is one figure on the dashboard.
type DashboardCount struct {
	Label string
	N     int64
}

// ContentRow is a post or page in the dashboard content table.
type ContentRow struct {
	Kind   string
	ID     int64
	Title  string
	Status string
}

// DashboardData holds all dashboard data including stats and recent items.
type DashboardData struct {
	Counts         []DashboardCount
	UnreadContacts int64
	Content        []ContentRow
	Events         []store.Event
}

// ContentPreviewData is the data of the content preview page.
type ContentPreviewData struct {
	Title string
	Kind  string
	ID    int64
	Auto  bool
	View  service.ContentView
}

// AdminHandler handles admin routes.
type AdminHandler struct {
	queries  *store.Queries
	posts    *service.PostService
	pages    *service.PageService
	content  *service.ContentService
	events   *service.EventService
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, posts *service.PostService, pages *service.PageService, content *service.ContentService, events *service.EventService, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		queries:  store.New(db),
		posts:    posts,
		pages:    pages,
		content:  content,
		events:   events,
		renderer: renderer,
	}
}

// Dashboard renders the admin dashboard with stats and recent activity.
// A failing count is logged and shown as zero.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counters := []struct {
		label string
		count func(context.Context) (int64, error)
	}{
		{"posts", h.queries.CountPosts},
		{"pages", h.queries.CountPages},
		{"categories", h.queries.CountCategories},
		{"contact messages", h.queries.CountContacts},
		{"files", h.queries.CountFiles},
		{"users", h.queries.CountUsers},
	}

	data := DashboardData{}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			slog.Error("failed to count "+c.label, "error", err)
		}
		data.Counts = append(data.Counts, DashboardCount{Label: c.label, N: n})
	}

	if unread, err := h.queries.CountUnreadContacts(ctx); err != nil {
		slog.Error("failed to count unread contacts", "error", err)
	} else {
		data.UnreadContacts = unread
	}

	if posts, _, err := h.posts.List(ctx, recentContentLimit, 0); err != nil {
		slog.Error("failed to list recent posts", "error", err)
	} else {
		for _, p := range posts {
			data.Content = append(data.Content, ContentRow{Kind: ContentKindPost, ID: p.ID, Title: p.Title, Status: p.Status})
		}
	}
	if pages, _, err := h.pages.List(ctx, recentContentLimit, 0); err != nil {
		slog.Error("failed to list recent pages", "error", err)
	} else {
		for _, p := range pages {
			data.Content = append(data.Content, ContentRow{Kind: ContentKindPage, ID: p.ID, Title: p.Title, Status: p.Status})
		}
	}

	if events, err := h.events.Recent(ctx, DashboardEventCount); err != nil {
		slog.Error("failed to list recent events", "error", err)
	} else {
		data.Events = events
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  data,
	})
}

// ContentPreview handles GET /admin/content/{kind}/{id}. It shows the stored
// original next to the shortcode output; with auto-processing off the output
// matches the original until Process is pressed.
func (h *AdminHandler) ContentPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := chi.URLParam(r, "kind")

	id, err := ParseIDParam(r)
	if err != nil {
		renderError(w, r, h.renderer, http.StatusBadRequest, "Invalid content ID.")
		return
	}

	var title, content string
	switch kind {
	case ContentKindPost:
		var p store.Post
		p, err = h.posts.Get(ctx, id)
		title, content = p.Title, p.Content
	case ContentKindPage:
		var p store.Page
		p, err = h.pages.Get(ctx, id)
		title, content = p.Title, p.Content
	default:
		renderNotFound(w, r, h.renderer)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		renderNotFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading content for preview", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/content", render.TemplateData{
		Title: title,
		Data: ContentPreviewData{
			Title: title,
			Kind:  kind,
			ID:    id,
			Auto:  h.content.Auto(),
			View:  h.content.View(ctx, content),
		},
	})
}
