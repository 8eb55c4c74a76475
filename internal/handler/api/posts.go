// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	AuthorID    int64      `json:"author_id"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// storePostToResponse converts a store.Post to PostResponse.
func storePostToResponse(p store.Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Format:      p.Format,
		Status:      p.Status,
		CategoryID:  util.PtrFromNullInt64(p.CategoryID),
		AuthorID:    p.AuthorID,
		PublishAt:   nullTimePtr(p.PublishAt),
		PublishedAt: nullTimePtr(p.PublishedAt),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// ListPosts handles GET /api/v1/posts.
// Anonymous callers only see published posts. ?category_id= narrows the list
// to published posts in one category.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage, limit, offset := listParams(r)

	var posts []store.Post
	var total int64
	var err error

	switch {
	case r.URL.Query().Get("category_id") != "":
		categoryID, parseErr := util.ParseID(r.URL.Query().Get("category_id"))
		if parseErr != nil {
			WriteBadRequest(w, "Invalid category ID", nil)
			return
		}
		posts, total, err = h.posts.ListPublishedByCategory(ctx, categoryID, limit, offset)
	case middleware.GetUser(r) == nil:
		posts, total, err = h.posts.ListPublished(ctx, limit, offset)
	default:
		posts, total, err = h.posts.List(ctx, limit, offset)
	}
	if err != nil {
		writeServiceError(w, err, "post", "list posts")
		return
	}

	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, storePostToResponse(p))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// GetPost handles GET /api/v1/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "post", func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	if post.Status != model.StatusPublished && middleware.GetUser(r) == nil {
		WriteNotFound(w, "Post not found")
		return
	}
	WriteSuccess(w, storePostToResponse(post), nil)
}

// CreatePost handles POST /api/v1/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.GetUserID(r), in)
	if err != nil {
		writeServiceError(w, err, "post", "create post")
		return
	}
	WriteCreated(w, storePostToResponse(post))
}

// UpdatePost handles PUT /api/v1/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "post")
	if !ok {
		return
	}
	var in service.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}

	post, err := h.posts.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "post", "update post")
		return
	}
	WriteSuccess(w, storePostToResponse(post), nil)
}

// DeletePost handles DELETE /api/v1/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "post")
	if !ok {
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "post", "delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostContent handles GET /api/v1/posts/{id}/content. It returns the stored
// original next to the shortcode output for the admin editor.
func (h *Handler) PostContent(w http.ResponseWriter, r *http.Request) {
	view, ok := requireEntityByID(w, r, "post", func(id int64) (service.ContentView, error) {
		return h.content.PostContent(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, view, nil)
}
