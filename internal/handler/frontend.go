// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/seo"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// FrontendHandler serves the public site.
type FrontendHandler struct {
	posts      *service.PostService
	pages      *service.PageService
	categories *service.CategoryService
	content    *service.ContentService
	contacts   *service.ContactService
	renderer   *render.Renderer
	sessions   *scs.SessionManager

	siteURL          string
	disallowIndexing bool
}

// FrontendConfig holds the dependencies of FrontendHandler.
type FrontendConfig struct {
	Posts      *service.PostService
	Pages      *service.PageService
	Categories *service.CategoryService
	Content    *service.ContentService
	Contacts   *service.ContactService
	Renderer   *render.Renderer
	Sessions   *scs.SessionManager

	// SiteURL is used for canonical links and the sitemap.
	SiteURL string
	// DisallowIndexing makes robots.txt block all crawlers.
	DisallowIndexing bool
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(cfg FrontendConfig) *FrontendHandler {
	return &FrontendHandler{
		posts:            cfg.Posts,
		pages:            cfg.Pages,
		categories:       cfg.Categories,
		content:          cfg.Content,
		contacts:         cfg.Contacts,
		renderer:         cfg.Renderer,
		sessions:         cfg.Sessions,
		siteURL:          cfg.SiteURL,
		disallowIndexing: cfg.DisallowIndexing,
	}
}

// pageView is a page with its rendered body.
type pageView struct {
	store.Page
	HTML template.HTML
}

type homeData struct {
	Page  *pageView
	Posts []PostSummary
}

type listData struct {
	Posts []PostSummary
	Pagination
}

type categoryData struct {
	Category store.Category
	listData
}

type postData struct {
	Post     store.Post
	HTML     template.HTML
	Category *store.Category
}

type contactData struct {
	Form   service.ContactInput
	Errors map[string]string
}

// Home handles GET /. The published "home" page is shown above the latest
// posts when it exists.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := homeData{}
	description := ""

	page, err := h.pages.GetPublishedBySlug(ctx, model.HomePageSlug)
	switch {
	case err == nil:
		rendered, err := h.content.Render(ctx, page.Content, page.Format)
		if err != nil {
			serverError(w, r, h.renderer, "rendering home page", err)
			return
		}
		data.Page = &pageView{Page: page, HTML: rendered.HTML}
		description = seo.Describe(page.MetaDescription, rendered.Processed)
	case !errors.Is(err, service.ErrNotFound):
		serverError(w, r, h.renderer, "loading home page", err)
		return
	}

	posts, _, err := h.posts.ListPublished(ctx, HomePostCount, 0)
	if err != nil {
		serverError(w, r, h.renderer, "listing recent posts", err)
		return
	}
	data.Posts = summarizePosts(posts, loadCategoryIndex(ctx, h.categories))

	renderPage(w, r, h.renderer, http.StatusOK, "public/home", render.TemplateData{
		Description: description,
		Canonical:   seo.CanonicalURL(h.siteURL, RouteRoot),
		Data:        data,
	})
}

// Blog handles GET /blog.
func (h *FrontendHandler) Blog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := ParsePage(r)

	posts, total, err := h.posts.ListPublished(ctx, PostsPerPage, Offset(page, PostsPerPage))
	if err != nil {
		serverError(w, r, h.renderer, "listing posts", err)
		return
	}
	pagination := NewPagination(page, PostsPerPage, total)
	if pagination.OutOfRange() {
		renderNotFound(w, r, h.renderer)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "public/blog", render.TemplateData{
		Title:     "Blog",
		Canonical: seo.CanonicalURL(h.siteURL, RouteBlog),
		Data: listData{
			Posts:      summarizePosts(posts, loadCategoryIndex(ctx, h.categories)),
			Pagination: pagination,
		},
	})
}

// Post handles GET /blog/{slug}.
func (h *FrontendHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	post, err := h.posts.GetPublishedBySlug(ctx, slug)
	if errors.Is(err, service.ErrNotFound) {
		renderNotFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading post", err)
		return
	}

	rendered, err := h.content.Render(ctx, post.Content, post.Format)
	if err != nil {
		serverError(w, r, h.renderer, "rendering post", err)
		return
	}

	data := postData{Post: post, HTML: rendered.HTML}
	if post.CategoryID.Valid {
		c, err := h.categories.Get(ctx, post.CategoryID.Int64)
		if err == nil {
			data.Category = &c
		} else if !errors.Is(err, service.ErrNotFound) {
			slog.Error("loading post category", "post_id", post.ID, "error", err)
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, "public/post", render.TemplateData{
		Title:       post.Title,
		Description: seo.Describe(post.Excerpt, rendered.Processed),
		Canonical:   seo.CanonicalURL(h.siteURL, RouteBlog+"/"+post.Slug),
		Data:        data,
	})
}

// Category handles GET /category/{slug}.
func (h *FrontendHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	category, err := h.categories.GetBySlug(ctx, slug)
	if errors.Is(err, service.ErrNotFound) {
		renderNotFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading category", err)
		return
	}

	page := ParsePage(r)
	posts, total, err := h.posts.ListPublishedByCategory(ctx, category.ID, PostsPerPage, Offset(page, PostsPerPage))
	if err != nil {
		serverError(w, r, h.renderer, "listing category posts", err)
		return
	}
	pagination := NewPagination(page, PostsPerPage, total)
	if pagination.OutOfRange() {
		renderNotFound(w, r, h.renderer)
		return
	}

	index := map[int64]store.Category{category.ID: category}
	renderPage(w, r, h.renderer, http.StatusOK, "public/category", render.TemplateData{
		Title:       category.Name,
		Description: seo.Describe(category.Description.String),
		Canonical:   seo.CanonicalURL(h.siteURL, "/category/"+category.Slug),
		Data: categoryData{
			Category: category,
			listData: listData{Posts: summarizePosts(posts, index), Pagination: pagination},
		},
	})
}

// Page handles GET /{slug} for published pages.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	page, err := h.pages.GetPublishedBySlug(ctx, slug)
	if errors.Is(err, service.ErrNotFound) {
		renderNotFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading page", err)
		return
	}

	rendered, err := h.content.Render(ctx, page.Content, page.Format)
	if err != nil {
		serverError(w, r, h.renderer, "rendering page", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "public/page", render.TemplateData{
		Title:       page.Title,
		Description: seo.Describe(page.MetaDescription, rendered.Processed),
		Canonical:   seo.CanonicalURL(h.siteURL, "/"+page.Slug),
		Data:        pageView{Page: page, HTML: rendered.HTML},
	})
}

// ContactForm handles GET /contact.
func (h *FrontendHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, "public/contact", render.TemplateData{
		Title:     "Contact",
		Canonical: seo.CanonicalURL(h.siteURL, RouteContact),
		Data:      contactData{Errors: map[string]string{}},
	})
}

// ContactSubmit handles POST /contact. Invalid input re-renders the form
// with field errors; a stored message redirects back with a flash.
func (h *FrontendHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, h.renderer, http.StatusBadRequest, "The form could not be read.")
		return
	}

	in := service.ContactInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	}

	_, err := h.contacts.Submit(r.Context(), in, middleware.ClientIP(r), r.UserAgent())
	if ve, ok := service.IsValidation(err); ok {
		renderPage(w, r, h.renderer, http.StatusUnprocessableEntity, "public/contact", render.TemplateData{
			Title: "Contact",
			Data:  contactData{Form: in, Errors: ve.Fields},
		})
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "storing contact", err)
		return
	}

	flashAndRedirect(w, r, h.sessions, redirectContact, "Thank you, your message has been sent.")
}

// Sitemap handles GET /sitemap.xml.
func (h *FrontendHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pages, err := h.pages.ListPublished(ctx)
	if err != nil {
		logAndInternalError(w, "sitemap: listing pages", "error", err)
		return
	}
	posts, err := h.posts.ListAllPublished(ctx)
	if err != nil {
		logAndInternalError(w, "sitemap: listing posts", "error", err)
		return
	}
	categories, err := h.categories.List(ctx)
	if err != nil {
		logAndInternalError(w, "sitemap: listing categories", "error", err)
		return
	}

	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddHomepage()
	b.AddBlogIndex()

	pageEntries := make([]seo.Entry, 0, len(pages))
	for _, p := range pages {
		// the home page is already listed as /
		if p.Slug == model.HomePageSlug {
			continue
		}
		pageEntries = append(pageEntries, seo.Entry{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}
	b.AddPages(pageEntries)

	postEntries := make([]seo.Entry, 0, len(posts))
	for _, p := range posts {
		postEntries = append(postEntries, seo.Entry{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}
	b.AddPosts(postEntries)

	categoryEntries := make([]seo.Entry, 0, len(categories))
	for _, c := range categories {
		categoryEntries = append(categoryEntries, seo.Entry{Slug: c.Slug, UpdatedAt: c.UpdatedAt})
	}
	b.AddCategories(categoryEntries)

	out, err := b.Build()
	if err != nil {
		logAndInternalError(w, "sitemap: encoding", "error", err)
		return
	}
	w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}

// Robots handles GET /robots.txt.
func (h *FrontendHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.disallowIndexing,
	})))
}

// NotFound renders the 404 page for unmatched routes.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer)
}
