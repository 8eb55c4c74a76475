// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded html/template files and renders pages
// inside the site layout with navigation menus and flash messages.
package render

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/menutree"
	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/session"
	"github.com/ledgerline/site/internal/store"
)

// templateGroups are the page directories; each page is parsed together with
// the base layout and all partials.
var templateGroups = []string{"public", "admin", "auth"}

const baseLayout = "layouts/base.html"

// MenuSource supplies navigation trees by menu slug.
type MenuSource interface {
	TreeBySlug(ctx context.Context, slug string) (menutree.Tree, error)
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates map[string]*template.Template
	sessions  *scs.SessionManager
	menus     MenuSource
	siteName  string
	now       func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Menus          MenuSource
	SiteName       string
}

// New creates a Renderer with every template parsed up front.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sessions:  cfg.SessionManager,
		menus:     cfg.Menus,
		siteName:  cfg.SiteName,
		now:       time.Now,
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, group := range templateGroups {
		pages, err := templateFiles(templatesFS, group)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", group, err)
		}
		for _, page := range pages {
			name := group + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{baseLayout}, partials...)
			files = append(files, page)
			tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	if len(r.templates) == 0 {
		return fmt.Errorf("no templates found")
	}
	return nil
}

// templateFiles returns the .html files directly under dir. A missing
// directory yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a template called name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(v any) string {
			if t, ok := timeOf(v); ok {
				return t.Format("Jan 2, 2006")
			}
			return ""
		},
		"formatDateTime": func(v any) string {
			if t, ok := timeOf(v); ok {
				return t.Format("Jan 2, 2006 15:04")
			}
			return ""
		},
		"isoDate": func(v any) string {
			if t, ok := timeOf(v); ok {
				return t.UTC().Format(time.RFC3339)
			}
			return ""
		},
		"truncate": truncate,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
		"isAdmin": func(u *store.User) bool {
			return u != nil && u.Role == model.RoleAdmin
		},
		// sanitizedHTML marks text already cleaned by bluemonday on write.
		"sanitizedHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

func timeOf(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case sql.NullTime:
		return t.Time, t.Valid
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

// truncate shortens s to length runes, adding an ellipsis.
func truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:length])) + "…"
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Description string
	Canonical   string
	Data        any
	Flash       string
	SiteName    string
	CurrentYear int
	User        *store.User
	MainMenu    menutree.Tree
	FooterMenu  menutree.Tree
}

// Render writes template name with status. The layout gets the site name,
// the current user, the flash message and both navigation menus.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.SiteName = r.siteName
	data.User = middleware.GetUser(req)
	if r.sessions != nil {
		data.Flash = session.PopFlash(req.Context(), r.sessions)
	}
	if r.menus != nil {
		data.MainMenu = r.menu(req.Context(), model.MenuMain)
		data.FooterMenu = r.menu(req.Context(), model.MenuFooter)
	}

	// Render to buffer first so a failing template does not send half a page
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// menu loads a navigation tree; a failure renders the page without it.
func (r *Renderer) menu(ctx context.Context, slug string) menutree.Tree {
	tree, err := r.menus.TreeBySlug(ctx, slug)
	if err != nil {
		slog.Error("loading menu", "category", model.EventCategoryMenu, "slug", slug, "error", err)
		return menutree.Tree{}
	}
	return tree
}
