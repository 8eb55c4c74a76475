// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/session"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/testutil"
	"github.com/ledgerline/site/web"
)

const testSiteURL = "https://ledgerline.example"

// testEnv wires the real services to a memory database and the embedded
// templates.
type testEnv struct {
	db       *sql.DB
	sm       *scs.SessionManager
	renderer *render.Renderer

	posts      *service.PostService
	pages      *service.PageService
	categories *service.CategoryService
	contacts   *service.ContactService
	content    *service.ContentService
	users      *service.UserService
	events     *service.EventService
	menus      *service.MenuService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	logger := testutil.TestLoggerSilent()
	sm := scs.New()
	menus := service.NewMenuService(db, nil, logger)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		Menus:          menus,
		SiteName:       "Ledgerline",
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	return &testEnv{
		db:         db,
		sm:         sm,
		renderer:   renderer,
		posts:      service.NewPostService(db, logger),
		pages:      service.NewPageService(db, logger),
		categories: service.NewCategoryService(db, logger),
		contacts:   service.NewContactService(db, logger),
		content:    service.NewContentService(db, true, logger),
		users:      service.NewUserService(db, logger),
		events:     service.NewEventService(db),
		menus:      menus,
	}
}

// wrap adds session and user loading, as main does for every route.
func (e *testEnv) wrap(h http.Handler) http.Handler {
	return e.sm.LoadAndSave(middleware.LoadUser(e.sm, e.users)(h))
}

// do serves req through h wrapped with session loading.
func (e *testEnv) do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.wrap(h).ServeHTTP(rec, req)
	return rec
}

// loginCookie returns a session cookie for userID.
func (e *testEnv) loginCookie(t *testing.T, userID int64) *http.Cookie {
	t.Helper()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := session.Login(r.Context(), e.sm, userID); err != nil {
			t.Fatalf("session.Login: %v", err)
		}
	})
	rec := e.do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.sm.Cookie.Name {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// createUser adds an account with a real password hash.
func (e *testEnv) createUser(t *testing.T, email, password, role string) store.User {
	t.Helper()
	u, err := e.users.Create(t.Context(), service.UserInput{
		Email: email, Name: "Test " + role, Role: role, Password: &password,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return req
}

func categoryInput(name, slug, description string) service.CategoryInput {
	return service.CategoryInput{Name: &name, Slug: &slug, Description: &description}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
