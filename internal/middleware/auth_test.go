// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/session"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/testutil"
)

func withUser(req *http.Request, role string) *http.Request {
	return withUserID(req, 7, role)
}

func withUserID(req *http.Request, id int64, role string) *http.Request {
	user := store.User{ID: id, Email: "user@ledgerline.example", Role: role}
	return req.WithContext(context.WithValue(req.Context(), ContextKeyUser, user))
}

func TestGetUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil || GetUserID(req) != 0 || GetUserIDPtr(req) != nil {
		t.Error("expected no user in an empty context")
	}

	req = withUser(req, model.RoleEditor)
	if u := GetUser(req); u == nil || u.ID != 7 {
		t.Fatalf("GetUser() = %v", u)
	}
	if id := GetUserIDPtr(req); id == nil || *id != 7 {
		t.Errorf("GetUserIDPtr() = %v", id)
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/tax", nil))
	if got != "/blog/tax" {
		t.Errorf("GetRequestPath() = %q", got)
	}
}

func TestLoadUser(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "editor@ledgerline.example", model.RoleEditor)
	users := service.NewUserService(db, testutil.TestLoggerSilent())
	sm := scs.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/login-as", func(w http.ResponseWriter, r *http.Request) {
		id := user.ID
		if r.URL.Query().Get("ghost") != "" {
			id = 9999
		}
		_ = session.Login(r.Context(), sm, id)
	})
	var seen *store.User
	var sessionID int64
	mux.Handle("/whoami", LoadUser(sm, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
		sessionID = session.UserID(r.Context(), sm)
	})))
	handler := sm.LoadAndSave(mux)

	request := func(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	request("/whoami", nil)
	if seen != nil {
		t.Errorf("anonymous request loaded user %v", seen)
	}

	cookies := request("/login-as", nil).Result().Cookies()
	request("/whoami", cookies)
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("GetUser() = %v, want user %d", seen, user.ID)
	}

	cookies = request("/login-as?ghost=1", nil).Result().Cookies()
	request("/whoami", cookies)
	if seen != nil {
		t.Errorf("deleted account should load as anonymous, got %v", seen)
	}
	if sessionID != 0 {
		t.Errorf("stale user id should be removed from the session, got %d", sessionID)
	}
}

func TestRequireUser(t *testing.T) {
	handler := RequireUser(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin?tab=1", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fadmin%3Ftab%3D1" {
		t.Errorf("Location = %q", loc)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/menus", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("API status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/admin", nil), model.RoleEditor))
	if rec.Code != http.StatusOK {
		t.Errorf("logged in status = %d, want 200", rec.Code)
	}
}

func TestRoleLevel(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, 2},
		{model.RoleEditor, 1},
		{"public", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := roleLevel(tt.role); got != tt.want {
			t.Errorf("roleLevel(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	events := service.NewEventService(db)
	actor := testutil.CreateUser(t, db, "actor@ledgerline.example", model.RoleEditor)

	tests := []struct {
		name     string
		minRole  string
		userRole string
		path     string
		wantCode int
	}{
		{"admin on admin route", model.RoleAdmin, model.RoleAdmin, "/admin/users", http.StatusOK},
		{"editor on admin route", model.RoleAdmin, model.RoleEditor, "/admin/users", http.StatusForbidden},
		{"editor on admin api", model.RoleAdmin, model.RoleEditor, "/api/v1/users", http.StatusForbidden},
		{"admin on editor route", model.RoleEditor, model.RoleAdmin, "/admin", http.StatusOK},
		{"unknown role", model.RoleEditor, "public", "/admin", http.StatusForbidden},
		{"anonymous", model.RoleEditor, "", "/admin", http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.userRole != "" {
				req = withUserID(req, actor.ID, tt.userRole)
			}
			rec := httptest.NewRecorder()
			RequireRole(tt.minRole, events)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if strings.HasPrefix(tt.path, "/api/") && rec.Code == http.StatusForbidden {
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}

	recent, err := events.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("logged %d denials, want 3", len(recent))
	}
}
