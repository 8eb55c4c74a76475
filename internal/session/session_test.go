// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgerline/site/internal/testutil"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(testutil.TestMemoryDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(testutil.TestMemoryDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(testutil.TestMemoryDB(t), true)

	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
}

func TestLoginFlashLogout(t *testing.T) {
	sm := New(testutil.TestMemoryDB(t), true)

	var cookie *http.Cookie
	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Login(r.Context(), sm, 42); err != nil {
			t.Errorf("Login: %v", err)
		}
		SetFlash(r.Context(), sm, "Welcome back")
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	var gotID int64
	var flash, flashAgain string
	read := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context(), sm)
		flash = PopFlash(r.Context(), sm)
		flashAgain = PopFlash(r.Context(), sm)
		if err := Logout(r.Context(), sm); err != nil {
			t.Errorf("Logout: %v", err)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	read.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != 42 {
		t.Errorf("UserID = %d, want 42", gotID)
	}
	if flash != "Welcome back" || flashAgain != "" {
		t.Errorf("flash = %q then %q", flash, flashAgain)
	}
}
