// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ledgerline/site/internal/cache"
	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/testutil"
)

func withRole(req *http.Request, role string) *http.Request {
	user := store.User{ID: 1, Email: role + "@ledgerline.example", Role: role}
	return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, user))
}

func TestHealthHandler_Health(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	h := NewHealthHandler(db, t.TempDir())

	tests := []struct {
		name       string
		role       string
		query      string
		wantChecks bool
		wantSystem bool
	}{
		{name: "public"},
		{name: "editor", role: model.RoleEditor},
		{name: "admin", role: model.RoleAdmin, wantChecks: true},
		{name: "admin verbose", role: model.RoleAdmin, query: "?verbose=true", wantChecks: true, wantSystem: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health"+tt.query, nil)
			if tt.role != "" {
				req = withRole(req, tt.role)
			}
			w := httptest.NewRecorder()
			h.Health(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != "healthy" {
				t.Errorf("status = %v", body["status"])
			}
			_, hasUptime := body["uptime"]
			if hasUptime != (tt.role != "") {
				t.Errorf("uptime present = %v for role %q", hasUptime, tt.role)
			}
			checks, _ := body["checks"].(map[string]any)
			if (len(checks) > 0) != tt.wantChecks {
				t.Errorf("checks = %v, want present %v", checks, tt.wantChecks)
			}
			if _, ok := body["system"]; ok != tt.wantSystem {
				t.Errorf("system present = %v, want %v", ok, tt.wantSystem)
			}
		})
	}
}

func TestHealthHandler_CacheStats(t *testing.T) {
	h := NewHealthHandler(testutil.TestMemoryDB(t), t.TempDir())
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = mem.Close() })
	h.SetCache(mem)

	w := httptest.NewRecorder()
	h.Health(w, withRole(httptest.NewRequest(http.MethodGet, "/health", nil), model.RoleAdmin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Checks map[string]Check `json:"checks"`
		Cache  *cache.Stats     `json:"cache"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Checks["cache"].Status; got != "healthy" {
		t.Errorf("cache check = %q, want healthy", got)
	}
	if body.Cache == nil || body.Cache.Backend != "memory" {
		t.Errorf("cache stats = %+v, want memory backend", body.Cache)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	h := NewHealthHandler(db, filepath.Join(t.TempDir(), "missing"))
	_ = db.Close()

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503", w.Code)
	}

	w = httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", w.Code)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(testutil.TestMemoryDB(t), t.TempDir())
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
