// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func recentEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	return events
}

func metadataOf(t *testing.T, e store.Event) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &m); err != nil {
		t.Fatalf("metadata %q is not JSON: %v", e.Metadata, err)
	}
	return m
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed") }, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("slow query") }, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("server started") }, ""},
		{"debug", func(l *slog.Logger) { l.Debug("tick") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestMemoryDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := recentEvents(t, db)
			if tt.wantLevel == "" {
				if len(events) != 0 {
					t.Errorf("expected no events, got %d", len(events))
				}
				return
			}
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("post published")

	events := recentEvents(t, db)
	if len(events) != 1 || events[0].Level != model.EventLevelInfo {
		t.Errorf("events = %+v", events)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed for unknown email", model.EventCategoryAuth},
		{"menu cache invalidation failed", model.EventCategoryMenu},
		{"sitemap shortcode unavailable", model.EventCategoryContent},
		{"contact rate limit hit", model.EventCategoryContact},
		{"upload rejected", model.EventCategoryFile},
		{"user lookup failed", model.EventCategoryUser},
		{"disk nearly full", model.EventCategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := inferCategory(tt.msg); got != tt.want {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategoryAndMetadata(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("sitemap shortcode unavailable",
		"category", model.EventCategoryContent,
		"directive", `[sitemap groups="tax"]`,
		"attempt", 2,
		"cached", false,
	)

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	e := events[0]
	if e.Category != model.EventCategoryContent {
		t.Errorf("Category = %q", e.Category)
	}
	meta := metadataOf(t, e)
	if _, ok := meta["category"]; ok {
		t.Error("category must not be repeated in metadata")
	}
	if meta["directive"] != `[sitemap groups="tax"]` {
		t.Errorf("directive = %v", meta["directive"])
	}
	if meta["attempt"] != float64(2) {
		t.Errorf("attempt = %v", meta["attempt"])
	}
	if meta["cached"] != false {
		t.Errorf("cached = %v", meta["cached"])
	}
}

func TestEventLogHandler_WithAttrsKeepsCategory(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("category", model.EventCategoryScheduler, "job", "publish")

	logger.Error("job failed")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Category != model.EventCategoryScheduler {
		t.Errorf("Category = %q, want scheduler", events[0].Category)
	}
	if metadataOf(t, events[0])["job"] != "publish" {
		t.Errorf("metadata = %s", events[0].Metadata)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).WithGroup("req")

	logger.Warn("odd request", "path", "/blog")

	meta := metadataOf(t, recentEvents(t, db)[0])
	if meta["req.path"] != "/blog" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_NoAttrs(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Error("boom")

	if got := recentEvents(t, db)[0].Metadata; got != "{}" {
		t.Errorf("Metadata = %q, want {}", got)
	}
}

func TestSlogLevelToEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}
	for _, tt := range tests {
		if got := slogLevelToEventLevel(tt.level); got != tt.want {
			t.Errorf("slogLevelToEventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
