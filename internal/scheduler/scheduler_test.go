// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := slog.Default()

	s := New(nil, logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger != logger {
		t.Error("New() scheduler has wrong logger")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("registered %d jobs, want 2", got)
	}
	s.Stop()
}

func TestScheduler_Every(t *testing.T) {
	s := New(nil, testutil.TestLoggerSilent())

	if err := s.Every("@every 1h", "noop", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	if err := s.Every("not a spec", "broken", func(context.Context) error { return nil }); err == nil {
		t.Error("Every() accepted an invalid spec")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 3 {
		t.Errorf("registered %d jobs, want 3", got)
	}
	s.Stop()
}

func schedulePost(t *testing.T, db *sql.DB, authorID int64, slug string, at time.Time) store.Post {
	t.Helper()
	p, err := store.New(db).CreatePost(context.Background(), store.CreatePostParams{
		Title:     slug,
		Slug:      slug,
		Format:    model.FormatHTML,
		Status:    model.StatusScheduled,
		AuthorID:  authorID,
		PublishAt: sql.NullTime{Time: at, Valid: true},
		CreatedAt: testutil.Now(),
		UpdatedAt: testutil.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

func TestPublishDue(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "ed@ledgerline.example", model.RoleEditor)

	now := testutil.Now()
	due := schedulePost(t, db, author.ID, "due", now.Add(-time.Minute))
	exact := schedulePost(t, db, author.ID, "exact", now)
	later := schedulePost(t, db, author.ID, "later", now.Add(time.Hour))

	s := New(db, testutil.TestLoggerSilent())
	s.now = func() time.Time { return now }
	var notified int
	s.OnPublish = func(_ context.Context, n int) { notified = n }

	n, err := s.PublishDue(ctx)
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if n != 2 || notified != 2 {
		t.Errorf("published %d (notified %d), want 2", n, notified)
	}

	q := store.New(db)
	for _, tc := range []struct {
		id     int64
		status string
	}{
		{due.ID, model.StatusPublished},
		{exact.ID, model.StatusPublished},
		{later.ID, model.StatusScheduled},
	} {
		p, err := q.GetPostByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("GetPostByID: %v", err)
		}
		if p.Status != tc.status {
			t.Errorf("post %s status = %q, want %q", p.Slug, p.Status, tc.status)
		}
		if tc.status == model.StatusPublished && !p.PublishedAt.Valid {
			t.Errorf("post %s has no published_at", p.Slug)
		}
	}

	events, err := q.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Category != model.EventCategoryScheduler {
		t.Errorf("event category = %q", events[0].Category)
	}

	n, err = s.PublishDue(ctx)
	if err != nil || n != 0 {
		t.Errorf("second run published %d, err %v", n, err)
	}
}

func TestPruneEvents(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	ctx := context.Background()
	q := store.New(db)

	now := testutil.Now()
	for _, age := range []time.Duration{0, 100 * 24 * time.Hour} {
		if _, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level: model.EventLevelInfo, Category: model.EventCategorySystem,
			Message: "e", Metadata: "{}", CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s := New(db, testutil.TestLoggerSilent())
	s.now = func() time.Time { return now }
	if err := s.PruneEvents(ctx); err != nil {
		t.Fatalf("PruneEvents: %v", err)
	}
	events, _ := q.ListRecentEvents(ctx, 10)
	if len(events) != 1 {
		t.Errorf("got %d events after prune, want 1", len(events))
	}
}
