// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background jobs: publishing scheduled posts and
// pruning old events.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
)

// Job schedules.
const (
	PublishSchedule = "* * * * *"
	PruneSchedule   = "@daily"
)

// EventRetention is how long events are kept before the prune job deletes them.
const EventRetention = 90 * 24 * time.Hour

// Scheduler handles scheduled tasks like publishing posts.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time

	// OnPublish runs after posts were published, e.g. to drop caches.
	OnPublish func(ctx context.Context, published int)
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(PublishSchedule, func() {
		if _, err := s.PublishDue(context.Background()); err != nil {
			s.logger.Error("failed to publish scheduled posts", "category", model.EventCategoryScheduler, "error", err)
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(PruneSchedule, func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune events", "category", model.EventCategoryScheduler, "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Every adds a job on a cron spec. A failing run is logged under the
// scheduler category.
func (s *Scheduler) Every(spec, name string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil {
			s.logger.Error("scheduled job failed", "category", model.EventCategoryScheduler, "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	return nil
}

// PublishDue publishes every scheduled post whose publish_at has passed and
// returns how many were published. A failing post is logged and skipped.
func (s *Scheduler) PublishDue(ctx context.Context) (int, error) {
	queries := store.New(s.db)

	now := s.now().Truncate(time.Second)
	posts, err := queries.ListScheduledPostsDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	s.logger.Info("processing scheduled posts", "count", len(posts))

	published := 0
	for _, post := range posts {
		if err := s.publishPost(ctx, queries, post, now); err != nil {
			s.logger.Error("failed to publish scheduled post",
				"category", model.EventCategoryScheduler,
				"post_id", post.ID,
				"error", err,
			)
			continue
		}
		published++
		s.logger.Info("published scheduled post",
			"post_id", post.ID,
			"post_title", post.Title,
			"publish_at", post.PublishAt.Time,
		)
	}

	if published > 0 && s.OnPublish != nil {
		s.OnPublish(ctx, published)
	}
	return published, nil
}

// publishPost publishes a single scheduled post and records the event.
func (s *Scheduler) publishPost(ctx context.Context, queries *store.Queries, post store.Post, now time.Time) error {
	if err := queries.PublishPost(ctx, store.PublishPostParams{ID: post.ID, PublishedAt: now}); err != nil {
		return err
	}

	metadataJSON, _ := json.Marshal(map[string]any{
		"post_id":      post.ID,
		"post_slug":    post.Slug,
		"publish_at":   post.PublishAt.Time.Format(time.RFC3339),
		"published_at": now.Format(time.RFC3339),
	})

	_, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryScheduler,
		Message:   "Post published automatically by scheduler: " + post.Title,
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled publish event", "error", err)
	}
	return nil
}

// PruneEvents deletes events older than EventRetention.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	return store.New(s.db).DeleteEventsBefore(ctx, s.now().Add(-EventRetention))
}
