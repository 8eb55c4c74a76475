// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also records warnings and
// errors in the events table shown on the admin dashboard.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
)

// CategoryKey is the attribute that selects the event category.
const CategoryKey = "category"

// EventLogHandler wraps another handler and writes records at or above its
// level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
	group   string
}

// NewEventLogHandler forwards WARN and above to the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler. The attributes are kept so a category
// set with logger.With still reaches the event log.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone(h.inner.WithAttrs(attrs))
	for _, a := range attrs {
		if h.group != "" && a.Key != CategoryKey {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := h.clone(h.inner.WithGroup(name))
	if name != "" {
		if c.group != "" {
			c.group += "." + name
		} else {
			c.group = name
		}
	}
	return c
}

func (h *EventLogHandler) clone(inner slog.Handler) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: h.queries,
		level:   h.level,
		attrs:   append([]slog.Attr(nil), h.attrs...),
		group:   h.group,
	}
}

// writeToEventLog uses a background context so events survive a cancelled
// request. Insert failures are dropped; logging them would recurse.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	category := ""
	meta := make(map[string]any, r.NumAttrs()+len(h.attrs))
	collect := func(a slog.Attr) {
		if a.Key == CategoryKey {
			category = a.Value.String()
			return
		}
		meta[a.Key] = attrValue(a.Value)
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" && a.Key != CategoryKey {
			a.Key = h.group + "." + a.Key
		}
		collect(a)
		return true
	})
	if category == "" {
		category = inferCategory(r.Message)
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	created := r.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		Metadata:  metadata,
		CreatedAt: created.UTC(),
	})
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		m := make(map[string]any)
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	default:
		return v.String()
	}
}

func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "menu"):
		return model.EventCategoryMenu
	case strings.Contains(msg, "shortcode") || strings.Contains(msg, "post") || strings.Contains(msg, "page"):
		return model.EventCategoryContent
	case strings.Contains(msg, "contact"):
		return model.EventCategoryContact
	case strings.Contains(msg, "file") || strings.Contains(msg, "upload"):
		return model.EventCategoryFile
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	default:
		return model.EventCategorySystem
	}
}
