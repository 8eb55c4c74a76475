// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers: migrated databases,
// quiet loggers and row fixtures.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger only prints warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent only prints errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB opens a migrated database file in t.TempDir with the production
// driver and settings. It is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(t.TempDir() + "/ledgerline-test.db")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestMemoryDB opens a migrated in-memory database. A single connection is
// used so every query sees the same memory database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// Now is a fixed UTC timestamp for fixtures.
func Now() time.Time {
	return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
}

// CreateUser inserts a user with a placeholder hash.
func CreateUser(t *testing.T, db *sql.DB, email, role string) store.User {
	t.Helper()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$a2V5",
		Role:         role,
		Name:         email,
		CreatedAt:    Now(),
		UpdatedAt:    Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateMenu inserts a menu.
func CreateMenu(t *testing.T, db *sql.DB, name, slug string) store.Menu {
	t.Helper()
	m, err := store.New(db).CreateMenu(context.Background(), store.CreateMenuParams{
		Name: name, Slug: slug, CreatedAt: Now(), UpdatedAt: Now(),
	})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	return m
}

// CreateMenuItem inserts an active item. A zero parentID makes it top level.
func CreateMenuItem(t *testing.T, db *sql.DB, menuID, parentID int64, title string, position int64) store.MenuItem {
	t.Helper()
	var parent sql.NullInt64
	if parentID != 0 {
		parent = sql.NullInt64{Int64: parentID, Valid: true}
	}
	it, err := store.New(db).CreateMenuItem(context.Background(), store.CreateMenuItemParams{
		MenuID:    menuID,
		ParentID:  parent,
		Title:     title,
		Url:       sql.NullString{String: "/" + title, Valid: true},
		Target:    model.TargetSelf,
		Position:  position,
		IsActive:  true,
		CreatedAt: Now(),
		UpdatedAt: Now(),
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	return it
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, db *sql.DB, name, slug string, position int64) store.Category {
	t.Helper()
	c, err := store.New(db).CreateCategory(context.Background(), store.CreateCategoryParams{
		Name: name, Slug: slug, Position: position, CreatedAt: Now(), UpdatedAt: Now(),
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

// CreatePost inserts a post. Published posts get PublishedAt = Now().
func CreatePost(t *testing.T, db *sql.DB, authorID int64, categoryID int64, title, slug, status, content string) store.Post {
	t.Helper()
	var cat sql.NullInt64
	if categoryID != 0 {
		cat = sql.NullInt64{Int64: categoryID, Valid: true}
	}
	var published sql.NullTime
	if status == model.StatusPublished {
		published = sql.NullTime{Time: Now(), Valid: true}
	}
	p, err := store.New(db).CreatePost(context.Background(), store.CreatePostParams{
		Title:       title,
		Slug:        slug,
		Content:     content,
		Format:      model.FormatHTML,
		Status:      status,
		CategoryID:  cat,
		AuthorID:    authorID,
		PublishedAt: published,
		CreatedAt:   Now(),
		UpdatedAt:   Now(),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

// CreatePage inserts a page.
func CreatePage(t *testing.T, db *sql.DB, authorID int64, title, slug, status, content string) store.Page {
	t.Helper()
	var published sql.NullTime
	if status == model.StatusPublished {
		published = sql.NullTime{Time: Now(), Valid: true}
	}
	p, err := store.New(db).CreatePage(context.Background(), store.CreatePageParams{
		Title:       title,
		Slug:        slug,
		Content:     content,
		Format:      model.FormatHTML,
		Status:      status,
		AuthorID:    authorID,
		PublishedAt: published,
		CreatedAt:   Now(),
		UpdatedAt:   Now(),
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	return p
}
