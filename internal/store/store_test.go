// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledgerline/site/internal/auth"
	"github.com/ledgerline/site/internal/model"
)

// testDB opens a migrated database file under t.TempDir.
func testDB(t *testing.T) (*sql.DB, context.Context, *Queries) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "ledgerline-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db, context.Background(), New(db)
}

func TestSeed(t *testing.T) {
	db, ctx, q := testDB(t)

	opts := SeedOptions{AdminEmail: "owner@ledgerline.example", AdminPassword: "balance-the-books"}
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := q.GetUserByEmail(ctx, opts.AdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("admin.Role = %q", admin.Role)
	}
	if ok, err := auth.CheckPassword(opts.AdminPassword, admin.PasswordHash); err != nil || !ok {
		t.Errorf("seeded password does not verify: %v", err)
	}

	for slug, want := range map[string]int{model.MenuMain: len(mainMenuLinks), model.MenuFooter: len(footerMenuLinks)} {
		m, err := q.GetMenuBySlug(ctx, slug)
		if err != nil {
			t.Fatalf("GetMenuBySlug(%s): %v", slug, err)
		}
		items, err := q.ListMenuItems(ctx, m.ID)
		if err != nil {
			t.Fatalf("ListMenuItems: %v", err)
		}
		if len(items) != want {
			t.Errorf("menu %s has %d items, want %d", slug, len(items), want)
		}
	}

	page, err := q.GetPublishedPageBySlug(ctx, SitemapPageSlug)
	if err != nil {
		t.Fatalf("sitemap page: %v", err)
	}
	if page.Content != "[sitemap]" || page.AuthorID != admin.ID {
		t.Errorf("sitemap page = %+v", page)
	}

	// a second run changes nothing
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if n, _ := q.CountUsers(ctx); n != 1 {
		t.Errorf("users = %d after reseed, want 1", n)
	}
	if n, _ := q.CountPages(ctx); n != 1 {
		t.Errorf("pages = %d after reseed, want 1", n)
	}
	menus, _ := q.ListMenus(ctx)
	if len(menus) != 2 {
		t.Errorf("menus = %d after reseed, want 2", len(menus))
	}
}

func TestSeedGeneratesPassword(t *testing.T) {
	db, ctx, q := testDB(t)

	if err := Seed(ctx, db, SeedOptions{}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if admin.PasswordHash == "" {
		t.Error("admin has no password hash")
	}
}

func TestMenuItemParentIsProtected(t *testing.T) {
	_, ctx, q := testDB(t)
	now := time.Now().UTC()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	parent, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
		MenuID: m.ID, Title: "Services", Target: model.TargetSelf, Position: 1, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	if _, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
		MenuID: m.ID, ParentID: sql.NullInt64{Int64: parent.ID, Valid: true}, Title: "Tax",
		Target: model.TargetSelf, Position: 1, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateMenuItem child: %v", err)
	}

	if err := q.DeleteMenuItem(ctx, parent.ID); err == nil {
		t.Error("deleting a parent item should violate the foreign key")
	}
	if n, err := q.CountMenuItemChildren(ctx, parent.ID); err != nil || n != 1 {
		t.Errorf("children = %d, %v", n, err)
	}

	// deleting the menu cascades to every item
	if err := q.DeleteMenu(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if items, _ := q.ListMenuItems(ctx, m.ID); len(items) != 0 {
		t.Errorf("items left after menu delete: %d", len(items))
	}
}

func TestScheduledPostsDue(t *testing.T) {
	_, ctx, q := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	author, err := q.CreateUser(ctx, CreateUserParams{
		Email: "editor@ledgerline.example", PasswordHash: "x", Role: model.RoleEditor, Name: "Editor",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i, at := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour)} {
		if _, err := q.CreatePost(ctx, CreatePostParams{
			Title: "Scheduled", Slug: "scheduled-" + string(rune('a'+i)), Format: model.FormatHTML,
			Status: model.StatusScheduled, AuthorID: author.ID,
			PublishAt: sql.NullTime{Time: at, Valid: true}, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	due, err := q.ListScheduledPostsDue(ctx, now)
	if err != nil {
		t.Fatalf("ListScheduledPostsDue: %v", err)
	}
	if len(due) != 1 || due[0].Slug != "scheduled-a" {
		t.Errorf("due = %+v", due)
	}
}

func TestDSN(t *testing.T) {
	got := DSN("data/site.db")
	want := "data/site.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=temp_store(MEMORY)"
	if got != want {
		t.Errorf("DSN = %q", got)
	}
	if got := DSN("file:site.db?cache=shared"); !strings.HasPrefix(got, "file:site.db?cache=shared&_pragma=") {
		t.Errorf("DSN with query = %q", got)
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db, ctx, _ := testDB(t)

	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		conns[i] = c
	}
	for i, c := range conns {
		var on int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if on != 1 {
			t.Errorf("conn %d: foreign_keys = %d", i, on)
		}
		_ = c.Close()
	}
}
