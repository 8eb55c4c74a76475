// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/site/internal/auth"
	"github.com/ledgerline/site/internal/model"
)

// Defaults for the first administrator.
const (
	DefaultAdminEmail = "admin@ledgerline.local"
	DefaultAdminName  = "Administrator"
)

// SitemapPageSlug is the seeded page that lists every category and post.
const SitemapPageSlug = "sitemap"

// SeedOptions configures Seed. An empty AdminPassword makes Seed generate
// one and log it once.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

type seedLink struct {
	title string
	url   string
}

var (
	mainMenuLinks = []seedLink{
		{"Home", "/"},
		{"Blog", "/blog"},
		{"Sitemap", "/" + SitemapPageSlug},
		{"Contact", "/contact"},
	}
	footerMenuLinks = []seedLink{
		{"Contact", "/contact"},
		{"Sitemap", "/" + SitemapPageSlug},
	}
)

// Seed creates the initial data. Every step is skipped when its data already
// exists, so running it on each start is safe.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)

	admin, err := seedAdmin(ctx, queries, opts)
	if err != nil {
		return err
	}

	if err := seedMenu(ctx, db, "Main", model.MenuMain, mainMenuLinks); err != nil {
		return err
	}
	if err := seedMenu(ctx, db, "Footer", model.MenuFooter, footerMenuLinks); err != nil {
		return err
	}

	return seedSitemapPage(ctx, queries, admin.ID)
}

func seedAdmin(ctx context.Context, queries *Queries, opts SeedOptions) (User, error) {
	email := opts.AdminEmail
	if email == "" {
		email = DefaultAdminEmail
	}

	existing, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", email)
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("checking for admin user: %w", err)
	}

	password := opts.AdminPassword
	generated := password == ""
	if generated {
		if password, err = randomPassword(); err != nil {
			return User{}, err
		}
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, fmt.Errorf("creating admin user: %w", err)
	}

	if generated {
		// the password goes to stdout only; WARN records are persisted as events
		slog.Warn("created default admin user with a generated password; change it after the first login",
			"category", model.EventCategorySystem, "id", user.ID, "email", user.Email)
		slog.Info("generated admin password", "email", user.Email, "password", password)
	} else {
		slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	}
	return user, nil
}

func seedMenu(ctx context.Context, db *sql.DB, name, slug string, links []seedLink) error {
	queries := New(db)
	if n, err := queries.MenuSlugExists(ctx, slug); err != nil {
		return fmt.Errorf("checking menu %q: %w", slug, err)
	} else if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := queries.WithTx(tx)

	now := time.Now().UTC()
	menu, err := qtx.CreateMenu(ctx, CreateMenuParams{Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("creating menu %q: %w", slug, err)
	}
	for i, link := range links {
		if _, err := qtx.CreateMenuItem(ctx, CreateMenuItemParams{
			MenuID:    menu.ID,
			Title:     link.title,
			Url:       sql.NullString{String: link.url, Valid: true},
			Target:    model.TargetSelf,
			Position:  int64(i + 1),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("creating item %q of menu %q: %w", link.title, slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing menu %q: %w", slug, err)
	}

	slog.Info("seeded menu", "slug", slug, "items", len(links))
	return nil
}

func seedSitemapPage(ctx context.Context, queries *Queries, authorID int64) error {
	if n, err := queries.PageSlugExists(ctx, SitemapPageSlug); err != nil {
		return fmt.Errorf("checking sitemap page: %w", err)
	} else if n > 0 {
		return nil
	}

	now := time.Now().UTC()
	if _, err := queries.CreatePage(ctx, CreatePageParams{
		Title:           "Sitemap",
		Slug:            SitemapPageSlug,
		Content:         "[sitemap]",
		Format:          model.FormatHTML,
		Status:          model.StatusPublished,
		MetaDescription: "Every topic and article on the site.",
		AuthorID:        authorID,
		PublishedAt:     sql.NullTime{Time: now, Valid: true},
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		return fmt.Errorf("creating sitemap page: %w", err)
	}
	slog.Info("seeded sitemap page", "slug", SitemapPageSlug)
	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
