// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/testutil"
)

func TestPageService_CRUD(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	author := testutil.CreateUser(t, db, "author@ledgerline.example", model.RoleEditor)
	svc := NewPageService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	p, err := svc.Create(ctx, author.ID, PageInput{Title: ptr("Our Services"), Content: ptr("[sitemap]")})
	require.NoError(t, err)
	assert.Equal(t, "our-services", p.Slug)
	assert.Equal(t, model.StatusDraft, p.Status)

	published, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	p, err = svc.Update(ctx, p.ID, PageInput{Status: ptr(model.StatusPublished), MetaDescription: ptr("What we do")})
	require.NoError(t, err)
	assert.True(t, p.PublishedAt.Valid)
	assert.Equal(t, "[sitemap]", p.Content)

	got, err := svc.GetPublishedBySlug(ctx, "our-services")
	require.NoError(t, err)
	assert.Equal(t, "What we do", got.MetaDescription)

	p, err = svc.Update(ctx, p.ID, PageInput{Status: ptr(model.StatusDraft)})
	require.NoError(t, err)
	assert.False(t, p.PublishedAt.Valid)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPageService_Validation(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	author := testutil.CreateUser(t, db, "author@ledgerline.example", model.RoleEditor)
	svc := NewPageService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	_, err := svc.Create(ctx, author.ID, PageInput{Title: ptr("About")})
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    PageInput
		field string
	}{
		{"missing title", PageInput{}, "title"},
		{"duplicate slug", PageInput{Title: ptr("About Us"), Slug: ptr("about")}, "slug"},
		{"reserved slug", PageInput{Title: ptr("Blog")}, "slug"},
		{"scheduled not allowed", PageInput{Title: ptr("X"), Status: ptr(model.StatusScheduled)}, "status"},
		{"long description", PageInput{Title: ptr("X"), MetaDescription: ptr(strings.Repeat("a", 301))}, "meta_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author.ID, tt.in)
			ve, ok := IsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}
