// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/testutil"
)

const testPassword = "correct-horse-battery"

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	svc := NewUserService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Email: " Owner@Ledgerline.Example ", Name: "Owner", Role: model.RoleAdmin, Password: ptr(testPassword)})
	require.NoError(t, err)
	assert.Equal(t, "owner@ledgerline.example", u.Email)
	assert.NotContains(t, u.PasswordHash, testPassword)

	got, err := svc.Authenticate(ctx, "OWNER@ledgerline.example", testPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.LastLoginAt.Valid)

	_, err = svc.Authenticate(ctx, u.Email, "wrong-password-123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = svc.Authenticate(ctx, "nobody@ledgerline.example", testPassword)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestUserService_CreateValidation(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	svc := NewUserService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	_, err := svc.Create(ctx, UserInput{Email: "a@ledgerline.example", Name: "A", Password: ptr(testPassword)})
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    UserInput
		field string
	}{
		{"duplicate email", UserInput{Email: "A@ledgerline.example", Name: "B", Password: ptr(testPassword)}, "email"},
		{"bad email", UserInput{Email: "nope", Name: "B", Password: ptr(testPassword)}, "email"},
		{"short password", UserInput{Email: "b@ledgerline.example", Name: "B", Password: ptr("short")}, "password"},
		{"missing password", UserInput{Email: "b@ledgerline.example", Name: "B"}, "password"},
		{"bad role", UserInput{Email: "b@ledgerline.example", Name: "B", Role: "root", Password: ptr(testPassword)}, "role"},
		{"missing name", UserInput{Email: "b@ledgerline.example", Password: ptr(testPassword)}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			ve, ok := IsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	svc := NewUserService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	admin, err := svc.Create(ctx, UserInput{Email: "admin@ledgerline.example", Name: "Admin", Role: model.RoleAdmin, Password: ptr(testPassword)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, admin.ID, UserInput{Role: model.RoleEditor})
	assert.True(t, errors.Is(err, ErrLastAdmin))

	updated, err := svc.Update(ctx, admin.ID, UserInput{Name: "Head of practice", Password: ptr("a-new-long-password")})
	require.NoError(t, err)
	assert.Equal(t, "Head of practice", updated.Name)
	assert.Equal(t, "admin@ledgerline.example", updated.Email)

	_, err = svc.Authenticate(ctx, admin.Email, "a-new-long-password")
	assert.NoError(t, err)

	_, err = svc.Update(ctx, 404, UserInput{Name: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserService_Delete(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	svc := NewUserService(db, testutil.TestLoggerSilent())
	ctx := context.Background()

	admin, err := svc.Create(ctx, UserInput{Email: "admin@ledgerline.example", Name: "Admin", Role: model.RoleAdmin, Password: ptr(testPassword)})
	require.NoError(t, err)
	editor, err := svc.Create(ctx, UserInput{Email: "ed@ledgerline.example", Name: "Ed", Password: ptr(testPassword)})
	require.NoError(t, err)
	author, err := svc.Create(ctx, UserInput{Email: "au@ledgerline.example", Name: "Au", Password: ptr(testPassword)})
	require.NoError(t, err)
	testutil.CreatePost(t, db, author.ID, 0, "Post", "post", model.StatusDraft, "")

	assert.True(t, errors.Is(svc.Delete(ctx, admin.ID, admin.ID), ErrSelfDelete))
	assert.True(t, errors.Is(svc.Delete(ctx, editor.ID, admin.ID), ErrLastAdmin))
	assert.True(t, errors.Is(svc.Delete(ctx, admin.ID, author.ID), ErrUserHasContent))

	require.NoError(t, svc.Delete(ctx, admin.ID, editor.ID))
	_, err = svc.Get(ctx, editor.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
