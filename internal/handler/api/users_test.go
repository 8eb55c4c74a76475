// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/testutil"
)

func TestUserCRUD(t *testing.T) {
	db, h := testSetup(t)
	admin := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)

	w := executeHandler(t, h.CreateUser, withUser(newJSONRequest(t, http.MethodPost, "/",
		`{"email":"Clerk@Ledgerline.example","name":"Clerk","password":"ledger-and-pencil"}`, nil), admin))
	assertStatusCode(t, w, http.StatusCreated)
	clerk := unmarshalData[UserResponse](t, w)
	if clerk.Email != "clerk@ledgerline.example" || clerk.Role != model.RoleEditor {
		t.Fatalf("created = %+v", clerk)
	}
	if strings.Contains(w.Body.String(), "argon2") {
		t.Error("response leaks the password hash")
	}

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"duplicate email", `{"email":"clerk@ledgerline.example","name":"Other","password":"ledger-and-pencil"}`, "email"},
		{"short password", `{"email":"new@ledgerline.example","name":"New","password":"short"}`, "password"},
		{"no password", `{"email":"new@ledgerline.example","name":"New"}`, "password"},
		{"bad role", `{"email":"new@ledgerline.example","name":"New","role":"owner","password":"ledger-and-pencil"}`, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeHandler(t, h.CreateUser, withUser(newJSONRequest(t, http.MethodPost, "/", tt.body, nil), admin))
			assertStatusCode(t, w, http.StatusUnprocessableEntity)
			resp := assertErrorResponse(t, w, "validation_error")
			if resp.Error.Details[tt.field] == "" {
				t.Errorf("details = %v, want %s", resp.Error.Details, tt.field)
			}
		})
	}

	w = executeHandler(t, h.UpdateUser, withUser(newJSONRequest(t, http.MethodPut, "/", `{"name":"Senior clerk"}`,
		map[string]string{"id": itoa(clerk.ID)}), admin))
	assertStatusCode(t, w, http.StatusOK)
	if got := unmarshalData[UserResponse](t, w); got.Name != "Senior clerk" || got.Email != clerk.Email {
		t.Errorf("updated = %+v", got)
	}

	w = executeHandler(t, h.ListUsers, withUser(newGetRequest(t, "/api/v1/users", nil), admin))
	if users, meta := unmarshalList[UserResponse](t, w); len(users) != 2 || meta.Total != 2 {
		t.Errorf("users = %+v", users)
	}

	w = executeHandler(t, h.DeleteUser, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(clerk.ID)}), admin))
	assertStatusCode(t, w, http.StatusNoContent)

	events, err := h.events.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	var messages []string
	for _, e := range events {
		messages = append(messages, e.Message)
	}
	joined := strings.Join(messages, "|")
	for _, want := range []string{"User created", "User updated", "User deleted"} {
		if !strings.Contains(joined, want) {
			t.Errorf("events %q missing %q", joined, want)
		}
	}
}

func TestDeleteUserGuards(t *testing.T) {
	db, h := testSetup(t)
	admin := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)
	author := testutil.CreateUser(t, db, "author@ledgerline.example", model.RoleEditor)
	testutil.CreatePost(t, db, author.ID, 0, "Owned", "owned", model.StatusDraft, "")

	tests := []struct {
		name     string
		actor    int64
		target   int64
		wantCode int
	}{
		{"self", admin.ID, admin.ID, http.StatusForbidden},
		{"last admin", author.ID, admin.ID, http.StatusConflict},
		{"owns content", admin.ID, author.ID, http.StatusConflict},
		{"unknown", admin.ID, 999, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := admin
			actor.ID = tt.actor
			w := executeHandler(t, h.DeleteUser, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(tt.target)}), actor))
			assertStatusCode(t, w, tt.wantCode)
		})
	}
}
