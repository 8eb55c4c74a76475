// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// UserResponse represents a user in API responses. The password hash is
// never sent.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func storeUserToResponse(u store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		LastLoginAt: nullTimePtr(u.LastLoginAt),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ListUsers handles GET /api/v1/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "user", "list users")
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, storeUserToResponse(u))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.users.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, storeUserToResponse(u), nil)
}

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}

	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "user", "create user")
		return
	}
	h.logUserEvent(r, "User created", u)
	WriteCreated(w, storeUserToResponse(u))
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var in service.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}

	u, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "user", "update user")
		return
	}
	h.logUserEvent(r, "User updated", u)
	WriteSuccess(w, storeUserToResponse(u), nil)
}

// DeleteUser handles DELETE /api/v1/users/{id}. Users cannot delete
// themselves and the last administrator is kept.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), middleware.GetUserID(r), id); err != nil {
		writeServiceError(w, err, "user", "delete user")
		return
	}
	if h.events != nil {
		_ = h.events.LogInfo(r.Context(), model.EventCategoryUser, "User deleted",
			middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{"user_id": id})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logUserEvent(r *http.Request, message string, u store.User) {
	if h.events == nil {
		return
	}
	_ = h.events.LogInfo(r.Context(), model.EventCategoryUser, message,
		middleware.GetUserIDPtr(r), middleware.ClientIP(r),
		map[string]any{"user_id": u.ID, "email": u.Email, "role": u.Role})
}
