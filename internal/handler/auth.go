// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/session"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	users           *service.UserService
	events          *service.EventService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable the
// account lockout.
func NewAuthHandler(users *service.UserService, events *service.EventService, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		users:           users,
		events:          events,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

type loginData struct {
	Email string
	Error string
	Next  string
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeRedirectTarget(r.URL.Query().Get("next"), "")
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, safeRedirectTarget(next, redirectAdmin), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginData{Next: next})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginData{Error: "Invalid form data"})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := safeRedirectTarget(r.FormValue("next"), "")
	data := loginData{Email: email, Next: next}

	if email == "" || password == "" {
		data.Error = "Email and password are required"
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	clientIP := middleware.ClientIP(r)
	ctx := r.Context()

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(email); locked {
			_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
			data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining))
			h.renderLogin(w, r, http.StatusTooManyRequests, data)
			return
		}
	}

	user, err := h.users.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			logAndInternalError(w, "authenticating user", "error", err)
			return
		}

		slog.Warn("login failed", "category", model.EventCategoryAuth, "email", email, "ip", clientIP)
		data.Error = "Invalid email or password"
		status := http.StatusUnauthorized
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailure(email); locked {
				_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "Account locked due to failed attempts", nil, clientIP,
					map[string]any{"email": email, "duration": lockDuration.String()})
				data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration))
				status = http.StatusTooManyRequests
			} else if remaining := h.loginProtection.RemainingAttempts(email); remaining > 0 && remaining <= 3 {
				data.Error = fmt.Sprintf("Invalid email or password. %d attempt(s) left before a temporary lockout.", remaining)
			}
		}
		h.renderLogin(w, r, status, data)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(email)
	}

	if err := session.Login(ctx, h.sessionManager, user.ID); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", &user.ID, clientIP, map[string]any{"email": user.Email})

	session.SetFlash(ctx, h.sessionManager, "Welcome back, "+user.Name+".")
	http.Redirect(w, r, safeRedirectTarget(next, redirectAdmin), http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)
	if userID != nil {
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out", userID, middleware.ClientIP(r), nil)
	}

	if err := session.Logout(r.Context(), h.sessionManager); err != nil {
		logAndInternalError(w, "session destroy error", "error", err)
		return
	}

	if userID != nil {
		slog.Info("user logged out", "user_id", *userID)
	}
	http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginData) {
	renderPage(w, r, h.renderer, status, "auth/login", render.TemplateData{
		Title: "Log in",
		Data:  data,
	})
}

// formatDuration renders a lockout duration for people.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
