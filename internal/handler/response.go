// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/session"
)

// errorData is the data of the error template.
type errorData struct {
	Status  int
	Message string
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message string) {
	if sm != nil {
		session.SetFlash(r.Context(), sm, message)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage renders a template, falling back to a plain 500 when the
// template itself fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, status, name, data); err != nil {
		logAndInternalError(w, "rendering template", "template", name, "path", r.URL.Path, "error", err)
	}
}

// renderError renders the error page with status.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, message string) {
	renderPage(w, r, renderer, status, "public/error", render.TemplateData{
		Title: http.StatusText(status),
		Data:  errorData{Status: status, Message: message},
	})
}

// renderNotFound renders the 404 page.
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer) {
	renderError(w, r, renderer, http.StatusNotFound, "The page you are looking for does not exist or has moved.")
}

// serverError logs err and renders the 500 page.
func serverError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logMsg string, err error) {
	slog.Error(logMsg, "path", r.URL.Path, "error", err)
	renderError(w, r, renderer, http.StatusInternalServerError, "Something went wrong on our side. Please try again later.")
}
