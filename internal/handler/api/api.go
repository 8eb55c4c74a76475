// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API under /api/v1.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ledgerline/site/internal/handler"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/version"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxJSONBody    = 1 << 20
)

// Config lists the services the API handlers call.
type Config struct {
	Posts      *service.PostService
	Pages      *service.PageService
	Categories *service.CategoryService
	Contacts   *service.ContactService
	Menus      *service.MenuService
	Users      *service.UserService
	Files      *service.FileService
	Content    *service.ContentService
	Events     *service.EventService
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	posts      *service.PostService
	pages      *service.PageService
	categories *service.CategoryService
	contacts   *service.ContactService
	menus      *service.MenuService
	users      *service.UserService
	files      *service.FileService
	content    *service.ContentService
	events     *service.EventService
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		posts:      cfg.Posts,
		pages:      cfg.Pages,
		categories: cfg.Categories,
		contacts:   cfg.Contacts,
		menus:      cfg.Menus,
		users:      cfg.Users,
		files:      cfg.Files,
		content:    cfg.Content,
		events:     cfg.Events,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// conflictErrors are refusals caused by the current state of the data.
var conflictErrors = []error{
	service.ErrMenuItemHasChildren,
	service.ErrDefaultMenu,
	service.ErrLastAdmin,
	service.ErrUserHasContent,
}

// writeServiceError maps a service error onto the response. action names
// what failed, e.g. "update page", and is only used for unexpected errors.
func writeServiceError(w http.ResponseWriter, err error, entityName, action string) {
	if ve, ok := service.IsValidation(err); ok {
		WriteValidationError(w, ve.Fields)
		return
	}
	for _, sentinel := range conflictErrors {
		if errors.Is(err, sentinel) {
			WriteConflict(w, capitalizeFirst(sentinel.Error()))
			return
		}
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, capitalizeFirst(entityName)+" not found")
	case errors.Is(err, service.ErrSelfDelete):
		WriteForbidden(w, capitalizeFirst(service.ErrSelfDelete.Error()))
	case errors.Is(err, service.ErrFileTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "file_too_large", capitalizeFirst(service.ErrFileTooLarge.Error()), nil)
	default:
		slog.Error("api request failed", "action", action, "error", err)
		WriteInternalError(w, "Failed to "+action)
	}
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	API     string `json:"api"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: version.Version,
		API:     "v1",
	}, nil)
}

// EntityFetcher is a function that fetches an entity by ID.
type EntityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses an ID from the URL and fetches the entity.
// Returns the entity and true if successful, or zero value and false if error (response written).
// The entityName is used for error messages (e.g., "page", "menu", "file").
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		writeServiceError(w, err, entityName, "retrieve "+entityName)
		return zero, false
	}

	return entity, true
}

// requireID parses the id URL parameter, writing a 400 when it is malformed.
func requireID(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes a JSON request body of at most maxJSONBody bytes,
// writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// listParams reads page and per_page from the query string.
func listParams(r *http.Request) (page, perPage int, limit, offset int64) {
	page = handler.ParsePage(r)
	perPage = handler.ParsePerPage(r, defaultPerPage, maxPerPage)
	return page, perPage, int64(perPage), handler.Offset(page, perPage)
}

// pageMeta builds list metadata for total items.
func pageMeta(total int64, page, perPage int) *Meta {
	p := handler.NewPagination(page, perPage, total)
	return &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   p.TotalPages,
	}
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
