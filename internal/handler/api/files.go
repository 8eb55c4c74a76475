// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// FileResponse represents an uploaded file in API responses.
type FileResponse struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        *int64    `json:"width,omitempty"`
	Height       *int64    `json:"height,omitempty"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploadedBy   int64     `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func storeFileToResponse(f store.File) FileResponse {
	resp := FileResponse{
		ID:           f.ID,
		UUID:         f.Uuid,
		Filename:     f.Filename,
		MimeType:     f.MimeType,
		Size:         f.Size,
		URL:          service.FileURL(f),
		ThumbnailURL: service.FileThumbnailURL(f),
		UploadedBy:   f.UploadedBy,
		CreatedAt:    f.CreatedAt,
	}
	if f.Width.Valid {
		resp.Width = &f.Width.Int64
	}
	if f.Height.Valid {
		resp.Height = &f.Height.Int64
	}
	return resp
}

// ListFiles handles GET /api/v1/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	page, perPage, limit, offset := listParams(r)
	files, total, err := h.files.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "file", "list files")
		return
	}

	responses := make([]FileResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, storeFileToResponse(f))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// GetFile handles GET /api/v1/files/{id}.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, ok := requireEntityByID(w, r, "file", func(id int64) (store.File, error) {
		return h.files.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, storeFileToResponse(f), nil)
}

// UploadFile handles POST /api/v1/files with a multipart "file" field.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(model.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, service.ErrFileTooLarge, "file", "upload file")
			return
		}
		WriteBadRequest(w, "Failed to parse multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided. Use the 'file' field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	f, err := h.files.Upload(r.Context(), file, header.Filename, middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, err, "file", "upload file")
		return
	}
	WriteCreated(w, storeFileToResponse(f))
}

// DeleteFile handles DELETE /api/v1/files/{id}.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "file")
	if !ok {
		return
	}
	if err := h.files.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "file", "delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile handles GET /files/{id}/download. The original is sent as an
// attachment under its stored name.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	f, ok := requireEntityByID(w, r, "file", func(id int64) (store.File, error) {
		return h.files.Get(r.Context(), id)
	})
	if !ok {
		return
	}

	path, err := h.files.Path(f)
	if err != nil {
		slog.Error("invalid stored file path", "file_id", f.ID, "error", err)
		WriteNotFound(w, "File not found")
		return
	}
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("stored file missing", "category", model.EventCategoryFile, "file_id", f.ID)
			WriteNotFound(w, "File not found")
			return
		}
		writeServiceError(w, err, "file", "open file")
		return
	}
	defer func() { _ = fh.Close() }()

	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, f.Filename, f.CreatedAt, fh)
}
