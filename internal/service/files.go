// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/site/internal/imaging"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/util"
)

// DefaultUploadDir is used when no uploads directory is configured.
const DefaultUploadDir = "./uploads"

// ErrFileTooLarge rejects uploads over model.MaxUploadSize.
var ErrFileTooLarge = errors.New("file exceeds the upload size limit")

// FileService stores uploaded documents and images.
type FileService struct {
	queries   *store.Queries
	processor *imaging.Processor
	logger    *slog.Logger
}

// NewFileService creates a FileService writing under uploadDir.
func NewFileService(db *sql.DB, uploadDir string, logger *slog.Logger) *FileService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		logger:    logger,
	}
}

// Upload reads r, checks its type and size, writes it to disk and records
// it. Images get a thumbnail.
func (s *FileService) Upload(ctx context.Context, r io.Reader, filename string, userID int64) (store.File, error) {
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return store.File{}, invalid("file", "has an invalid name")
	}

	data, err := io.ReadAll(io.LimitReader(r, model.MaxUploadSize+1))
	if err != nil {
		return store.File{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > model.MaxUploadSize {
		return store.File{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return store.File{}, invalid("file", "is empty")
	}

	mime := imaging.DetectMimeType(data, name)
	if !model.IsAllowedMime(mime) {
		return store.File{}, invalid("file", fmt.Sprintf("type %s is not allowed", mime))
	}

	id := uuid.New().String()
	params := store.CreateFileParams{
		Uuid:       id,
		Filename:   name,
		MimeType:   mime,
		Size:       int64(len(data)),
		UploadedBy: userID,
		CreatedAt:  time.Now().UTC(),
	}

	if model.IsImageMime(mime) {
		res, err := s.processor.ProcessImage(data, id, name)
		if res == nil {
			return store.File{}, fmt.Errorf("processing image: %w", err)
		}
		if err != nil {
			// the original is stored; a missing thumbnail is not fatal
			s.logger.Warn("thumbnail failed", "category", model.EventCategoryFile, "uuid", id, "error", err)
		}
		params.MimeType = res.MimeType
		params.Size = res.Size
		params.Width = sql.NullInt64{Int64: int64(res.Width), Valid: true}
		params.Height = sql.NullInt64{Int64: int64(res.Height), Valid: true}
		params.HasThumbnail = res.HasThumbnail
	} else if _, err := s.processor.SaveFile(data, id, name); err != nil {
		return store.File{}, fmt.Errorf("saving file: %w", err)
	}

	f, err := s.queries.CreateFile(ctx, params)
	if err != nil {
		_ = s.processor.Delete(id)
		return f, fmt.Errorf("recording file: %w", err)
	}
	s.logger.Info("file uploaded", "category", model.EventCategoryFile, "file_id", f.ID, "mime", f.MimeType)
	return f, nil
}

// List returns files newest first with the total count.
func (s *FileService) List(ctx context.Context, limit, offset int64) ([]store.File, int64, error) {
	total, err := s.queries.CountFiles(ctx)
	if err != nil {
		return nil, 0, err
	}
	files, err := s.queries.ListFiles(ctx, store.ListFilesParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	if files == nil {
		files = []store.File{}
	}
	return files, total, nil
}

// Get returns file id or ErrNotFound.
func (s *FileService) Get(ctx context.Context, id int64) (store.File, error) {
	f, err := s.queries.GetFileByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return f, fmt.Errorf("file %d: %w", id, ErrNotFound)
	}
	return f, err
}

// Path returns the on-disk location of the original of f.
func (s *FileService) Path(f store.File) (string, error) {
	return s.processor.OriginalPath(f.Uuid, f.Filename)
}

// Delete removes the record and the stored files.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.queries.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("deleting file %d: %w", id, err)
	}
	if err := s.processor.Delete(f.Uuid); err != nil {
		s.logger.Warn("removing stored file failed", "category", model.EventCategoryFile, "file_id", id, "error", err)
	}
	return nil
}

// FileURL returns the public download path of f.
func FileURL(f store.File) string {
	return fmt.Sprintf("/files/%d/download", f.ID)
}

// FileThumbnailURL returns the static thumbnail path of f, or "" when it has none.
func FileThumbnailURL(f store.File) string {
	if !f.HasThumbnail {
		return ""
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", imaging.ThumbnailsDir, f.Uuid, f.Filename)
}
