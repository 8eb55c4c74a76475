// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const fileColumns = `id, uuid, filename, mime_type, size, width, height, has_thumbnail, uploaded_by, created_at`

func scanFile(row interface{ Scan(...any) error }) (File, error) {
	var f File
	err := row.Scan(
		&f.ID,
		&f.Uuid,
		&f.Filename,
		&f.MimeType,
		&f.Size,
		&f.Width,
		&f.Height,
		&f.HasThumbnail,
		&f.UploadedBy,
		&f.CreatedAt,
	)
	return f, err
}

type CreateFileParams struct {
	Uuid         string
	Filename     string
	MimeType     string
	Size         int64
	Width        sql.NullInt64
	Height       sql.NullInt64
	HasThumbnail bool
	UploadedBy   int64
	CreatedAt    time.Time
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (File, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO files (uuid, filename, mime_type, size, width, height, has_thumbnail, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+fileColumns,
		arg.Uuid,
		arg.Filename,
		arg.MimeType,
		arg.Size,
		arg.Width,
		arg.Height,
		arg.HasThumbnail,
		arg.UploadedBy,
		arg.CreatedAt,
	)
	return scanFile(row)
}

func (q *Queries) GetFileByID(ctx context.Context, id int64) (File, error) {
	return scanFile(q.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
}

type ListFilesParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListFiles(ctx context.Context, arg ListFilesParams) ([]File, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func (q *Queries) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}

func (q *Queries) DeleteFile(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	return err
}
