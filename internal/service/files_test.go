// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/testutil"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFileService_UploadImage(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)
	svc := NewFileService(db, t.TempDir(), testutil.TestLoggerSilent())
	ctx := context.Background()

	f, err := svc.Upload(ctx, bytes.NewReader(pngBytes(t, 640, 320)), "Logo.png", user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MimeTypePNG, f.MimeType)
	assert.Equal(t, int64(640), f.Width.Int64)
	assert.Equal(t, int64(320), f.Height.Int64)
	assert.True(t, f.HasThumbnail)
	assert.Len(t, f.Uuid, 36)

	path, err := svc.Path(f)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/thumbnails/"+f.Uuid+"/Logo.png", FileThumbnailURL(f))
	assert.True(t, strings.HasSuffix(FileURL(f), "/download"))
}

func TestFileService_UploadDocument(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)
	svc := NewFileService(db, t.TempDir(), testutil.TestLoggerSilent())

	f, err := svc.Upload(context.Background(), strings.NewReader("%PDF-1.7\n..."), "engagement.pdf", user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MimeTypePDF, f.MimeType)
	assert.False(t, f.HasThumbnail)
	assert.False(t, f.Width.Valid)
	assert.Empty(t, FileThumbnailURL(f))
}

func TestFileService_UploadRejects(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)
	svc := NewFileService(db, t.TempDir(), testutil.TestLoggerSilent())
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader("#!/bin/sh\nrm -rf /\n"), "run.sh", user.ID)
	ve, ok := IsValidation(err)
	require.True(t, ok, "got %v", err)
	assert.Contains(t, ve.Fields["file"], "not allowed")

	_, err = svc.Upload(ctx, strings.NewReader(""), "empty.pdf", user.ID)
	_, ok = IsValidation(err)
	assert.True(t, ok)

	_, err = svc.Upload(ctx, strings.NewReader("x"), "..", user.ID)
	_, ok = IsValidation(err)
	assert.True(t, ok)

	big := bytes.Repeat([]byte("a"), model.MaxUploadSize+1)
	_, err = svc.Upload(ctx, bytes.NewReader(big), "big.csv", user.ID)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestFileService_ListAndDelete(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	user := testutil.CreateUser(t, db, "admin@ledgerline.example", model.RoleAdmin)
	svc := NewFileService(db, t.TempDir(), testutil.TestLoggerSilent())
	ctx := context.Background()

	f, err := svc.Upload(ctx, strings.NewReader("a,b\n1,2\n"), "ledger.csv", user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MimeTypeCSV, f.MimeType)

	files, total, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, files, 1)

	path, err := svc.Path(f)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.True(t, errors.Is(svc.Delete(ctx, f.ID), ErrNotFound))
}
