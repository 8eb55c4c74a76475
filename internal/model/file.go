// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
	MimeTypeCSV  = "text/csv"
	MimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxUploadSize caps a single uploaded file.
const MaxUploadSize = 20 << 20

// ThumbnailSize is the bounding box for generated image thumbnails.
const ThumbnailSize = 300

// IsImageMime reports whether thumbnails can be generated for the MIME type.
func IsImageMime(mime string) bool {
	return mime == MimeTypeJPEG || mime == MimeTypePNG || mime == MimeTypeGIF || mime == MimeTypeWebP
}

// IsAllowedMime reports whether files of the MIME type may be uploaded.
func IsAllowedMime(mime string) bool {
	switch mime {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP,
		MimeTypePDF, MimeTypeCSV, MimeTypeXLSX, MimeTypeDOCX:
		return true
	}
	return false
}
