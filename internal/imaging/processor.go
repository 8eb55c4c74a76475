// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging stores uploaded files on disk and derives thumbnails for
// images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/util"
)

// Upload subdirectories.
const (
	OriginalsDir  = "originals"
	ThumbnailsDir = "thumbnails"
)

// ImageResult describes a stored image.
type ImageResult struct {
	Width        int
	Height       int
	MimeType     string
	Size         int64
	Path         string
	HasThumbnail bool
}

// Processor writes files under uploadDir as <kind>/<id>/<filename>.
type Processor struct {
	uploadDir string
	thumbSize int
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
		thumbSize: model.ThumbnailSize,
	}
}

// UploadDir returns the root directory.
func (p *Processor) UploadDir() string { return p.uploadDir }

// ProcessImage decodes data, applies the EXIF orientation, stores the
// re-encoded original (without metadata) and a thumbnail that fits in
// ThumbnailSize.
func (p *Processor) ProcessImage(data []byte, id, filename string) (*ImageResult, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(data))

	encoded, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	path, err := p.save(OriginalsDir, id, filename, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}

	res := &ImageResult{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(encoded)),
		Path:     path,
	}

	thumb := imaging.Fit(img, p.thumbSize, p.thumbSize, imaging.Lanczos)
	thumbData, err := encodeImage(thumb, format, 85)
	if err != nil {
		return res, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if _, err := p.save(ThumbnailsDir, id, filename, thumbData); err != nil {
		return res, fmt.Errorf("failed to save thumbnail: %w", err)
	}
	res.HasThumbnail = true
	return res, nil
}

// SaveFile stores data unchanged as the original of id.
func (p *Processor) SaveFile(data []byte, id, filename string) (string, error) {
	return p.save(OriginalsDir, id, filename, data)
}

// OriginalPath returns where the original of id is stored.
func (p *Processor) OriginalPath(id, filename string) (string, error) {
	return util.SafeJoinPath(p.uploadDir, OriginalsDir, id, filename)
}

// ThumbnailPath returns where the thumbnail of id is stored.
func (p *Processor) ThumbnailPath(id, filename string) (string, error) {
	return util.SafeJoinPath(p.uploadDir, ThumbnailsDir, id, filename)
}

// Delete removes every file stored for id.
func (p *Processor) Delete(id string) error {
	for _, kind := range []string{OriginalsDir, ThumbnailsDir} {
		dir, err := util.SafeJoinPath(p.uploadDir, kind, id)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", kind, err)
		}
	}
	return nil
}

// DetectMimeType returns the MIME type of data, using the file extension for
// formats that content sniffing cannot tell apart (office documents, CSV).
func DetectMimeType(data []byte, filename string) string {
	sniffed := http.DetectContentType(data)
	if i := strings.Index(sniffed, ";"); i != -1 {
		sniffed = sniffed[:i]
	}
	if model.IsImageMime(sniffed) || sniffed == model.MimeTypePDF {
		return sniffed
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		if strings.HasPrefix(sniffed, "text/") {
			return model.MimeTypeCSV
		}
	case ".xlsx":
		if sniffed == "application/zip" {
			return model.MimeTypeXLSX
		}
	case ".docx":
		if sniffed == "application/zip" {
			return model.MimeTypeDOCX
		}
	}
	return sniffed
}

func (p *Processor) save(kind, id, filename string, data []byte) (string, error) {
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	dir, err := util.SafeJoinPath(p.uploadDir, kind, id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// readExifOrientation returns 1 (normal) when there is no usable tag.
func readExifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes EXIF orientations 2 through 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		// no pure Go WebP encoder; WebP is stored as JPEG
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		// rejected: CVE-2023-36308 in disintegration/imaging
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	default:
		return model.MimeTypeJPEG
	}
}
