// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename keeps only the base name of an uploaded file so client
// supplied names like "../../etc/passwd" cannot address other directories.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if safe == "." || safe == ".." || safe == "" || safe == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// ValidatePathWithinBase fails when targetPath resolves outside basePath.
func ValidatePathWithinBase(basePath, targetPath string) error {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}

	// trailing separator so /uploads-other does not match /uploads
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes upload directory")
	}
	return nil
}

// SafeJoinPath joins components under basePath and rejects the result if it
// escapes basePath.
func SafeJoinPath(basePath string, components ...string) (string, error) {
	full := filepath.Join(append([]string{basePath}, components...)...)
	if err := ValidatePathWithinBase(basePath, full); err != nil {
		return "", err
	}
	return full, nil
}
