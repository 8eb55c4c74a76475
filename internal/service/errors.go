// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound wraps lookups of records that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrMenuItemHasChildren rejects deleting an item that still has children.
	ErrMenuItemHasChildren = errors.New("menu item has children")
	// ErrDefaultMenu rejects deleting the main or footer menu.
	ErrDefaultMenu = errors.New("default menus cannot be deleted")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSelfDelete rejects a user deleting their own account.
	ErrSelfDelete = errors.New("you cannot delete your own account")
	// ErrLastAdmin rejects removing the only administrator.
	ErrLastAdmin = errors.New("the last administrator cannot be removed")
	// ErrUserHasContent rejects deleting a user who still owns posts, pages or files.
	ErrUserHasContent = errors.New("user still owns content")
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed, otherwise nil.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// isForeignKeyViolation reports whether err is SQLite refusing a write that
// would break a REFERENCES constraint. Both drivers use SQLite's message.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
