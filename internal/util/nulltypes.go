// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidID is returned by ParseID for anything that is not a positive
// base-10 integer.
var ErrInvalidID = errors.New("invalid identifier")

// ParseID parses a record identifier taken from a URL or form value.
// Leading and trailing whitespace is tolerated; signs, decimals and zero are not.
func ParseID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// NullInt64FromPtr converts an optional JSON field into a nullable column.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr != nil {
		return sql.NullInt64{Int64: *ptr, Valid: true}
	}
	return sql.NullInt64{}
}

// PtrFromNullInt64 is the inverse of NullInt64FromPtr.
func PtrFromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// ParseNullInt64Positive parses an optional form value. Empty, malformed and
// non-positive input all yield NULL.
func ParseNullInt64Positive(s string) sql.NullInt64 {
	id, err := ParseID(s)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

// NullStringFromValue stores empty strings as NULL.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullStringFromPtr converts an optional JSON field into a nullable column.
// A non-nil pointer to "" is stored as NULL as well.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{}
	}
	return NullStringFromValue(*ptr)
}

// NullTimeFromPtr converts an optional timestamp into a nullable UTC column.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr == nil || ptr.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: ptr.UTC(), Valid: true}
}
