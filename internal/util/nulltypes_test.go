// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"+3", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"12abc", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("ParseID(%q) err = %v, want ErrInvalidID", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseID(%q) = %d, %v, want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestNullInt64Ptr(t *testing.T) {
	if NullInt64FromPtr(nil).Valid {
		t.Error("nil pointer should be NULL")
	}
	v := int64(7)
	n := NullInt64FromPtr(&v)
	if !n.Valid || n.Int64 != 7 {
		t.Errorf("got %+v", n)
	}
	back := PtrFromNullInt64(n)
	if back == nil || *back != 7 {
		t.Errorf("round trip lost value: %v", back)
	}
	if PtrFromNullInt64(NullInt64FromPtr(nil)) != nil {
		t.Error("NULL should map to nil")
	}
}

func TestParseNullInt64Positive(t *testing.T) {
	if n := ParseNullInt64Positive("5"); !n.Valid || n.Int64 != 5 {
		t.Errorf("got %+v", n)
	}
	for _, s := range []string{"", "0", "-1", "x"} {
		if ParseNullInt64Positive(s).Valid {
			t.Errorf("ParseNullInt64Positive(%q) should be NULL", s)
		}
	}
}

func TestNullStrings(t *testing.T) {
	if NullStringFromValue("").Valid {
		t.Error("empty string should be NULL")
	}
	if n := NullStringFromValue("/about"); !n.Valid || n.String != "/about" {
		t.Errorf("got %+v", n)
	}
	empty := ""
	if NullStringFromPtr(&empty).Valid {
		t.Error("pointer to empty string should be NULL")
	}
	if NullStringFromPtr(nil).Valid {
		t.Error("nil should be NULL")
	}
}

func TestNullTimeFromPtr(t *testing.T) {
	if NullTimeFromPtr(nil).Valid {
		t.Error("nil should be NULL")
	}
	zero := time.Time{}
	if NullTimeFromPtr(&zero).Valid {
		t.Error("zero time should be NULL")
	}
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)
	n := NullTimeFromPtr(&ts)
	if !n.Valid || n.Time.Location() != time.UTC || !n.Time.Equal(ts) {
		t.Errorf("got %+v", n)
	}
}
