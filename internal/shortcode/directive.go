// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package shortcode expands bracketed directives such as
// [sitemap groups="tax,audit" hover=false] embedded in stored page and post
// content.
//
// Directives are self-closing. Recognised names map to a fixed set of
// kinds, each with its own generator; anything else, including malformed
// bracket text, is copied to the output unchanged.
package shortcode

import (
	"strconv"
	"strings"
)

// Kind identifies a recognised directive.
type Kind int

const (
	KindUnknown Kind = iota
	KindSitemap
)

// String returns the directive name for k.
func (k Kind) String() string {
	switch k {
	case KindSitemap:
		return "sitemap"
	default:
		return "unknown"
	}
}

// KindOf maps a directive name to its kind. Matching ignores case.
func KindOf(name string) Kind {
	switch strings.ToLower(name) {
	case "sitemap":
		return KindSitemap
	default:
		return KindUnknown
	}
}

// Directive is one parsed occurrence in a document.
type Directive struct {
	Name string
	Kind Kind
	Args Args
	// Raw is the exact source text, used for pass-through.
	Raw string
}

// Known reports whether the directive has a generator.
func (d Directive) Known() bool {
	return d.Kind != KindUnknown
}

// Args holds directive arguments. Values are string, int64, float64 or bool.
type Args map[string]any

// Has reports whether key was given.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the value of key as text, or def when the key is missing
// or blank.
func (a Args) String(key, def string) string {
	v, ok := a[key]
	if !ok {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Int returns key as an integer. Quoted digits are accepted. Anything else
// yields def.
func (a Args) Int(key string, def int) int {
	switch t := a[key].(type) {
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns key as a boolean. Quoted "true"/"false", "1"/"0" and the
// numbers 1 and 0 are accepted. Anything else yields def.
func (a Args) Bool(key string, def bool) bool {
	switch t := a[key].(type) {
	case bool:
		return t
	case int64:
		switch t {
		case 0:
			return false
		case 1:
			return true
		}
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// List splits a comma-separated value, trimming spaces and dropping empty
// parts. A missing key yields nil.
func (a Args) List(key string) []string {
	s := a.String(key, "")
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
