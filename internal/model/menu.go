// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants shared by the store, services and
// handlers: menu targets, content statuses and formats, roles, event levels.
package model

// Default menu slugs
const (
	MenuMain   = "main"
	MenuFooter = "footer"
)

// Menu target values
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// ValidTargets contains all valid link target values.
var ValidTargets = []string{TargetSelf, TargetBlank}

// MenuMaxDepth is the deepest menu level rendered as navigation.
const MenuMaxDepth = 3

// IsValidTarget checks if a target value is valid.
func IsValidTarget(target string) bool {
	for _, t := range ValidTargets {
		if t == target {
			return true
		}
	}
	return false
}

// IsDefaultMenu reports whether slug names a menu the layout depends on.
func IsDefaultMenu(slug string) bool {
	return slug == MenuMain || slug == MenuFooter
}
