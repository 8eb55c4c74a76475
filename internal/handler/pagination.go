// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination data for listing templates.
type Pagination struct {
	Page       int
	PerPage    int
	TotalItems int64
	TotalPages int
}

// ParsePage reads the page query parameter. Missing or invalid values are
// page 1.
func ParsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPage reads the per_page query parameter, falling back to def and
// capping at maxPerPage.
func ParsePerPage(r *http.Request, def, maxPerPage int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		return def
	}
	return min(perPage, maxPerPage)
}

// NewPagination builds pagination for page out of totalItems. There is always
// at least one page.
func NewPagination(page, perPage int, totalItems int64) Pagination {
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Offset returns the row offset of the first item on page.
func Offset(page, perPage int) int64 {
	return int64((page - 1) * perPage)
}

// OutOfRange reports whether Page lies past the last page.
func (p Pagination) OutOfRange() bool {
	return p.Page > p.TotalPages
}

// HasPrev reports whether there is a newer page.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether there is an older page.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
