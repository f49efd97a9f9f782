// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

// Pagination holds the parsed page and per_page query parameters.
type Pagination struct {
	Page    int
	PerPage int
}

// Limit returns the SQL LIMIT value.
func (p Pagination) Limit() int64 {
	return int64(p.PerPage)
}

// Offset returns the SQL OFFSET value.
func (p Pagination) Offset() int64 {
	return int64((p.Page - 1) * p.PerPage)
}

// Meta builds response metadata for a total row count.
func (p Pagination) Meta(total int64) *Meta {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		pages = 1
	}
	return &Meta{
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   pages,
	}
}

// ParsePagination reads ?page= and ?per_page= with sane bounds.
func ParsePagination(r *http.Request) Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}
