// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/store"
	"casedesk/internal/util"
)

// CategoryHandler manages case categories.
type CategoryHandler struct {
	queries *store.Queries
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(db *sql.DB) *CategoryHandler {
	return &CategoryHandler{queries: store.New(db)}
}

// List returns all categories in sort order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to list categories")
		return
	}
	WriteSuccess(w, categories, nil)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   int64  `json:"sort_order"`
}

func (req *categoryRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fieldErrors["name"] = "name is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		fieldErrors["slug"] = "slug may only contain lowercase letters, digits, and hyphens"
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

// Create adds a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.CategorySlugExists(r.Context(), req.Slug)
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a category with this slug already exists")
		return
	}

	now := time.Now()
	category, err := h.queries.CreateCategory(r.Context(), store.CreateCategoryParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "failed to create category")
		return
	}
	WriteCreated(w, category)
}

// Get returns one category.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid category id", nil)
		return
	}
	category, err := h.queries.GetCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "category not found")
			return
		}
		WriteInternalError(w, "failed to load category")
		return
	}
	WriteSuccess(w, category, nil)
}

// Update modifies a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid category id", nil)
		return
	}
	if _, err := h.queries.GetCategoryByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "category not found")
			return
		}
		WriteInternalError(w, "failed to load category")
		return
	}

	var req categoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.CategorySlugExistsExcluding(r.Context(), store.CategorySlugExistsExcludingParams{
		Slug: req.Slug,
		ID:   id,
	})
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a category with this slug already exists")
		return
	}

	category, err := h.queries.UpdateCategory(r.Context(), store.UpdateCategoryParams{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "failed to update category")
		return
	}
	WriteSuccess(w, category, nil)
}

// Delete removes a category. Categories still holding cases cannot be
// deleted.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid category id", nil)
		return
	}

	count, err := h.queries.CountCasesForCategory(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "failed to check category usage")
		return
	}
	if count > 0 {
		WriteConflict(w, "category still has cases")
		return
	}

	if err := h.queries.DeleteCategory(r.Context(), id); err != nil {
		WriteInternalError(w, "failed to delete category")
		return
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}
