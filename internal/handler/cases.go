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

	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/service"
	"casedesk/internal/store"
	"casedesk/internal/util"
)

// CaseHandler manages beneficiary cases.
type CaseHandler struct {
	queries *store.Queries
	events  *service.EventService
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(db *sql.DB, events *service.EventService) *CaseHandler {
	return &CaseHandler{
		queries: store.New(db),
		events:  events,
	}
}

// caseResponse is a case with its summary rendered to HTML.
type caseResponse struct {
	store.Case
	CategoryID  int64  `json:"category_id,omitempty"`
	SummaryHTML string `json:"summary_html,omitempty"`
}

func toCaseResponse(c store.Case) caseResponse {
	resp := caseResponse{Case: c, CategoryID: c.CategoryID.Int64}
	if c.Summary != "" {
		if html, err := service.RenderSummary(c.Summary); err == nil {
			resp.SummaryHTML = html
		}
	}
	return resp
}

// List returns cases with optional ?category= and ?status= filters.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category"), 10, 64)
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidCaseStatus(status) {
		WriteBadRequest(w, "unknown status filter", nil)
		return
	}

	cases, err := h.queries.ListCases(r.Context(), store.ListCasesParams{
		CategoryID: categoryID,
		Status:     status,
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	})
	if err != nil {
		WriteInternalError(w, "failed to list cases")
		return
	}
	total, err := h.queries.CountCases(r.Context(), store.CountCasesParams{
		CategoryID: categoryID,
		Status:     status,
	})
	if err != nil {
		WriteInternalError(w, "failed to count cases")
		return
	}

	out := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, toCaseResponse(c))
	}
	WriteSuccess(w, out, p.Meta(total))
}

type caseRequest struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	CategoryID    int64  `json:"category_id"`
	Summary       string `json:"summary"`
	Status        string `json:"status"`
	MonthlyAmount int64  `json:"monthly_amount"`
}

func (req *caseRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		fieldErrors["title"] = "title is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(req.Slug) {
		fieldErrors["slug"] = "slug may only contain lowercase letters, digits, and hyphens"
	}
	if req.Status == "" {
		req.Status = model.CaseStatusDraft
	}
	if !model.ValidCaseStatus(req.Status) {
		fieldErrors["status"] = "unknown status"
	}
	if req.MonthlyAmount < 0 {
		fieldErrors["monthly_amount"] = "monthly amount cannot be negative"
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

func (h *CaseHandler) categoryID(r *http.Request, id int64) (sql.NullInt64, bool) {
	if id == 0 {
		return sql.NullInt64{}, true
	}
	if _, err := h.queries.GetCategoryByID(r.Context(), id); err != nil {
		return sql.NullInt64{}, false
	}
	return sql.NullInt64{Int64: id, Valid: true}, true
}

// Create adds a new case.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	categoryID, ok := h.categoryID(r, req.CategoryID)
	if !ok {
		WriteValidationError(w, map[string]string{"category_id": "unknown category"})
		return
	}

	exists, err := h.queries.CaseSlugExists(r.Context(), req.Slug)
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a case with this slug already exists")
		return
	}

	now := time.Now()
	c, err := h.queries.CreateCase(r.Context(), store.CreateCaseParams{
		Title:         req.Title,
		Slug:          req.Slug,
		CategoryID:    categoryID,
		Summary:       req.Summary,
		Status:        req.Status,
		MonthlyAmount: req.MonthlyAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		WriteInternalError(w, "failed to create case")
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryCase, "case created", middleware.GetUserID(r), map[string]any{
		"case_id": c.ID,
		"title":   c.Title,
	})
	WriteCreated(w, toCaseResponse(c))
}

// Get returns one case with its rendered summary.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid case id", nil)
		return
	}
	c, err := h.queries.GetCaseByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "case not found")
			return
		}
		WriteInternalError(w, "failed to load case")
		return
	}
	WriteSuccess(w, toCaseResponse(c), nil)
}

// Update modifies a case.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid case id", nil)
		return
	}
	if _, err := h.queries.GetCaseByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "case not found")
			return
		}
		WriteInternalError(w, "failed to load case")
		return
	}

	var req caseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	categoryID, ok := h.categoryID(r, req.CategoryID)
	if !ok {
		WriteValidationError(w, map[string]string{"category_id": "unknown category"})
		return
	}

	exists, err := h.queries.CaseSlugExistsExcluding(r.Context(), store.CaseSlugExistsExcludingParams{
		Slug: req.Slug,
		ID:   id,
	})
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a case with this slug already exists")
		return
	}

	c, err := h.queries.UpdateCase(r.Context(), store.UpdateCaseParams{
		ID:            id,
		Title:         req.Title,
		Slug:          req.Slug,
		CategoryID:    categoryID,
		Summary:       req.Summary,
		Status:        req.Status,
		MonthlyAmount: req.MonthlyAmount,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "failed to update case")
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryCase, "case updated", middleware.GetUserID(r), map[string]any{
		"case_id": c.ID,
		"status":  c.Status,
	})
	WriteSuccess(w, toCaseResponse(c), nil)
}

// Delete removes a case and its attachments records via cascade.
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid case id", nil)
		return
	}
	if _, err := h.queries.GetCaseByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "case not found")
			return
		}
		WriteInternalError(w, "failed to load case")
		return
	}
	if err := h.queries.DeleteCase(r.Context(), id); err != nil {
		WriteInternalError(w, "failed to delete case")
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryCase, "case deleted", middleware.GetUserID(r), map[string]any{
		"case_id": id,
	})
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}
