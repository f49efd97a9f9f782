// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/service"
	"casedesk/internal/store"
)

// SponsorshipHandler manages pledges and their review queue.
type SponsorshipHandler struct {
	queries      *store.Queries
	sponsorships *service.SponsorshipService
}

// NewSponsorshipHandler creates a SponsorshipHandler.
func NewSponsorshipHandler(db *sql.DB, sponsorships *service.SponsorshipService) *SponsorshipHandler {
	return &SponsorshipHandler{
		queries:      store.New(db),
		sponsorships: sponsorships,
	}
}

// List returns sponsorships with optional ?status= and ?case= filters,
// oldest first so reviewers work the queue in arrival order.
func (h *SponsorshipHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidSponsorshipStatus(status) {
		WriteBadRequest(w, "unknown status filter", nil)
		return
	}
	caseID, _ := strconv.ParseInt(r.URL.Query().Get("case"), 10, 64)

	sponsorships, err := h.queries.ListSponsorships(r.Context(), store.ListSponsorshipsParams{
		Status: status,
		CaseID: caseID,
		Limit:  p.Limit(),
		Offset: p.Offset(),
	})
	if err != nil {
		WriteInternalError(w, "failed to list sponsorships")
		return
	}
	total, err := h.queries.CountSponsorships(r.Context(), store.CountSponsorshipsParams{
		Status: status,
		CaseID: caseID,
	})
	if err != nil {
		WriteInternalError(w, "failed to count sponsorships")
		return
	}
	WriteSuccess(w, sponsorships, p.Meta(total))
}

// Get returns one sponsorship.
func (h *SponsorshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid sponsorship id", nil)
		return
	}
	s, err := h.queries.GetSponsorshipByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "sponsorship not found")
			return
		}
		WriteInternalError(w, "failed to load sponsorship")
		return
	}
	WriteSuccess(w, s, nil)
}

type pledgeRequest struct {
	UserID        int64 `json:"user_id"`
	CaseID        int64 `json:"case_id"`
	MonthlyAmount int64 `json:"monthly_amount"`
}

// Create records a new pending pledge.
func (h *SponsorshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pledgeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if req.UserID == 0 {
		req.UserID = middleware.GetUserID(r)
	}

	s, err := h.sponsorships.Pledge(r.Context(), req.UserID, req.CaseID, req.MonthlyAmount)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, s)
}

type reviewRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Review decides a sponsorship: approve, reject, or cancel.
func (h *SponsorshipHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid sponsorship id", nil)
		return
	}

	var req reviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	s, err := h.sponsorships.Review(r.Context(), id, req.Status, req.Note, middleware.GetUserID(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			WriteConflict(w, err.Error())
			return
		}
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, s, nil)
}
