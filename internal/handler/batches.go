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

// maxUploadSize caps contribution CSV uploads at 10 MB.
const maxUploadSize = 10 << 20

// BatchHandler manages contribution batch uploads.
type BatchHandler struct {
	queries *store.Queries
	batches *service.BatchService
}

// NewBatchHandler creates a BatchHandler.
func NewBatchHandler(db *sql.DB, batches *service.BatchService) *BatchHandler {
	return &BatchHandler{
		queries: store.New(db),
		batches: batches,
	}
}

// List returns batches newest first.
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	batches, err := h.queries.ListBatches(r.Context(), p.Limit(), p.Offset())
	if err != nil {
		WriteInternalError(w, "failed to list batches")
		return
	}
	total, err := h.queries.CountBatches(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to count batches")
		return
	}
	WriteSuccess(w, batches, p.Meta(total))
}

// Upload accepts a multipart CSV upload and stores it as a pending batch.
func (h *BatchHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "missing file field", nil)
		return
	}
	defer file.Close()

	rows, err := service.ParseContributions(file)
	if err != nil {
		WriteValidationError(w, map[string]string{"file": err.Error()})
		return
	}

	batch, err := h.batches.Upload(r.Context(), header.Filename, model.BatchSourceCSV, middleware.GetUserID(r), rows)
	if err != nil {
		WriteInternalError(w, "failed to store batch")
		return
	}
	WriteCreated(w, batch)
}

// batchDetail is a batch with its mapping progress. CreditedAmount is the
// total already turned into contributions; zero until the batch is processed.
type batchDetail struct {
	store.Batch
	Rows              []store.BatchRow `json:"rows"`
	Nicknames         []string         `json:"nicknames"`
	UnmappedNicknames []string         `json:"unmapped_nicknames"`
	CreditedAmount    int64            `json:"credited_amount"`
}

func (h *BatchHandler) batchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid batch id", nil)
		return 0, false
	}
	return id, true
}

// Get returns a batch with its rows and remaining unmapped nicknames.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	batch, err := h.queries.GetBatchByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "batch not found")
			return
		}
		WriteInternalError(w, "failed to load batch")
		return
	}

	rows, err := h.queries.ListBatchRows(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "failed to load batch rows")
		return
	}
	nicknames, err := h.queries.ListBatchNicknames(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "failed to load nicknames")
		return
	}
	if nicknames == nil {
		nicknames = []string{}
	}
	unmapped, err := h.batches.UnmappedNicknames(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "failed to load mappings")
		return
	}
	if unmapped == nil {
		unmapped = []string{}
	}

	var credited int64
	if batch.Status == model.BatchProcessed {
		credited, err = h.queries.SumContributionsForBatch(r.Context(), id)
		if err != nil {
			WriteInternalError(w, "failed to total contributions")
			return
		}
	}

	WriteSuccess(w, batchDetail{
		Batch:             batch,
		Rows:              rows,
		Nicknames:         nicknames,
		UnmappedNicknames: unmapped,
		CreditedAmount:    credited,
	}, nil)
}

// Delete discards an unprocessed batch with its rows and mappings. Processed
// batches stay; their contributions reference them.
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	batch, err := h.queries.GetBatchByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "batch not found")
			return
		}
		WriteInternalError(w, "failed to load batch")
		return
	}
	if batch.Status == model.BatchProcessed {
		WriteConflict(w, "processed batches cannot be deleted")
		return
	}

	if err := h.queries.DeleteBatch(r.Context(), id); err != nil {
		WriteInternalError(w, "failed to delete batch")
		return
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

type mapNicknameRequest struct {
	Nickname string `json:"nickname"`
	UserID   int64  `json:"user_id"`
}

// MapNickname assigns a contributor nickname to a user.
func (h *BatchHandler) MapNickname(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	var req mapNicknameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	if req.Nickname == "" || req.UserID == 0 {
		WriteValidationError(w, map[string]string{"nickname": "nickname and user_id are required"})
		return
	}

	if err := h.batches.MapNickname(r.Context(), id, req.Nickname, req.UserID); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]string{"status": "mapped"}, nil)
}

// Suggestions returns users whose folded name or email matches ?nickname=.
func (h *BatchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")
	if nickname == "" {
		WriteBadRequest(w, "nickname query parameter is required", nil)
		return
	}

	users, err := h.batches.SuggestUsers(r.Context(), nickname)
	if err != nil {
		WriteInternalError(w, "failed to suggest users")
		return
	}
	if users == nil {
		users = []store.User{}
	}
	WriteSuccess(w, users, nil)
}

// Process converts a fully mapped batch into contributions.
func (h *BatchHandler) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := h.batchID(w, r)
	if !ok {
		return
	}

	n, err := h.batches.Process(r.Context(), id, middleware.GetUserID(r))
	if err != nil {
		if errors.Is(err, service.ErrUnmappedNicknames) {
			WriteConflict(w, err.Error())
			return
		}
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]any{"contributions": n}, nil)
}
