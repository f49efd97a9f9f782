// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"casedesk/internal/legacy"
	"casedesk/internal/middleware"
)

// LegacyHandler triggers imports from the old MySQL database.
type LegacyHandler struct {
	importer *legacy.Importer
}

// NewLegacyHandler creates a LegacyHandler. importer may be nil when the
// legacy DSN is not configured.
func NewLegacyHandler(importer *legacy.Importer) *LegacyHandler {
	return &LegacyHandler{importer: importer}
}

type legacyImportRequest struct {
	Since string `json:"since"` // 2006-01-02, defaults to 30 days ago
}

// Import pulls legacy payments into a new pending batch.
func (h *LegacyHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		WriteError(w, http.StatusServiceUnavailable, "legacy_disabled",
			"legacy import is not configured", nil)
		return
	}

	var req legacyImportRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	since := time.Now().AddDate(0, 0, -30)
	if req.Since != "" {
		parsed, err := time.Parse("2006-01-02", req.Since)
		if err != nil {
			WriteValidationError(w, map[string]string{"since": "expected YYYY-MM-DD"})
			return
		}
		since = parsed
	}

	batch, err := h.importer.Run(r.Context(), middleware.GetUserID(r), since)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, batch)
}
