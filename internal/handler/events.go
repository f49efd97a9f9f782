// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"casedesk/internal/store"
)

// EventHandler serves the audit log.
type EventHandler struct {
	queries *store.Queries
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(db *sql.DB) *EventHandler {
	return &EventHandler{queries: store.New(db)}
}

// eventResponse is an event with its metadata decoded for the client.
type eventResponse struct {
	store.Event
	UserID   int64          `json:"user_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// List returns audit entries newest first with optional ?level= and
// ?category= filters.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	level := r.URL.Query().Get("level")
	category := r.URL.Query().Get("category")

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Level:    level,
		Category: category,
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		WriteInternalError(w, "failed to list events")
		return
	}
	total, err := h.queries.CountEvents(r.Context(), store.CountEventsParams{
		Level:    level,
		Category: category,
	})
	if err != nil {
		WriteInternalError(w, "failed to count events")
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{Event: e, UserID: e.UserID.Int64}
		var metadata map[string]any
		if err := json.Unmarshal([]byte(e.Metadata), &metadata); err == nil {
			resp.Metadata = metadata
		}
		resp.Event.Metadata = ""
		out = append(out, resp)
	}
	WriteSuccess(w, out, p.Meta(total))
}
