// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func newCategoryRouter(db *sql.DB) chi.Router {
	h := NewCategoryHandler(db)
	r := chi.NewRouter()
	r.Get("/categories", h.List)
	r.Post("/categories", h.Create)
	r.Get("/categories/{id}", h.Get)
	r.Put("/categories/{id}", h.Update)
	r.Delete("/categories/{id}", h.Delete)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCategoryCreateAndGet(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	r := newCategoryRouter(db)

	rec := postJSON(t, r, "/categories", `{"name":"Medical Aid"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data store.Category `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.Data.Slug != "medical-aid" {
		t.Errorf("slug = %q, want medical-aid", created.Data.Slug)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/categories/%d", created.Data.ID), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	r := newCategoryRouter(db)

	rec := postJSON(t, r, "/categories", `{"name":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCategorySlugConflict(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	r := newCategoryRouter(db)

	if rec := postJSON(t, r, "/categories", `{"name":"Housing"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := postJSON(t, r, "/categories", `{"name":"Housing"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCategoryGetNotFound(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	r := newCategoryRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/categories/9999", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	h := NewHealthHandler(db)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.Status != "ok" || status.Database != "ok" {
		t.Errorf("status = %+v", status)
	}
}
