// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/service"
	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func newMenuRouter(t *testing.T, db *sql.DB) chi.Router {
	t.Helper()
	menuService := service.NewMenuService(db, nil)
	eventService := service.NewEventService(db, nil)
	h := NewMenuHandler(db, menuService, eventService)

	r := chi.NewRouter()
	r.Get("/menus/{slug}/tree", h.GetTree)
	r.Put("/menus/{slug}/tree", h.SaveTree)
	r.Post("/menus/{slug}/items", h.CreateItem)
	r.Post("/menus/{slug}/items/{id}/duplicate", h.DuplicateItem)
	r.Delete("/menus/{slug}/items/{id}", h.DeleteItem)
	return r
}

func seedMenuFixture(t *testing.T, db *sql.DB, slug string, labels ...string) {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)
	now := time.Now()

	menu, err := q.CreateMenu(ctx, store.CreateMenuParams{
		Name: "Menu", Slug: slug, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	for i, label := range labels {
		_, err := q.CreateMenuItem(ctx, store.CreateMenuItemParams{
			MenuID:    menu.ID,
			PublicID:  label,
			Label:     label,
			Href:      "/" + label,
			SortOrder: int64(i),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateMenuItem(%s): %v", label, err)
		}
	}
}

func TestGetTreeEndpoint(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	seedMenuFixture(t, db, "main", "home", "about")
	r := newMenuRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/menus/main/tree", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []treeNode `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d roots, want 2", len(resp.Data))
	}
	if resp.Data[0].ID != "home" || resp.Data[1].ID != "about" {
		t.Errorf("roots = %s, %s", resp.Data[0].ID, resp.Data[1].ID)
	}
}

func TestGetTreeUnknownMenu(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	r := newMenuRouter(t, db)
	req := httptest.NewRequest(http.MethodGet, "/menus/nope/tree", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSaveTreeEndpoint(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	seedMenuFixture(t, db, "main", "home", "about")
	r := newMenuRouter(t, db)

	// Nest "about" under "home".
	body := `{"tree":[{"id":"home","children":[{"id":"about"}]}]}`
	req := httptest.NewRequest(http.MethodPut, "/menus/main/tree", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data saveTreeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Updated != 2 {
		t.Errorf("updated = %d, want 2", resp.Data.Updated)
	}
	if len(resp.Data.FailedIDs) != 0 {
		t.Errorf("failed ids = %v", resp.Data.FailedIDs)
	}
	if len(resp.Data.Tree) != 1 || resp.Data.Tree[0].ID != "home" {
		t.Fatalf("tree = %+v", resp.Data.Tree)
	}
	if len(resp.Data.Tree[0].Children) != 1 || resp.Data.Tree[0].Children[0].ID != "about" {
		t.Errorf("children = %+v", resp.Data.Tree[0].Children)
	}
}

func TestSaveTreeRejectsForeignItem(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	seedMenuFixture(t, db, "main", "home")
	r := newMenuRouter(t, db)

	body := `{"tree":[{"id":"home"},{"id":"intruder"}]}`
	req := httptest.NewRequest(http.MethodPut, "/menus/main/tree", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDuplicateItemEndpoint(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	seedMenuFixture(t, db, "main", "home")
	r := newMenuRouter(t, db)

	req := httptest.NewRequest(http.MethodPost, "/menus/main/items/home/duplicate", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Label     string `json:"label"`
			SortOrder int    `json:"sort_order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Label != "home (copy)" {
		t.Errorf("label = %q", resp.Data.Label)
	}
	if resp.Data.SortOrder != 1 {
		t.Errorf("sort order = %d, want 1", resp.Data.SortOrder)
	}
}
