// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/menutree"
	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/service"
	"casedesk/internal/store"
	"casedesk/internal/util"
)

// MenuHandler manages menus and their item trees.
type MenuHandler struct {
	queries *store.Queries
	menus   *service.MenuService
	events  *service.EventService
}

// NewMenuHandler creates a MenuHandler.
func NewMenuHandler(db *sql.DB, menus *service.MenuService, events *service.EventService) *MenuHandler {
	return &MenuHandler{
		queries: store.New(db),
		menus:   menus,
		events:  events,
	}
}

// treeNode is the wire shape of one node in a menu tree.
type treeNode struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	LabelLocalized string     `json:"label_localized,omitempty"`
	Href           string     `json:"href"`
	IsActive       bool       `json:"is_active"`
	Children       []treeNode `json:"children,omitempty"`
}

func toTreeNodes(forest []*menutree.Node) []treeNode {
	out := make([]treeNode, 0, len(forest))
	for _, n := range forest {
		out = append(out, treeNode{
			ID:             n.Item.ID,
			Label:          n.Item.Label,
			LabelLocalized: n.Item.LabelLocalized,
			Href:           n.Item.Href,
			IsActive:       n.Item.IsActive,
			Children:       toTreeNodes(n.Children),
		})
	}
	return out
}

func fromTreeNodes(nodes []treeNode) []*menutree.Node {
	out := make([]*menutree.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &menutree.Node{
			Item: menutree.Item{
				ID:             n.ID,
				Label:          n.Label,
				LabelLocalized: n.LabelLocalized,
				Href:           n.Href,
				IsActive:       n.IsActive,
			},
			Children: fromTreeNodes(n.Children),
		})
	}
	return out
}

// List returns all menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.queries.ListMenus(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to list menus")
		return
	}
	WriteSuccess(w, menus, nil)
}

type menuRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Create adds a new empty menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "name is required"})
		return
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		WriteValidationError(w, map[string]string{"slug": "slug may only contain lowercase letters, digits, and hyphens"})
		return
	}

	exists, err := h.queries.MenuSlugExists(r.Context(), req.Slug)
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a menu with this slug already exists")
		return
	}

	now := time.Now()
	menu, err := h.queries.CreateMenu(r.Context(), store.CreateMenuParams{
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		WriteInternalError(w, "failed to create menu")
		return
	}
	WriteCreated(w, menu)
}

// Update renames a menu or changes its slug.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	menu, err := h.queries.GetMenuBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteInternalError(w, "failed to load menu")
		return
	}

	var req menuRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "name is required"})
		return
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		WriteValidationError(w, map[string]string{"slug": "slug may only contain lowercase letters, digits, and hyphens"})
		return
	}

	exists, err := h.queries.MenuSlugExistsExcluding(r.Context(), store.MenuSlugExistsExcludingParams{
		Slug: req.Slug,
		ID:   menu.ID,
	})
	if err != nil {
		WriteInternalError(w, "failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "a menu with this slug already exists")
		return
	}

	updated, err := h.queries.UpdateMenu(r.Context(), store.UpdateMenuParams{
		ID:        menu.ID,
		Name:      req.Name,
		Slug:      req.Slug,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "failed to update menu")
		return
	}
	h.menus.InvalidateMenu(r.Context(), menu.Slug)
	WriteSuccess(w, updated, nil)
}

// Delete removes a menu and all its items.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	menu, err := h.queries.GetMenuBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteInternalError(w, "failed to load menu")
		return
	}
	if err := h.queries.DeleteMenu(r.Context(), menu.ID); err != nil {
		WriteInternalError(w, "failed to delete menu")
		return
	}
	h.menus.InvalidateMenu(r.Context(), menu.Slug)
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

// GetTree returns the menu's item forest.
func (h *MenuHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.menus.LoadTree(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, service.ErrMenuNotFound) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteInternalError(w, "failed to load menu tree")
		return
	}
	WriteSuccess(w, toTreeNodes(forest), nil)
}

type saveTreeRequest struct {
	Tree []treeNode `json:"tree"`
}

// saveTreeResponse reports the outcome of a tree save. FailedIDs lists the
// items whose placement write failed; the client should reload and retry.
type saveTreeResponse struct {
	Updated   int        `json:"updated"`
	FailedIDs []string   `json:"failed_ids,omitempty"`
	Tree      []treeNode `json:"tree"`
}

// SaveTree replaces a menu's item placements with the submitted forest.
func (h *MenuHandler) SaveTree(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req saveTreeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.menus.SaveTree(r.Context(), slug, fromTreeNodes(req.Tree))
	if err != nil {
		if errors.Is(err, service.ErrMenuNotFound) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryMenu, "menu tree saved", middleware.GetUserID(r), map[string]any{
		"menu":    slug,
		"updated": result.Updated,
		"failed":  len(result.FailedIDs),
	})

	forest, err := h.menus.LoadTree(r.Context(), slug)
	if err != nil {
		WriteInternalError(w, "failed to reload menu tree")
		return
	}

	resp := saveTreeResponse{
		Updated:   result.Updated,
		FailedIDs: result.FailedIDs,
		Tree:      toTreeNodes(forest),
	}
	if !result.OK() {
		// Partial failure: some placements were written, some were not.
		WriteJSON(w, http.StatusMultiStatus, Response{Data: resp})
		return
	}
	WriteSuccess(w, resp, nil)
}

type menuItemRequest struct {
	Label          string `json:"label"`
	LabelLocalized string `json:"label_localized"`
	Href           string `json:"href"`
	ParentID       string `json:"parent_id"`
	IsActive       bool   `json:"is_active"`
}

// CreateItem appends an item as the last child of the given parent.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req menuItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		WriteValidationError(w, map[string]string{"label": "label is required"})
		return
	}

	item, err := h.menus.CreateItem(r.Context(), slug, service.CreateItemParams{
		Label:          req.Label,
		LabelLocalized: req.LabelLocalized,
		Href:           req.Href,
		ParentID:       req.ParentID,
		IsActive:       req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrMenuNotFound) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, item)
}

// UpdateItem changes an item's content without touching its placement.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	publicID := chi.URLParam(r, "id")

	var req menuItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		WriteValidationError(w, map[string]string{"label": "label is required"})
		return
	}

	item, err := h.menus.UpdateItem(r.Context(), slug, publicID, service.CreateItemParams{
		Label:          req.Label,
		LabelLocalized: req.LabelLocalized,
		Href:           req.Href,
		IsActive:       req.IsActive,
	})
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, item, nil)
}

// DuplicateItem copies an item as a new last sibling under the same parent.
// Children are not copied.
func (h *MenuHandler) DuplicateItem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	publicID := chi.URLParam(r, "id")

	menu, err := h.queries.GetMenuBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "menu not found")
			return
		}
		WriteInternalError(w, "failed to load menu")
		return
	}

	source, err := h.queries.GetMenuItemByPublicID(r.Context(), publicID)
	if err != nil || source.MenuID != menu.ID {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "menu item not found")
			return
		}
		WriteInternalError(w, "failed to load menu item")
		return
	}

	item, err := h.menus.CreateItem(r.Context(), slug, service.CreateItemParams{
		Label:          source.Label + " (copy)",
		LabelLocalized: source.LabelLocalized,
		Href:           source.Href,
		ParentID:       source.ParentPublicID.String,
		IsActive:       source.IsActive,
	})
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, item)
}

// DeleteItem removes an item and its subtree.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	publicID := chi.URLParam(r, "id")

	if err := h.menus.DeleteItem(r.Context(), slug, publicID); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}
