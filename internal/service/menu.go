// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic between the HTTP handlers and
// the store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"casedesk/internal/cache"
	"casedesk/internal/menutree"
	"casedesk/internal/store"
)

// ErrMenuNotFound is returned when a menu slug resolves to nothing.
var ErrMenuNotFound = errors.New("menu not found")

// MenuService loads menu trees for editing and persists edited trees back to
// the store, one placement update per node.
type MenuService struct {
	db        *sql.DB
	queries   *store.Queries
	menuCache *cache.MenuCache
}

// NewMenuService creates a MenuService. menuCache may be nil to disable
// caching.
func NewMenuService(db *sql.DB, menuCache *cache.MenuCache) *MenuService {
	return &MenuService{
		db:        db,
		queries:   store.New(db),
		menuCache: menuCache,
	}
}

// itemFromRow converts a stored menu item row into a tree item.
func itemFromRow(row store.MenuItem) menutree.Item {
	return menutree.Item{
		ID:             row.PublicID,
		Label:          row.Label,
		LabelLocalized: row.LabelLocalized,
		Href:           row.Href,
		ParentID:       row.ParentPublicID.String,
		SortOrder:      int(row.SortOrder),
		IsActive:       row.IsActive,
	}
}

// LoadItems returns the flat item list of a menu, from cache when possible.
func (s *MenuService) LoadItems(ctx context.Context, slug string) ([]menutree.Item, error) {
	if s.menuCache != nil {
		items, ok, err := s.menuCache.Get(ctx, slug)
		if err != nil {
			slog.Warn("menu cache read failed", "slug", slug, "error", err)
		} else if ok {
			return items, nil
		}
	}

	menu, err := s.queries.GetMenuBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("loading menu %q: %w", slug, err)
	}

	rows, err := s.queries.ListMenuItems(ctx, menu.ID)
	if err != nil {
		return nil, fmt.Errorf("loading menu items: %w", err)
	}

	items := make([]menutree.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}

	if s.menuCache != nil {
		if err := s.menuCache.Put(ctx, slug, items); err != nil {
			slog.Warn("menu cache write failed", "slug", slug, "error", err)
		}
	}
	return items, nil
}

// LoadTree returns the nested tree of a menu.
func (s *MenuService) LoadTree(ctx context.Context, slug string) ([]*menutree.Node, error) {
	items, err := s.LoadItems(ctx, slug)
	if err != nil {
		return nil, err
	}
	return menutree.Build(items), nil
}

// placementUpdater persists one node's placement. It is the Updater the
// editing session fans its per-node writes through.
type placementUpdater struct {
	queries *store.Queries
	menuID  int64
	now     time.Time
}

func (u placementUpdater) UpdateNode(ctx context.Context, id, parentID string, sortOrder int) error {
	var parent sql.NullString
	if parentID != "" {
		parent = sql.NullString{String: parentID, Valid: true}
	}
	return u.queries.UpdateMenuItemPlacement(ctx, store.UpdateMenuItemPlacementParams{
		MenuID:         u.menuID,
		PublicID:       id,
		ParentPublicID: parent,
		SortOrder:      int64(sortOrder),
		UpdatedAt:      u.now,
	})
}

// SaveTree persists an edited tree for a menu. The submitted forest is
// normalized (positions renumbered depth-first) and every node's placement is
// written. The cache entry is always invalidated, even on partial failure,
// since some nodes may have been updated.
func (s *MenuService) SaveTree(ctx context.Context, slug string, forest []*menutree.Node) (menutree.CommitResult, error) {
	menu, err := s.queries.GetMenuBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return menutree.CommitResult{}, ErrMenuNotFound
		}
		return menutree.CommitResult{}, fmt.Errorf("loading menu %q: %w", slug, err)
	}

	rows, err := s.queries.ListMenuItems(ctx, menu.ID)
	if err != nil {
		return menutree.CommitResult{}, fmt.Errorf("loading menu items: %w", err)
	}
	current := make([]menutree.Item, 0, len(rows))
	known := make(map[string]bool, len(rows))
	for _, row := range rows {
		current = append(current, itemFromRow(row))
		known[row.PublicID] = true
	}

	// Reject trees referencing items that do not belong to this menu, and
	// trees listing the same item twice, which would race two placement
	// writes for one row.
	seen := make(map[string]bool, len(rows))
	for _, item := range menutree.Flatten(forest) {
		if !known[item.ID] {
			return menutree.CommitResult{}, fmt.Errorf("unknown menu item %q", item.ID)
		}
		if seen[item.ID] {
			return menutree.CommitResult{}, fmt.Errorf("duplicate menu item %q", item.ID)
		}
		seen[item.ID] = true
	}

	sess := menutree.NewSession()
	sess.Load(current)
	sess.SetTree(forest)

	result := sess.Commit(ctx, placementUpdater{
		queries: s.queries,
		menuID:  menu.ID,
		now:     time.Now(),
	})

	if s.menuCache != nil {
		if err := s.menuCache.Invalidate(ctx, slug); err != nil {
			slog.Warn("menu cache invalidation failed", "slug", slug, "error", err)
		}
	}

	if !result.OK() {
		slog.Warn("menu tree save partially failed",
			"slug", slug,
			"updated", result.Updated,
			"failed", len(result.FailedIDs),
		)
	}
	return result, nil
}

// CreateItemParams describes a new menu item.
type CreateItemParams struct {
	Label          string
	LabelLocalized string
	Href           string
	ParentID       string // public ID of the parent, "" for root
	IsActive       bool
}

// CreateItem appends a new item as the last child of the given parent and
// returns it as a tree item.
func (s *MenuService) CreateItem(ctx context.Context, slug string, arg CreateItemParams) (menutree.Item, error) {
	menu, err := s.queries.GetMenuBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return menutree.Item{}, ErrMenuNotFound
		}
		return menutree.Item{}, fmt.Errorf("loading menu %q: %w", slug, err)
	}

	var parentID sql.NullInt64
	if arg.ParentID != "" {
		parent, err := s.queries.GetMenuItemByPublicID(ctx, arg.ParentID)
		if err != nil || parent.MenuID != menu.ID {
			return menutree.Item{}, fmt.Errorf("unknown parent item %q", arg.ParentID)
		}
		parentID = sql.NullInt64{Int64: parent.ID, Valid: true}
	}

	maxOrder, err := s.queries.GetMaxMenuItemSortOrder(ctx, store.GetMaxMenuItemSortOrderParams{
		MenuID:   menu.ID,
		ParentID: parentID,
	})
	if err != nil {
		return menutree.Item{}, fmt.Errorf("finding sort order: %w", err)
	}

	now := time.Now()
	row, err := s.queries.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuID:         menu.ID,
		PublicID:       uuid.NewString(),
		ParentID:       parentID,
		Label:          arg.Label,
		LabelLocalized: arg.LabelLocalized,
		Href:           arg.Href,
		SortOrder:      maxOrder + 1,
		IsActive:       arg.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return menutree.Item{}, fmt.Errorf("creating menu item: %w", err)
	}

	s.invalidate(ctx, slug)
	return itemFromRow(row), nil
}

// UpdateItem updates the content fields of an item without touching its
// placement.
func (s *MenuService) UpdateItem(ctx context.Context, slug, publicID string, arg CreateItemParams) (menutree.Item, error) {
	row, err := s.queries.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
		PublicID:       publicID,
		Label:          arg.Label,
		LabelLocalized: arg.LabelLocalized,
		Href:           arg.Href,
		IsActive:       arg.IsActive,
		UpdatedAt:      time.Now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return menutree.Item{}, fmt.Errorf("unknown menu item %q", publicID)
		}
		return menutree.Item{}, fmt.Errorf("updating menu item: %w", err)
	}

	s.invalidate(ctx, slug)
	return itemFromRow(row), nil
}

// DeleteItem removes an item and, via the cascading foreign key, its
// subtree. Remaining siblings keep their relative order.
func (s *MenuService) DeleteItem(ctx context.Context, slug, publicID string) error {
	if _, err := s.queries.GetMenuItemByPublicID(ctx, publicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("unknown menu item %q", publicID)
		}
		return fmt.Errorf("loading menu item: %w", err)
	}
	if err := s.queries.DeleteMenuItem(ctx, publicID); err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	s.invalidate(ctx, slug)
	return nil
}

// InvalidateMenu drops the cached tree for a slug, e.g. after the menu itself
// is renamed or deleted.
func (s *MenuService) InvalidateMenu(ctx context.Context, slug string) {
	s.invalidate(ctx, slug)
}

func (s *MenuService) invalidate(ctx context.Context, slug string) {
	if s.menuCache == nil {
		return
	}
	if err := s.menuCache.Invalidate(ctx, slug); err != nil {
		slog.Warn("menu cache invalidation failed", "slug", slug, "error", err)
	}
}
