// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"casedesk/internal/menutree"
	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func setupMenu(t *testing.T, db *sql.DB, slug string, labels ...string) store.Menu {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)
	now := time.Now()

	menu, err := q.CreateMenu(ctx, store.CreateMenuParams{
		Name:      "Menu " + slug,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
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
	return menu
}

func TestLoadTree(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home", "cases", "about")
	svc := NewMenuService(db, nil)

	tree, err := svc.LoadTree(context.Background(), "main")
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if len(tree) != 3 {
		t.Fatalf("got %d roots, want 3", len(tree))
	}
	if tree[0].Item.ID != "home" || tree[1].Item.ID != "cases" || tree[2].Item.ID != "about" {
		t.Errorf("root order = %s, %s, %s", tree[0].Item.ID, tree[1].Item.ID, tree[2].Item.ID)
	}
}

func TestLoadTreeUnknownMenu(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewMenuService(db, nil)
	_, err := svc.LoadTree(context.Background(), "nope")
	if !errors.Is(err, ErrMenuNotFound) {
		t.Errorf("err = %v, want ErrMenuNotFound", err)
	}
}

func TestSaveTreePersistsPlacement(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home", "cases", "about")
	svc := NewMenuService(db, nil)
	ctx := context.Background()

	tree, err := svc.LoadTree(ctx, "main")
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	// Nest "about" under "cases" and swap the remaining roots.
	about := tree[2]
	tree[1].Children = append(tree[1].Children, about)
	edited := []*menutree.Node{tree[1], tree[0]}

	result, err := svc.SaveTree(ctx, "main", edited)
	if err != nil {
		t.Fatalf("SaveTree: %v", err)
	}
	if !result.OK() {
		t.Fatalf("commit failed for %v", result.FailedIDs)
	}
	if result.Updated != 3 {
		t.Errorf("Updated = %d, want 3", result.Updated)
	}

	reloaded, err := svc.LoadTree(ctx, "main")
	if err != nil {
		t.Fatalf("LoadTree (reload): %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("got %d roots after save, want 2", len(reloaded))
	}
	if reloaded[0].Item.ID != "cases" || reloaded[1].Item.ID != "home" {
		t.Errorf("root order = %s, %s, want cases, home", reloaded[0].Item.ID, reloaded[1].Item.ID)
	}
	if len(reloaded[0].Children) != 1 || reloaded[0].Children[0].Item.ID != "about" {
		t.Errorf("cases children = %v, want [about]", reloaded[0].Children)
	}
}

func TestSaveTreeRejectsUnknownItem(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home")
	svc := NewMenuService(db, nil)

	forest := []*menutree.Node{
		{Item: menutree.Item{ID: "home"}},
		{Item: menutree.Item{ID: "intruder"}},
	}
	_, err := svc.SaveTree(context.Background(), "main", forest)
	if err == nil {
		t.Fatal("SaveTree accepted an item from another menu")
	}
}

func TestSaveTreeRejectsDuplicateItem(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home", "cases")
	svc := NewMenuService(db, nil)

	// "home" appears both at root and nested under "cases"; committing it
	// would fire two racing placement writes for the same row.
	forest := []*menutree.Node{
		{Item: menutree.Item{ID: "home"}},
		{Item: menutree.Item{ID: "cases"}, Children: []*menutree.Node{
			{Item: menutree.Item{ID: "home"}},
		}},
	}
	_, err := svc.SaveTree(context.Background(), "main", forest)
	if err == nil {
		t.Fatal("SaveTree accepted a tree listing the same item twice")
	}

	// Nothing may have been written.
	tree, err := svc.LoadTree(context.Background(), "main")
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if len(tree) != 2 || len(tree[0].Children) != 0 || len(tree[1].Children) != 0 {
		t.Errorf("placements changed after rejected save: %+v", tree)
	}
}

func TestCreateItemAppendsLast(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home", "cases")
	svc := NewMenuService(db, nil)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "main", CreateItemParams{
		Label:    "Contact",
		Href:     "/contact",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.SortOrder != 2 {
		t.Errorf("SortOrder = %d, want 2", item.SortOrder)
	}
	if item.ParentID != "" {
		t.Errorf("ParentID = %q, want root", item.ParentID)
	}

	// First child of an existing item starts at 0.
	child, err := svc.CreateItem(ctx, "main", CreateItemParams{
		Label:    "Archive",
		Href:     "/cases/archive",
		ParentID: "cases",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateItem (child): %v", err)
	}
	if child.SortOrder != 0 {
		t.Errorf("child SortOrder = %d, want 0", child.SortOrder)
	}
	if child.ParentID != "cases" {
		t.Errorf("child ParentID = %q, want cases", child.ParentID)
	}
}

func TestDeleteItemRemovesSubtree(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	setupMenu(t, db, "main", "home", "cases")
	svc := NewMenuService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, "main", CreateItemParams{
		Label:    "Archive",
		Href:     "/cases/archive",
		ParentID: "cases",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := svc.DeleteItem(ctx, "main", "cases"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	items, err := svc.LoadItems(ctx, "main")
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "home" {
		t.Errorf("items = %v, want only home", items)
	}
}
