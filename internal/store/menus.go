// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Menu represents a navigation menu.
type Menu struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuItem represents a single flat menu entry. PublicID is the opaque
// identifier the editor works with; the integer primary key stays internal.
type MenuItem struct {
	ID             int64          `json:"-"`
	MenuID         int64          `json:"-"`
	PublicID       string         `json:"id"`
	ParentID       sql.NullInt64  `json:"-"`
	ParentPublicID sql.NullString `json:"-"`
	Label          string         `json:"label"`
	LabelLocalized string         `json:"label_localized,omitempty"`
	Href           string         `json:"href"`
	SortOrder      int64          `json:"sort_order"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ListMenus returns all menus ordered by name.
func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// GetMenuByID fetches a menu by ID.
func (q *Queries) GetMenuByID(ctx context.Context, id int64) (Menu, error) {
	var m Menu
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM menus WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Slug, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// GetMenuBySlug fetches a menu by slug.
func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (Menu, error) {
	var m Menu
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM menus WHERE slug = ?`, slug).
		Scan(&m.ID, &m.Name, &m.Slug, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// MenuSlugExists reports whether a menu with the given slug exists.
func (q *Queries) MenuSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menus WHERE slug = ?`, slug).Scan(&n)
	return n != 0, err
}

// MenuSlugExistsExcludingParams holds parameters for MenuSlugExistsExcluding.
type MenuSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// MenuSlugExistsExcluding reports whether another menu uses the slug.
func (q *Queries) MenuSlugExistsExcluding(ctx context.Context, arg MenuSlugExistsExcludingParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM menus WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n != 0, err
}

// CreateMenuParams holds parameters for CreateMenu.
type CreateMenuParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateMenu inserts a new menu and returns it.
func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO menus (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Menu{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Menu{}, err
	}
	return q.GetMenuByID(ctx, id)
}

// UpdateMenuParams holds parameters for UpdateMenu.
type UpdateMenuParams struct {
	ID        int64
	Name      string
	Slug      string
	UpdatedAt time.Time
}

// UpdateMenu updates a menu and returns the updated row.
func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE menus SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.Slug, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Menu{}, err
	}
	return q.GetMenuByID(ctx, arg.ID)
}

// DeleteMenu removes a menu together with its items.
func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	return err
}

const menuItemColumns = `i.id, i.menu_id, i.public_id, i.parent_id, p.public_id, i.label,
	i.label_localized, i.href, i.sort_order, i.is_active, i.created_at, i.updated_at`

func collectMenuItems(rows *sql.Rows) ([]MenuItem, error) {
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var it MenuItem
		if err := rows.Scan(&it.ID, &it.MenuID, &it.PublicID, &it.ParentID, &it.ParentPublicID,
			&it.Label, &it.LabelLocalized, &it.Href, &it.SortOrder, &it.IsActive,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListMenuItems returns all items of a menu with their parents' public IDs,
// ordered by stored sort order.
func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+`
		 FROM menu_items i
		 LEFT JOIN menu_items p ON p.id = i.parent_id
		 WHERE i.menu_id = ?
		 ORDER BY i.sort_order`, menuID)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

// GetMenuItemByPublicID fetches a menu item by its public identifier.
func (q *Queries) GetMenuItemByPublicID(ctx context.Context, publicID string) (MenuItem, error) {
	var it MenuItem
	err := q.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+`
		 FROM menu_items i
		 LEFT JOIN menu_items p ON p.id = i.parent_id
		 WHERE i.public_id = ?`, publicID).
		Scan(&it.ID, &it.MenuID, &it.PublicID, &it.ParentID, &it.ParentPublicID,
			&it.Label, &it.LabelLocalized, &it.Href, &it.SortOrder, &it.IsActive,
			&it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// CreateMenuItemParams holds parameters for CreateMenuItem.
type CreateMenuItemParams struct {
	MenuID         int64
	PublicID       string
	ParentID       sql.NullInt64
	Label          string
	LabelLocalized string
	Href           string
	SortOrder      int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateMenuItem inserts a new menu item and returns it.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO menu_items (menu_id, public_id, parent_id, label, label_localized, href,
		 sort_order, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.MenuID, arg.PublicID, arg.ParentID, arg.Label, arg.LabelLocalized, arg.Href,
		arg.SortOrder, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return MenuItem{}, err
	}
	return q.GetMenuItemByPublicID(ctx, arg.PublicID)
}

// UpdateMenuItemParams holds parameters for UpdateMenuItem.
type UpdateMenuItemParams struct {
	PublicID       string
	Label          string
	LabelLocalized string
	Href           string
	IsActive       bool
	UpdatedAt      time.Time
}

// UpdateMenuItem updates the content fields of an item, leaving its tree
// placement untouched.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE menu_items SET label = ?, label_localized = ?, href = ?, is_active = ?, updated_at = ?
		 WHERE public_id = ?`,
		arg.Label, arg.LabelLocalized, arg.Href, arg.IsActive, arg.UpdatedAt, arg.PublicID)
	if err != nil {
		return MenuItem{}, err
	}
	return q.GetMenuItemByPublicID(ctx, arg.PublicID)
}

// UpdateMenuItemPlacementParams holds parameters for UpdateMenuItemPlacement.
// An invalid ParentPublicID places the item at root level.
type UpdateMenuItemPlacementParams struct {
	MenuID         int64
	PublicID       string
	ParentPublicID sql.NullString
	SortOrder      int64
	UpdatedAt      time.Time
}

// UpdateMenuItemPlacement rewrites a single item's parent and sort order.
// This is the per-node write the menu editor's save fans out over.
func (q *Queries) UpdateMenuItemPlacement(ctx context.Context, arg UpdateMenuItemPlacementParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE menu_items
		 SET parent_id = (SELECT id FROM menu_items WHERE public_id = ?1 AND menu_id = ?2),
		     sort_order = ?3, updated_at = ?4
		 WHERE public_id = ?5 AND menu_id = ?2`,
		arg.ParentPublicID, arg.MenuID, arg.SortOrder, arg.UpdatedAt, arg.PublicID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMenuItem removes a menu item; children go with it via the cascading
// foreign key.
func (q *Queries) DeleteMenuItem(ctx context.Context, publicID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_items WHERE public_id = ?`, publicID)
	return err
}

// GetMaxMenuItemSortOrderParams holds parameters for GetMaxMenuItemSortOrder.
type GetMaxMenuItemSortOrderParams struct {
	MenuID   int64
	ParentID sql.NullInt64
}

// GetMaxMenuItemSortOrder returns the highest sort order among the siblings
// at the given parent, or -1 when there are none.
func (q *Queries) GetMaxMenuItemSortOrder(ctx context.Context, arg GetMaxMenuItemSortOrderParams) (int64, error) {
	var max sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM menu_items WHERE menu_id = ? AND parent_id IS ?`,
		arg.MenuID, arg.ParentID).Scan(&max)
	if err != nil {
		return -1, err
	}
	if !max.Valid {
		return -1, nil
	}
	return max.Int64, nil
}
