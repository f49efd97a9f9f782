// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Category represents a case category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	SortOrder   int64     `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const categoryColumns = `id, name, slug, description, sort_order, created_at, updated_at`

func scanCategory(row *sql.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns all categories ordered by sort order then name.
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID fetches a category by ID.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

// CategorySlugExists reports whether a category with the given slug exists.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ?`, slug).Scan(&n)
	return n != 0, err
}

// CategorySlugExistsExcludingParams holds parameters for CategorySlugExistsExcluding.
type CategorySlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// CategorySlugExistsExcluding reports whether another category uses the slug.
func (q *Queries) CategorySlugExistsExcluding(ctx context.Context, arg CategorySlugExistsExcludingParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n != 0, err
}

// CreateCategoryParams holds parameters for CreateCategory.
type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCategory inserts a new category and returns it.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, description, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.SortOrder, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return q.GetCategoryByID(ctx, id)
}

// UpdateCategoryParams holds parameters for UpdateCategory.
type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	UpdatedAt   time.Time
}

// UpdateCategory updates a category and returns the updated row.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.SortOrder, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Category{}, err
	}
	return q.GetCategoryByID(ctx, arg.ID)
}

// DeleteCategory removes a category. Cases referencing it keep a NULL category.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// CountCasesForCategory returns the number of cases in a category.
func (q *Queries) CountCasesForCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}
