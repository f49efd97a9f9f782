// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Case represents an assistance case.
type Case struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	CategoryID    sql.NullInt64 `json:"-"`
	Summary       string        `json:"summary,omitempty"`
	Status        string        `json:"status"`
	MonthlyAmount int64         `json:"monthly_amount"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

const caseColumns = `id, title, slug, category_id, summary, status, monthly_amount, created_at, updated_at`

func scanCase(row *sql.Row) (Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.CategoryID, &c.Summary, &c.Status, &c.MonthlyAmount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectCases(rows *sql.Rows) ([]Case, error) {
	defer rows.Close()
	var cases []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.CategoryID, &c.Summary, &c.Status, &c.MonthlyAmount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// ListCasesParams holds filter and pagination parameters for ListCases.
// A zero CategoryID or empty Status means no filter on that column.
type ListCasesParams struct {
	CategoryID int64
	Status     string
	Limit      int64
	Offset     int64
}

// ListCases returns cases ordered by most recently updated first.
func (q *Queries) ListCases(ctx context.Context, arg ListCasesParams) ([]Case, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		 WHERE (?1 = 0 OR category_id = ?1) AND (?2 = '' OR status = ?2)
		 ORDER BY updated_at DESC
		 LIMIT ?3 OFFSET ?4`,
		arg.CategoryID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectCases(rows)
}

// CountCasesParams holds filter parameters for CountCases.
type CountCasesParams struct {
	CategoryID int64
	Status     string
}

// CountCases returns the number of cases matching the filters.
func (q *Queries) CountCases(ctx context.Context, arg CountCasesParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases
		 WHERE (?1 = 0 OR category_id = ?1) AND (?2 = '' OR status = ?2)`,
		arg.CategoryID, arg.Status).Scan(&n)
	return n, err
}

// GetCaseByID fetches a case by ID.
func (q *Queries) GetCaseByID(ctx context.Context, id int64) (Case, error) {
	return scanCase(q.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = ?`, id))
}

// CaseSlugExists reports whether a case with the given slug exists.
func (q *Queries) CaseSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases WHERE slug = ?`, slug).Scan(&n)
	return n != 0, err
}

// CaseSlugExistsExcludingParams holds parameters for CaseSlugExistsExcluding.
type CaseSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// CaseSlugExistsExcluding reports whether another case uses the slug.
func (q *Queries) CaseSlugExistsExcluding(ctx context.Context, arg CaseSlugExistsExcludingParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&n)
	return n != 0, err
}

// CreateCaseParams holds parameters for CreateCase.
type CreateCaseParams struct {
	Title         string
	Slug          string
	CategoryID    sql.NullInt64
	Summary       string
	Status        string
	MonthlyAmount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateCase inserts a new case and returns it.
func (q *Queries) CreateCase(ctx context.Context, arg CreateCaseParams) (Case, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO cases (title, slug, category_id, summary, status, monthly_amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.CategoryID, arg.Summary, arg.Status, arg.MonthlyAmount, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Case{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Case{}, err
	}
	return q.GetCaseByID(ctx, id)
}

// UpdateCaseParams holds parameters for UpdateCase.
type UpdateCaseParams struct {
	ID            int64
	Title         string
	Slug          string
	CategoryID    sql.NullInt64
	Summary       string
	Status        string
	MonthlyAmount int64
	UpdatedAt     time.Time
}

// UpdateCase updates a case and returns the updated row.
func (q *Queries) UpdateCase(ctx context.Context, arg UpdateCaseParams) (Case, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE cases SET title = ?, slug = ?, category_id = ?, summary = ?, status = ?,
		 monthly_amount = ?, updated_at = ? WHERE id = ?`,
		arg.Title, arg.Slug, arg.CategoryID, arg.Summary, arg.Status, arg.MonthlyAmount, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Case{}, err
	}
	return q.GetCaseByID(ctx, arg.ID)
}

// DeleteCase removes a case together with its sponsorships and attachments.
func (q *Queries) DeleteCase(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	return err
}
