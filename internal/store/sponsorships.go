// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Sponsorship represents a sponsor's pledge toward a case.
type Sponsorship struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	CaseID        int64         `json:"case_id"`
	MonthlyAmount int64         `json:"monthly_amount"`
	Status        string        `json:"status"`
	Note          string        `json:"note,omitempty"`
	ReviewedBy    sql.NullInt64 `json:"-"`
	ReviewedAt    sql.NullTime  `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

const sponsorshipColumns = `id, user_id, case_id, monthly_amount, status, note, reviewed_by, reviewed_at, created_at, updated_at`

func scanSponsorship(row *sql.Row) (Sponsorship, error) {
	var s Sponsorship
	err := row.Scan(&s.ID, &s.UserID, &s.CaseID, &s.MonthlyAmount, &s.Status, &s.Note,
		&s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListSponsorshipsParams holds filter and pagination parameters.
// An empty Status or zero CaseID means no filter on that column.
type ListSponsorshipsParams struct {
	Status string
	CaseID int64
	Limit  int64
	Offset int64
}

// ListSponsorships returns sponsorships, oldest pending first so reviewers
// work the queue in arrival order.
func (q *Queries) ListSponsorships(ctx context.Context, arg ListSponsorshipsParams) ([]Sponsorship, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sponsorshipColumns+` FROM sponsorships
		 WHERE (?1 = '' OR status = ?1) AND (?2 = 0 OR case_id = ?2)
		 ORDER BY created_at
		 LIMIT ?3 OFFSET ?4`,
		arg.Status, arg.CaseID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sponsorships []Sponsorship
	for rows.Next() {
		var s Sponsorship
		if err := rows.Scan(&s.ID, &s.UserID, &s.CaseID, &s.MonthlyAmount, &s.Status, &s.Note,
			&s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sponsorships = append(sponsorships, s)
	}
	return sponsorships, rows.Err()
}

// CountSponsorshipsParams holds filter parameters for CountSponsorships.
type CountSponsorshipsParams struct {
	Status string
	CaseID int64
}

// CountSponsorships returns the number of sponsorships matching the filters.
func (q *Queries) CountSponsorships(ctx context.Context, arg CountSponsorshipsParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sponsorships
		 WHERE (?1 = '' OR status = ?1) AND (?2 = 0 OR case_id = ?2)`,
		arg.Status, arg.CaseID).Scan(&n)
	return n, err
}

// GetSponsorshipByID fetches a sponsorship by ID.
func (q *Queries) GetSponsorshipByID(ctx context.Context, id int64) (Sponsorship, error) {
	return scanSponsorship(q.db.QueryRowContext(ctx,
		`SELECT `+sponsorshipColumns+` FROM sponsorships WHERE id = ?`, id))
}

// CreateSponsorshipParams holds parameters for CreateSponsorship.
type CreateSponsorshipParams struct {
	UserID        int64
	CaseID        int64
	MonthlyAmount int64
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateSponsorship inserts a new sponsorship and returns it.
func (q *Queries) CreateSponsorship(ctx context.Context, arg CreateSponsorshipParams) (Sponsorship, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO sponsorships (user_id, case_id, monthly_amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.UserID, arg.CaseID, arg.MonthlyAmount, arg.Status, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Sponsorship{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Sponsorship{}, err
	}
	return q.GetSponsorshipByID(ctx, id)
}

// ReviewSponsorshipParams holds parameters for ReviewSponsorship.
type ReviewSponsorshipParams struct {
	ID         int64
	Status     string
	Note       string
	ReviewedBy int64
	ReviewedAt time.Time
}

// ReviewSponsorship records a review decision and returns the updated row.
func (q *Queries) ReviewSponsorship(ctx context.Context, arg ReviewSponsorshipParams) (Sponsorship, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sponsorships SET status = ?, note = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Status, arg.Note, arg.ReviewedBy, arg.ReviewedAt, arg.ReviewedAt, arg.ID)
	if err != nil {
		return Sponsorship{}, err
	}
	return q.GetSponsorshipByID(ctx, arg.ID)
}
