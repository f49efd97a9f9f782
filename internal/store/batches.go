// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Batch represents one uploaded contribution file awaiting mapping and
// processing.
type Batch struct {
	ID          int64        `json:"id"`
	Token       string       `json:"token"`
	Filename    string       `json:"filename"`
	Source      string       `json:"source"`
	Status      string       `json:"status"`
	UploadedBy  int64        `json:"uploaded_by"`
	RowCount    int64        `json:"row_count"`
	CreatedAt   time.Time    `json:"created_at"`
	ProcessedAt sql.NullTime `json:"-"`
}

// BatchRow is a single parsed line of an uploaded batch.
type BatchRow struct {
	ID       int64     `json:"id"`
	BatchID  int64     `json:"batch_id"`
	LineNo   int64     `json:"line_no"`
	Nickname string    `json:"nickname"`
	Amount   int64     `json:"amount"`
	PaidAt   time.Time `json:"paid_at"`
	Memo     string    `json:"memo,omitempty"`
}

// BatchMapping links a contributor nickname to a user within a batch.
type BatchMapping struct {
	BatchID  int64  `json:"batch_id"`
	Nickname string `json:"nickname"`
	UserID   int64  `json:"user_id"`
}

// Contribution is a processed payment credited to a user.
type Contribution struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	BatchID   sql.NullInt64 `json:"-"`
	Amount    int64         `json:"amount"`
	PaidAt    time.Time     `json:"paid_at"`
	Memo      string        `json:"memo,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

const batchColumns = `id, token, filename, source, status, uploaded_by, row_count, created_at, processed_at`

func scanBatch(row *sql.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.Token, &b.Filename, &b.Source, &b.Status, &b.UploadedBy,
		&b.RowCount, &b.CreatedAt, &b.ProcessedAt)
	return b, err
}

// ListBatches returns batches newest first.
func (q *Queries) ListBatches(ctx context.Context, limit, offset int64) ([]Batch, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM batches ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Token, &b.Filename, &b.Source, &b.Status, &b.UploadedBy,
			&b.RowCount, &b.CreatedAt, &b.ProcessedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// CountBatches returns the total number of batches.
func (q *Queries) CountBatches(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&n)
	return n, err
}

// GetBatchByID fetches a batch by ID.
func (q *Queries) GetBatchByID(ctx context.Context, id int64) (Batch, error) {
	return scanBatch(q.db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE id = ?`, id))
}

// GetBatchByToken fetches a batch by its upload token.
func (q *Queries) GetBatchByToken(ctx context.Context, token string) (Batch, error) {
	return scanBatch(q.db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE token = ?`, token))
}

// CreateBatchParams holds parameters for CreateBatch.
type CreateBatchParams struct {
	Token      string
	Filename   string
	Source     string
	Status     string
	UploadedBy int64
	RowCount   int64
	CreatedAt  time.Time
}

// CreateBatch inserts a new batch and returns it.
func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) (Batch, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO batches (token, filename, source, status, uploaded_by, row_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Token, arg.Filename, arg.Source, arg.Status, arg.UploadedBy, arg.RowCount, arg.CreatedAt)
	if err != nil {
		return Batch{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Batch{}, err
	}
	return q.GetBatchByID(ctx, id)
}

// UpdateBatchStatusParams holds parameters for UpdateBatchStatus.
type UpdateBatchStatusParams struct {
	ID          int64
	Status      string
	ProcessedAt sql.NullTime
}

// UpdateBatchStatus moves a batch to a new status, optionally stamping the
// processing time.
func (q *Queries) UpdateBatchStatus(ctx context.Context, arg UpdateBatchStatusParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE batches SET status = ?, processed_at = ? WHERE id = ?`,
		arg.Status, arg.ProcessedAt, arg.ID)
	return err
}

// ExpireStaleBatchesParams holds parameters for ExpireStaleBatches.
type ExpireStaleBatchesParams struct {
	Before time.Time
}

// ExpireStaleBatches marks pending batches older than the cutoff as expired
// and returns how many were affected.
func (q *Queries) ExpireStaleBatches(ctx context.Context, arg ExpireStaleBatchesParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE batches SET status = 'expired' WHERE status = 'pending' AND created_at < ?`,
		arg.Before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBatch removes a batch with its rows and mappings. Processed
// contributions keep a NULL batch reference.
func (q *Queries) DeleteBatch(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	return err
}

// CreateBatchRowParams holds parameters for CreateBatchRow.
type CreateBatchRowParams struct {
	BatchID  int64
	LineNo   int64
	Nickname string
	Amount   int64
	PaidAt   time.Time
	Memo     string
}

// CreateBatchRow inserts one parsed line of a batch.
func (q *Queries) CreateBatchRow(ctx context.Context, arg CreateBatchRowParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO batch_rows (batch_id, line_no, nickname, amount, paid_at, memo)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.BatchID, arg.LineNo, arg.Nickname, arg.Amount, arg.PaidAt, arg.Memo)
	return err
}

// ListBatchRows returns the rows of a batch in file order.
func (q *Queries) ListBatchRows(ctx context.Context, batchID int64) ([]BatchRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, batch_id, line_no, nickname, amount, paid_at, memo
		 FROM batch_rows WHERE batch_id = ? ORDER BY line_no`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRow
	for rows.Next() {
		var r BatchRow
		if err := rows.Scan(&r.ID, &r.BatchID, &r.LineNo, &r.Nickname, &r.Amount, &r.PaidAt, &r.Memo); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListBatchNicknames returns the distinct nicknames of a batch in order of
// first appearance.
func (q *Queries) ListBatchNicknames(ctx context.Context, batchID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT nickname FROM batch_rows WHERE batch_id = ?
		 GROUP BY nickname ORDER BY MIN(line_no)`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ListUnmappedNicknames returns the batch nicknames that have no user mapping
// yet, in order of first appearance.
func (q *Queries) ListUnmappedNicknames(ctx context.Context, batchID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT r.nickname FROM batch_rows r
		 LEFT JOIN batch_mappings m ON m.batch_id = r.batch_id AND m.nickname = r.nickname
		 WHERE r.batch_id = ? AND m.user_id IS NULL
		 GROUP BY r.nickname ORDER BY MIN(r.line_no)`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// UpsertBatchMappingParams holds parameters for UpsertBatchMapping.
type UpsertBatchMappingParams struct {
	BatchID  int64
	Nickname string
	UserID   int64
}

// UpsertBatchMapping records or replaces the user a nickname resolves to.
func (q *Queries) UpsertBatchMapping(ctx context.Context, arg UpsertBatchMappingParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO batch_mappings (batch_id, nickname, user_id) VALUES (?, ?, ?)
		 ON CONFLICT(batch_id, nickname) DO UPDATE SET user_id = excluded.user_id`,
		arg.BatchID, arg.Nickname, arg.UserID)
	return err
}

// ListBatchMappings returns the mappings of a batch keyed by nickname.
func (q *Queries) ListBatchMappings(ctx context.Context, batchID int64) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT nickname, user_id FROM batch_mappings WHERE batch_id = ?`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make(map[string]int64)
	for rows.Next() {
		var nickname string
		var userID int64
		if err := rows.Scan(&nickname, &userID); err != nil {
			return nil, err
		}
		mappings[nickname] = userID
	}
	return mappings, rows.Err()
}

// CreateContributionParams holds parameters for CreateContribution.
type CreateContributionParams struct {
	UserID    int64
	BatchID   sql.NullInt64
	Amount    int64
	PaidAt    time.Time
	Memo      string
	CreatedAt time.Time
}

// CreateContribution records a processed payment.
func (q *Queries) CreateContribution(ctx context.Context, arg CreateContributionParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contributions (user_id, batch_id, amount, paid_at, memo, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.UserID, arg.BatchID, arg.Amount, arg.PaidAt, arg.Memo, arg.CreatedAt)
	return err
}

// ListContributionsForUser returns a user's contributions newest first.
func (q *Queries) ListContributionsForUser(ctx context.Context, userID int64) ([]Contribution, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, batch_id, amount, paid_at, memo, created_at
		 FROM contributions WHERE user_id = ? ORDER BY paid_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.ID, &c.UserID, &c.BatchID, &c.Amount, &c.PaidAt, &c.Memo, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SumContributionsForBatch returns the total amount credited from a batch.
func (q *Queries) SumContributionsForBatch(ctx context.Context, batchID int64) (int64, error) {
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM contributions WHERE batch_id = ?`, batchID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
