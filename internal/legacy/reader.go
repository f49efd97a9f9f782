// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package legacy imports contributor payments from the charity's old
// MySQL database into the batch pipeline.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Payment is one contributor payment row from the legacy database.
type Payment struct {
	Nickname    string
	AmountCents int64
	PaidAt      time.Time
	Memo        string
}

// Reader reads payments from the legacy MySQL database.
type Reader struct {
	db     *sql.DB
	prefix string // Table prefix (e.g., "charity_")

	// Schema version detection (memo column added in a later legacy release)
	hasMemo        bool
	schemaDetected bool
}

// NewReader opens a connection to the legacy database.
func NewReader(dsn string, tablePrefix string) (*Reader, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Reader{db: db, prefix: tablePrefix}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// BuildDSN builds a MySQL DSN from connection parameters.
func BuildDSN(user, password, host, port, database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port, database)
}

// detectColumns checks which columns exist in the payments table. The memo
// column is missing from databases created before the last legacy release.
func (r *Reader) detectColumns(ctx context.Context) error {
	if r.schemaDetected {
		return nil
	}

	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
	`

	tableName := r.prefix + "payments"
	rows, err := r.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return fmt.Errorf("failed to query column information: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		if columnName == "memo" {
			r.hasMemo = true
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}

	r.schemaDetected = true
	return nil
}

// Payments retrieves payment rows made on or after since. Amounts are
// converted to cents in SQL so the DECIMAL column never round-trips through
// a float.
func (r *Reader) Payments(ctx context.Context, since time.Time) ([]Payment, error) {
	if err := r.detectColumns(ctx); err != nil {
		return nil, fmt.Errorf("failed to detect schema: %w", err)
	}

	cols := "nickname, CAST(ROUND(amount * 100) AS SIGNED), DATE_FORMAT(paid_at, '%Y-%m-%d')"
	if r.hasMemo {
		cols += ", COALESCE(memo, '')"
	}

	query := fmt.Sprintf(`SELECT %s FROM %spayments WHERE paid_at >= ? ORDER BY paid_at, id`, cols, r.prefix)

	rows, err := r.db.QueryContext(ctx, query, since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var paidAt string
		dest := []any{&p.Nickname, &p.AmountCents, &paidAt}
		if r.hasMemo {
			dest = append(dest, &p.Memo)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p.PaidAt, err = time.Parse("2006-01-02", paidAt)
		if err != nil {
			return nil, fmt.Errorf("invalid paid_at %q: %w", paidAt, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}
