// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"

	"casedesk/internal/model"
	"casedesk/internal/store"
)

// ErrUnmappedNicknames is returned by Process when the batch still has
// contributor nicknames without a user mapping.
var ErrUnmappedNicknames = errors.New("batch has unmapped nicknames")

// ParsedRow is one line of an uploaded contribution file.
type ParsedRow struct {
	LineNo   int
	Nickname string
	Amount   int64 // Cents
	PaidAt   time.Time
	Memo     string
}

// BatchService handles contribution batch uploads: parsing, nickname
// mapping, and processing into contributions.
type BatchService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
}

// NewBatchService creates a BatchService. events may be nil.
func NewBatchService(db *sql.DB, events *EventService) *BatchService {
	return &BatchService{
		db:      db,
		queries: store.New(db),
		events:  events,
	}
}

// parseAmount converts a decimal amount string like "12.50" into cents.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		return 0, fmt.Errorf("negative amount %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	units, err := parseDigits(whole)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		d, err := parseDigits(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = d * 10
	case 2:
		d, err := parseDigits(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = d
	default:
		return 0, fmt.Errorf("invalid amount %q: too many decimal places", s)
	}

	return units*100 + cents, nil
}

// parseDigits parses a run of decimal digits. Unlike strconv.ParseInt it
// rejects sign characters, so "12.-5" cannot sneak through as 1195 cents.
func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit character %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseContributions reads a contribution CSV with columns
// nickname,amount,date[,memo]. A header row is skipped when present. Dates
// use the 2006-01-02 format and amounts are decimal currency values.
func ParseContributions(r io.Reader) ([]ParsedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []ParsedRow
	lineNo := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		lineNo++

		if lineNo == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "nickname") {
			continue
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected nickname,amount,date[,memo]", lineNo)
		}

		nickname := strings.TrimSpace(record[0])
		if nickname == "" {
			return nil, fmt.Errorf("line %d: empty nickname", lineNo)
		}

		amount, err := parseAmount(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		paidAt, err := time.Parse("2006-01-02", strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", lineNo, record[2])
		}

		memo := ""
		if len(record) > 3 {
			memo = strings.TrimSpace(record[3])
		}

		rows = append(rows, ParsedRow{
			LineNo:   lineNo,
			Nickname: nickname,
			Amount:   amount,
			PaidAt:   paidAt,
			Memo:     memo,
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no contribution rows found")
	}
	return rows, nil
}

// Nicknames returns the distinct nicknames of parsed rows in order of first
// appearance.
func Nicknames(rows []ParsedRow) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		if !seen[row.Nickname] {
			seen[row.Nickname] = true
			out = append(out, row.Nickname)
		}
	}
	return out
}

// Upload stores a parsed contribution file as a pending batch.
func (s *BatchService) Upload(ctx context.Context, filename, source string, uploadedBy int64, rows []ParsedRow) (store.Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Batch{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	batch, err := qtx.CreateBatch(ctx, store.CreateBatchParams{
		Token:      uuid.NewString(),
		Filename:   filename,
		Source:     source,
		Status:     model.BatchPending,
		UploadedBy: uploadedBy,
		RowCount:   int64(len(rows)),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return store.Batch{}, fmt.Errorf("creating batch: %w", err)
	}

	for _, row := range rows {
		err := qtx.CreateBatchRow(ctx, store.CreateBatchRowParams{
			BatchID:  batch.ID,
			LineNo:   int64(row.LineNo),
			Nickname: row.Nickname,
			Amount:   row.Amount,
			PaidAt:   row.PaidAt,
			Memo:     row.Memo,
		})
		if err != nil {
			return store.Batch{}, fmt.Errorf("storing row %d: %w", row.LineNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Batch{}, fmt.Errorf("committing batch: %w", err)
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryBatch, "batch uploaded", uploadedBy, map[string]any{
			"batch_id": batch.ID,
			"filename": filename,
			"rows":     len(rows),
		})
	}
	return batch, nil
}

// UnmappedNicknames returns the nicknames of a batch that still need a user
// mapping.
func (s *BatchService) UnmappedNicknames(ctx context.Context, batchID int64) ([]string, error) {
	return s.queries.ListUnmappedNicknames(ctx, batchID)
}

// MapNickname records which user a contributor nickname belongs to.
func (s *BatchService) MapNickname(ctx context.Context, batchID int64, nickname string, userID int64) error {
	if _, err := s.queries.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("unknown user %d", userID)
		}
		return err
	}
	return s.queries.UpsertBatchMapping(ctx, store.UpsertBatchMappingParams{
		BatchID:  batchID,
		Nickname: nickname,
		UserID:   userID,
	})
}

// foldName lowercases and transliterates a name for fuzzy matching, so
// "Müller" and "muller" compare equal.
func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// SuggestUsers returns users whose name or email matches the nickname after
// accent folding.
func (s *BatchService) SuggestUsers(ctx context.Context, nickname string) ([]store.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	folded := foldName(nickname)
	if folded == "" {
		return nil, nil
	}

	var matches []store.User
	for _, u := range users {
		name := foldName(u.Name)
		local, _, _ := strings.Cut(u.Email, "@")
		if strings.Contains(name, folded) || strings.Contains(foldName(local), folded) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

// Process converts a fully mapped pending batch into contributions. Returns
// ErrUnmappedNicknames while any nickname lacks a mapping; the rows stay
// untouched until then.
func (s *BatchService) Process(ctx context.Context, batchID int64, processedBy int64) (int, error) {
	batch, err := s.queries.GetBatchByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("unknown batch %d", batchID)
		}
		return 0, err
	}
	if batch.Status != model.BatchPending {
		return 0, fmt.Errorf("batch %d is %s, not pending", batchID, batch.Status)
	}

	unmapped, err := s.queries.ListUnmappedNicknames(ctx, batchID)
	if err != nil {
		return 0, err
	}
	if len(unmapped) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnmappedNicknames, strings.Join(unmapped, ", "))
	}

	mappings, err := s.queries.ListBatchMappings(ctx, batchID)
	if err != nil {
		return 0, err
	}
	rows, err := s.queries.ListBatchRows(ctx, batchID)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	now := time.Now()
	for _, row := range rows {
		userID, ok := mappings[row.Nickname]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnmappedNicknames, row.Nickname)
		}
		err := qtx.CreateContribution(ctx, store.CreateContributionParams{
			UserID:    userID,
			BatchID:   sql.NullInt64{Int64: batchID, Valid: true},
			Amount:    row.Amount,
			PaidAt:    row.PaidAt,
			Memo:      row.Memo,
			CreatedAt: now,
		})
		if err != nil {
			return 0, fmt.Errorf("creating contribution for line %d: %w", row.LineNo, err)
		}
	}

	err = qtx.UpdateBatchStatus(ctx, store.UpdateBatchStatusParams{
		ID:          batchID,
		Status:      model.BatchProcessed,
		ProcessedAt: sql.NullTime{Time: now, Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("updating batch status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryBatch, "batch processed", processedBy, map[string]any{
			"batch_id":      batchID,
			"contributions": len(rows),
		})
	}
	return len(rows), nil
}

// ExpireStale marks pending batches older than maxAge as expired.
func (s *BatchService) ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.queries.ExpireStaleBatches(ctx, store.ExpireStaleBatchesParams{
		Before: time.Now().Add(-maxAge),
	})
}
