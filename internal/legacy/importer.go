// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/service"
	"casedesk/internal/store"
)

// Importer pulls legacy payments into a pending batch. The batch then goes
// through the same nickname mapping and processing as a CSV upload.
type Importer struct {
	reader  *Reader
	batches *service.BatchService
}

// NewImporter creates an Importer over an open legacy reader.
func NewImporter(reader *Reader, batches *service.BatchService) *Importer {
	return &Importer{reader: reader, batches: batches}
}

// Run reads payments made on or after since and uploads them as one batch.
func (i *Importer) Run(ctx context.Context, importedBy int64, since time.Time) (store.Batch, error) {
	payments, err := i.reader.Payments(ctx, since)
	if err != nil {
		return store.Batch{}, fmt.Errorf("reading legacy payments: %w", err)
	}
	if len(payments) == 0 {
		return store.Batch{}, fmt.Errorf("no legacy payments since %s", since.Format("2006-01-02"))
	}

	rows := make([]service.ParsedRow, 0, len(payments))
	for n, p := range payments {
		rows = append(rows, service.ParsedRow{
			LineNo:   n + 1,
			Nickname: p.Nickname,
			Amount:   p.AmountCents,
			PaidAt:   p.PaidAt,
			Memo:     p.Memo,
		})
	}

	filename := fmt.Sprintf("legacy-import-%s", time.Now().Format("2006-01-02"))
	batch, err := i.batches.Upload(ctx, filename, model.BatchSourceLegacy, importedBy, rows)
	if err != nil {
		return store.Batch{}, err
	}

	slog.Info("legacy import complete", "batch_id", batch.ID, "rows", len(rows), "since", since.Format("2006-01-02"))
	return batch, nil
}
