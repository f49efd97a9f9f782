// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Attachment represents a file uploaded for a case.
type Attachment struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	UUID      string    `json:"uuid"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Width     int64     `json:"width"`
	Height    int64     `json:"height"`
	FilePath  string    `json:"-"`
	ThumbPath string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

const attachmentColumns = `id, case_id, uuid, filename, mime_type, size, width, height, file_path, thumb_path, created_at`

func scanAttachment(row *sql.Row) (Attachment, error) {
	var a Attachment
	err := row.Scan(&a.ID, &a.CaseID, &a.UUID, &a.Filename, &a.MimeType, &a.Size,
		&a.Width, &a.Height, &a.FilePath, &a.ThumbPath, &a.CreatedAt)
	return a, err
}

// ListAttachmentsForCase returns a case's attachments newest first.
func (q *Queries) ListAttachmentsForCase(ctx context.Context, caseID int64) ([]Attachment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments
		 WHERE case_id = ? ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.CaseID, &a.UUID, &a.Filename, &a.MimeType, &a.Size,
			&a.Width, &a.Height, &a.FilePath, &a.ThumbPath, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// GetAttachmentByUUID fetches an attachment by its public identifier.
func (q *Queries) GetAttachmentByUUID(ctx context.Context, uuid string) (Attachment, error) {
	return scanAttachment(q.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE uuid = ?`, uuid))
}

// CreateAttachmentParams holds parameters for CreateAttachment.
type CreateAttachmentParams struct {
	CaseID    int64
	UUID      string
	Filename  string
	MimeType  string
	Size      int64
	Width     int64
	Height    int64
	FilePath  string
	ThumbPath string
	CreatedAt time.Time
}

// CreateAttachment inserts a new attachment record and returns it.
func (q *Queries) CreateAttachment(ctx context.Context, arg CreateAttachmentParams) (Attachment, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO attachments (case_id, uuid, filename, mime_type, size, width, height,
		 file_path, thumb_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.CaseID, arg.UUID, arg.Filename, arg.MimeType, arg.Size, arg.Width, arg.Height,
		arg.FilePath, arg.ThumbPath, arg.CreatedAt)
	if err != nil {
		return Attachment{}, err
	}
	return q.GetAttachmentByUUID(ctx, arg.UUID)
}

// DeleteAttachment removes an attachment record.
func (q *Queries) DeleteAttachment(ctx context.Context, uuid string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM attachments WHERE uuid = ?`, uuid)
	return err
}
