// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"casedesk/internal/imaging"
	"casedesk/internal/store"
)

// AttachmentHandler manages per-case file uploads.
type AttachmentHandler struct {
	queries   *store.Queries
	processor *imaging.Processor
}

// NewAttachmentHandler creates an AttachmentHandler.
func NewAttachmentHandler(db *sql.DB, processor *imaging.Processor) *AttachmentHandler {
	return &AttachmentHandler{
		queries:   store.New(db),
		processor: processor,
	}
}

// List returns a case's attachments newest first.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	caseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid case id", nil)
		return
	}
	if _, err := h.queries.GetCaseByID(r.Context(), caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "case not found")
			return
		}
		WriteInternalError(w, "failed to load case")
		return
	}

	attachments, err := h.queries.ListAttachmentsForCase(r.Context(), caseID)
	if err != nil {
		WriteInternalError(w, "failed to list attachments")
		return
	}
	if attachments == nil {
		attachments = []store.Attachment{}
	}
	WriteSuccess(w, attachments, nil)
}

// Upload stores a file for a case. Images are EXIF-normalized and get a
// thumbnail; other files are stored as-is.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	caseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid case id", nil)
		return
	}
	if _, err := h.queries.GetCaseByID(r.Context(), caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "case not found")
			return
		}
		WriteInternalError(w, "failed to load case")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "missing file field", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteInternalError(w, "failed to read upload")
		return
	}
	if len(data) == 0 {
		WriteValidationError(w, map[string]string{"file": "file is empty"})
		return
	}

	id := uuid.NewString()
	mimeType := h.processor.DetectMimeType(data)

	params := store.CreateAttachmentParams{
		CaseID:    caseID,
		UUID:      id,
		Filename:  header.Filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}

	if h.processor.IsImage(mimeType) {
		result, err := h.processor.ProcessImage(bytes.NewReader(data), id, header.Filename)
		if err != nil {
			WriteValidationError(w, map[string]string{"file": err.Error()})
			return
		}
		params.MimeType = result.MimeType
		params.Size = result.Size
		params.Width = int64(result.Width)
		params.Height = int64(result.Height)
		params.FilePath = result.FilePath

		thumbPath, err := h.processor.CreateThumbnail(result.FilePath, id, header.Filename)
		if err != nil {
			slog.Warn("failed to create thumbnail", "uuid", id, "error", err)
		} else {
			params.ThumbPath = thumbPath
		}
	} else {
		filePath, err := h.processor.StoreFile(data, id, header.Filename)
		if err != nil {
			WriteInternalError(w, "failed to store file")
			return
		}
		params.FilePath = filePath
	}

	attachment, err := h.queries.CreateAttachment(r.Context(), params)
	if err != nil {
		if err := h.processor.DeleteFiles(id); err != nil {
			slog.Warn("failed to clean up attachment files", "uuid", id, "error", err)
		}
		WriteInternalError(w, "failed to record attachment")
		return
	}
	WriteCreated(w, attachment)
}

func (h *AttachmentHandler) load(w http.ResponseWriter, r *http.Request) (store.Attachment, bool) {
	attachment, err := h.queries.GetAttachmentByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "attachment not found")
			return store.Attachment{}, false
		}
		WriteInternalError(w, "failed to load attachment")
		return store.Attachment{}, false
	}
	return attachment, true
}

// Download serves the original file.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachment, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", attachment.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachment.Filename+`"`)
	http.ServeFile(w, r, attachment.FilePath)
}

// Thumbnail serves the thumbnail, falling back to the original for images
// that were small enough to skip one.
func (h *AttachmentHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	attachment, ok := h.load(w, r)
	if !ok {
		return
	}
	path := attachment.ThumbPath
	if path == "" {
		path = attachment.FilePath
	}
	w.Header().Set("Content-Type", attachment.MimeType)
	http.ServeFile(w, r, path)
}

// Delete removes an attachment record and its files.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	attachment, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteAttachment(r.Context(), attachment.UUID); err != nil {
		WriteInternalError(w, "failed to delete attachment")
		return
	}
	if err := h.processor.DeleteFiles(attachment.UUID); err != nil {
		slog.Warn("failed to delete attachment files", "uuid", attachment.UUID, "error", err)
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}
