// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"casedesk/internal/geoip"
	"casedesk/internal/model"
	"casedesk/internal/store"
)

// EventService writes audit trail entries.
type EventService struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewEventService creates an EventService. geo may be nil to skip country
// resolution.
func NewEventService(db *sql.DB, geo *geoip.Lookup) *EventService {
	return &EventService{
		queries: store.New(db),
		geo:     geo,
	}
}

// Log creates an audit entry. Metadata marshalling errors degrade to an
// empty object rather than dropping the event.
func (s *EventService) Log(ctx context.Context, level, category, message string, userID int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != 0 {
		nullUserID = sql.NullInt64{Int64: userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to write audit event", "category", category, "error", err)
	}
	return err
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID int64, metadata map[string]any) error {
	return s.Log(ctx, model.EventInfo, category, message, userID, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID int64, metadata map[string]any) error {
	return s.Log(ctx, model.EventWarning, category, message, userID, metadata)
}

// LogLogin records a login attempt with client metadata: IP, country when
// GeoIP is available, and the parsed browser and OS.
func (s *EventService) LogLogin(ctx context.Context, userID int64, email, ip, userAgentRaw string, success bool) error {
	metadata := map[string]any{
		"email": email,
		"ip":    ip,
	}

	if s.geo != nil {
		if country := s.geo.Country(ip); country != "" {
			metadata["country"] = country
		}
	}

	if userAgentRaw != "" {
		ua := useragent.Parse(userAgentRaw)
		if ua.Name != "" {
			metadata["browser"] = ua.Name
			if ua.Version != "" {
				metadata["browser_version"] = ua.Version
			}
		}
		if ua.OS != "" {
			metadata["os"] = ua.OS
		}
		if ua.Mobile {
			metadata["mobile"] = true
		}
	}

	level := model.EventInfo
	message := "user logged in"
	if !success {
		level = model.EventWarning
		message = "failed login attempt"
	}
	return s.Log(ctx, level, model.EventCategoryAuth, message, userID, metadata)
}

// PurgeOlderThan removes audit entries past the retention window.
func (s *EventService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	return s.queries.PurgeEventsBefore(ctx, time.Now().Add(-retention))
}
