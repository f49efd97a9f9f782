// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/store"
)

// ErrInvalidTransition is returned when a sponsorship status change is not
// allowed by the workflow.
var ErrInvalidTransition = errors.New("invalid sponsorship status transition")

// SponsorshipService manages sponsorship pledges and their review workflow.
type SponsorshipService struct {
	queries *store.Queries
	events  *EventService
}

// NewSponsorshipService creates a SponsorshipService. events may be nil.
func NewSponsorshipService(db *sql.DB, events *EventService) *SponsorshipService {
	return &SponsorshipService{
		queries: store.New(db),
		events:  events,
	}
}

// Pledge creates a pending sponsorship for a user on a case.
func (s *SponsorshipService) Pledge(ctx context.Context, userID, caseID, monthlyAmount int64) (store.Sponsorship, error) {
	if monthlyAmount <= 0 {
		return store.Sponsorship{}, fmt.Errorf("monthly amount must be positive")
	}
	if _, err := s.queries.GetCaseByID(ctx, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Sponsorship{}, fmt.Errorf("unknown case %d", caseID)
		}
		return store.Sponsorship{}, err
	}

	now := time.Now()
	sponsorship, err := s.queries.CreateSponsorship(ctx, store.CreateSponsorshipParams{
		UserID:        userID,
		CaseID:        caseID,
		MonthlyAmount: monthlyAmount,
		Status:        model.SponsorshipPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return store.Sponsorship{}, fmt.Errorf("creating sponsorship: %w", err)
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategorySponsor, "sponsorship pledged", userID, map[string]any{
			"sponsorship_id": sponsorship.ID,
			"case_id":        caseID,
			"monthly_amount": monthlyAmount,
		})
	}
	return sponsorship, nil
}

// Review moves a sponsorship to a new status, recording who decided and why.
// The workflow only allows pending to be approved or rejected and approved
// to be cancelled.
func (s *SponsorshipService) Review(ctx context.Context, id int64, newStatus, note string, reviewedBy int64) (store.Sponsorship, error) {
	if !model.ValidSponsorshipStatus(newStatus) {
		return store.Sponsorship{}, fmt.Errorf("unknown status %q", newStatus)
	}

	sponsorship, err := s.queries.GetSponsorshipByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Sponsorship{}, fmt.Errorf("unknown sponsorship %d", id)
		}
		return store.Sponsorship{}, err
	}

	if !model.CanTransitionSponsorship(sponsorship.Status, newStatus) {
		return store.Sponsorship{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sponsorship.Status, newStatus)
	}

	updated, err := s.queries.ReviewSponsorship(ctx, store.ReviewSponsorshipParams{
		ID:         id,
		Status:     newStatus,
		Note:       note,
		ReviewedBy: reviewedBy,
		ReviewedAt: time.Now(),
	})
	if err != nil {
		return store.Sponsorship{}, fmt.Errorf("reviewing sponsorship: %w", err)
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategorySponsor, "sponsorship reviewed", reviewedBy, map[string]any{
			"sponsorship_id": id,
			"status":         newStatus,
		})
	}
	return updated, nil
}
