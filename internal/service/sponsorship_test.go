// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func setupSponsorshipFixtures(t *testing.T, db *sql.DB) (store.User, store.Case) {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)
	now := time.Now()

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Email:        "sponsor@example.com",
		PasswordHash: "hash",
		Role:         model.RoleStaff,
		Name:         "Sponsor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	c, err := q.CreateCase(ctx, store.CreateCaseParams{
		Title:         "Winter relief",
		Slug:          "winter-relief",
		Summary:       "Help a family through winter.",
		Status:        model.CaseStatusOpen,
		MonthlyAmount: 5000,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	return user, c
}

func TestPledge(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	user, c := setupSponsorshipFixtures(t, db)
	svc := NewSponsorshipService(db, nil)
	ctx := context.Background()

	s, err := svc.Pledge(ctx, user.ID, c.ID, 2500)
	if err != nil {
		t.Fatalf("Pledge: %v", err)
	}
	if s.Status != model.SponsorshipPending {
		t.Errorf("Status = %q, want pending", s.Status)
	}
	if s.MonthlyAmount != 2500 {
		t.Errorf("MonthlyAmount = %d, want 2500", s.MonthlyAmount)
	}
}

func TestPledgeValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	user, c := setupSponsorshipFixtures(t, db)
	svc := NewSponsorshipService(db, nil)
	ctx := context.Background()

	if _, err := svc.Pledge(ctx, user.ID, c.ID, 0); err == nil {
		t.Error("Pledge accepted a zero amount")
	}
	if _, err := svc.Pledge(ctx, user.ID, c.ID, -100); err == nil {
		t.Error("Pledge accepted a negative amount")
	}
	if _, err := svc.Pledge(ctx, user.ID, 9999, 1000); err == nil {
		t.Error("Pledge accepted an unknown case")
	}
}

func TestReviewWorkflow(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	user, c := setupSponsorshipFixtures(t, db)
	svc := NewSponsorshipService(db, nil)
	ctx := context.Background()

	s, err := svc.Pledge(ctx, user.ID, c.ID, 2500)
	if err != nil {
		t.Fatalf("Pledge: %v", err)
	}

	approved, err := svc.Review(ctx, s.ID, model.SponsorshipApproved, "verified income", user.ID)
	if err != nil {
		t.Fatalf("Review (approve): %v", err)
	}
	if approved.Status != model.SponsorshipApproved {
		t.Errorf("Status = %q, want approved", approved.Status)
	}
	if approved.Note != "verified income" {
		t.Errorf("Note = %q", approved.Note)
	}
	if !approved.ReviewedBy.Valid || approved.ReviewedBy.Int64 != user.ID {
		t.Errorf("ReviewedBy = %v, want %d", approved.ReviewedBy, user.ID)
	}

	// Approved can only be cancelled.
	if _, err := svc.Review(ctx, s.ID, model.SponsorshipRejected, "", user.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve -> reject: err = %v, want ErrInvalidTransition", err)
	}

	cancelled, err := svc.Review(ctx, s.ID, model.SponsorshipCancelled, "sponsor withdrew", user.ID)
	if err != nil {
		t.Fatalf("Review (cancel): %v", err)
	}
	if cancelled.Status != model.SponsorshipCancelled {
		t.Errorf("Status = %q, want cancelled", cancelled.Status)
	}

	// Cancelled is terminal.
	if _, err := svc.Review(ctx, s.ID, model.SponsorshipApproved, "", user.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel -> approve: err = %v, want ErrInvalidTransition", err)
	}
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	user, c := setupSponsorshipFixtures(t, db)
	svc := NewSponsorshipService(db, nil)
	ctx := context.Background()

	s, err := svc.Pledge(ctx, user.ID, c.ID, 1000)
	if err != nil {
		t.Fatalf("Pledge: %v", err)
	}
	if _, err := svc.Review(ctx, s.ID, "maybe", "", user.ID); err == nil {
		t.Error("Review accepted an unknown status")
	}
}
