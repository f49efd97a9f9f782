// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/service"
	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func TestSchedulerStartStop(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	batches := service.NewBatchService(db, nil)
	events := service.NewEventService(db, nil)

	s := New(DefaultConfig(), batches, events, nil, testutil.TestLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestExpireBatchesJob(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)
	now := time.Now()

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
		Name:         "Admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = q.CreateBatch(ctx, store.CreateBatchParams{
		Token:      "stale",
		Filename:   "old.csv",
		Source:     model.BatchSourceCSV,
		Status:     model.BatchPending,
		UploadedBy: user.ID,
		RowCount:   1,
		CreatedAt:  now.Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	batches := service.NewBatchService(db, nil)
	events := service.NewEventService(db, nil)
	s := New(DefaultConfig(), batches, events, nil, testutil.TestLogger())

	s.expireBatches()

	batch, err := q.GetBatchByToken(ctx, "stale")
	if err != nil {
		t.Fatalf("GetBatchByToken: %v", err)
	}
	if batch.Status != model.BatchExpired {
		t.Errorf("status = %q, want expired", batch.Status)
	}
}

func TestPurgeEventsJob(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := store.New(db)

	err := q.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventInfo,
		Category:  model.EventCategorySystem,
		Message:   "ancient",
		Metadata:  "{}",
		CreatedAt: time.Now().Add(-365 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	err = q.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventInfo,
		Category:  model.EventCategorySystem,
		Message:   "recent",
		Metadata:  "{}",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	batches := service.NewBatchService(db, nil)
	events := service.NewEventService(db, nil)
	s := New(DefaultConfig(), batches, events, nil, testutil.TestLogger())

	s.purgeEvents()

	n, err := q.CountEvents(ctx, store.CountEventsParams{})
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("events remaining = %d, want 1", n)
	}
}
