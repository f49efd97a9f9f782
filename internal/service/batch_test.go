// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/store"
	"casedesk/internal/testutil"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10", 1000, false},
		{"10.5", 1050, false},
		{"10.50", 1050, false},
		{"0.05", 5, false},
		{" 12.34 ", 1234, false},
		{"", 0, true},
		{"-5", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"12.-5", 0, true},
		{"12.+5", 0, true},
		{"+12.50", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseContributions(t *testing.T) {
	csv := "nickname,amount,date,memo\n" +
		"alice,10.50,2026-01-15,January\n" +
		"bob,5,2026-01-16\n" +
		"alice,20.00,2026-02-15,February\n"

	rows, err := ParseContributions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseContributions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Nickname != "alice" || rows[0].Amount != 1050 || rows[0].Memo != "January" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Amount != 500 || rows[1].Memo != "" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if !rows[2].PaidAt.Equal(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("row 2 PaidAt = %v", rows[2].PaidAt)
	}

	nicks := Nicknames(rows)
	if len(nicks) != 2 || nicks[0] != "alice" || nicks[1] != "bob" {
		t.Errorf("Nicknames = %v, want [alice bob]", nicks)
	}
}

func TestParseContributionsErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"header only", "nickname,amount,date\n"},
		{"missing columns", "alice,10.50\n"},
		{"empty nickname", ",10.50,2026-01-15\n"},
		{"bad amount", "alice,ten,2026-01-15\n"},
		{"bad date", "alice,10.50,15/01/2026\n"},
	}
	for _, tt := range tests {
		if _, err := ParseContributions(strings.NewReader(tt.csv)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func createBatchUser(t *testing.T, db *sql.DB, email, name string) store.User {
	t.Helper()
	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleStaff,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestBatchUploadAndProcess(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := createBatchUser(t, db, "admin@example.com", "Admin")
	alice := createBatchUser(t, db, "alice@example.com", "Alice Smith")
	bob := createBatchUser(t, db, "bob@example.com", "Bob Jones")

	svc := NewBatchService(db, nil)
	rows := []ParsedRow{
		{LineNo: 1, Nickname: "alice", Amount: 1050, PaidAt: time.Now()},
		{LineNo: 2, Nickname: "bobby", Amount: 500, PaidAt: time.Now()},
		{LineNo: 3, Nickname: "alice", Amount: 2000, PaidAt: time.Now()},
	}

	batch, err := svc.Upload(ctx, "jan.csv", model.BatchSourceCSV, admin.ID, rows)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if batch.Status != model.BatchPending {
		t.Errorf("Status = %q, want pending", batch.Status)
	}
	if batch.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3", batch.RowCount)
	}

	// Processing is gated until every nickname is mapped.
	if _, err := svc.Process(ctx, batch.ID, admin.ID); !errors.Is(err, ErrUnmappedNicknames) {
		t.Fatalf("Process before mapping: err = %v, want ErrUnmappedNicknames", err)
	}

	if err := svc.MapNickname(ctx, batch.ID, "alice", alice.ID); err != nil {
		t.Fatalf("MapNickname(alice): %v", err)
	}
	if _, err := svc.Process(ctx, batch.ID, admin.ID); !errors.Is(err, ErrUnmappedNicknames) {
		t.Fatalf("Process with one unmapped: err = %v, want ErrUnmappedNicknames", err)
	}

	if err := svc.MapNickname(ctx, batch.ID, "bobby", bob.ID); err != nil {
		t.Fatalf("MapNickname(bobby): %v", err)
	}

	n, err := svc.Process(ctx, batch.ID, admin.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n != 3 {
		t.Errorf("Process created %d contributions, want 3", n)
	}

	q := store.New(db)
	aliceContribs, err := q.ListContributionsForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListContributionsForUser: %v", err)
	}
	if len(aliceContribs) != 2 {
		t.Errorf("alice has %d contributions, want 2", len(aliceContribs))
	}

	got, err := q.GetBatchByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatchByID: %v", err)
	}
	if got.Status != model.BatchProcessed {
		t.Errorf("batch status = %q, want processed", got.Status)
	}

	// A processed batch cannot run again.
	if _, err := svc.Process(ctx, batch.ID, admin.ID); err == nil {
		t.Error("Process accepted an already processed batch")
	}
}

func TestMapNicknameUnknownUser(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	admin := createBatchUser(t, db, "admin@example.com", "Admin")
	svc := NewBatchService(db, nil)

	batch, err := svc.Upload(context.Background(), "x.csv", model.BatchSourceCSV, admin.ID, []ParsedRow{
		{LineNo: 1, Nickname: "ghost", Amount: 100, PaidAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.MapNickname(context.Background(), batch.ID, "ghost", 9999); err == nil {
		t.Error("MapNickname accepted an unknown user")
	}
}

func TestSuggestUsersFoldsAccents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	createBatchUser(t, db, "hmuller@example.com", "Hans Müller")
	createBatchUser(t, db, "jose@example.com", "José García")
	createBatchUser(t, db, "other@example.com", "Somebody Else")

	svc := NewBatchService(db, nil)
	ctx := context.Background()

	matches, err := svc.SuggestUsers(ctx, "muller")
	if err != nil {
		t.Fatalf("SuggestUsers: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Hans Müller" {
		t.Errorf("SuggestUsers(muller) = %v, want Hans Müller", matches)
	}

	// Matches on the email local part too.
	matches, err = svc.SuggestUsers(ctx, "jose")
	if err != nil {
		t.Fatalf("SuggestUsers: %v", err)
	}
	if len(matches) != 1 || matches[0].Email != "jose@example.com" {
		t.Errorf("SuggestUsers(jose) = %v, want José García", matches)
	}

	matches, err = svc.SuggestUsers(ctx, "nobody-matches-this")
	if err != nil {
		t.Fatalf("SuggestUsers: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("SuggestUsers(nobody) = %v, want none", matches)
	}
}

func TestExpireStale(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := createBatchUser(t, db, "admin@example.com", "Admin")
	q := store.New(db)

	_, err := q.CreateBatch(ctx, store.CreateBatchParams{
		Token:      "stale-token",
		Filename:   "old.csv",
		Source:     model.BatchSourceCSV,
		Status:     model.BatchPending,
		UploadedBy: admin.ID,
		RowCount:   1,
		CreatedAt:  time.Now().Add(-72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	svc := NewBatchService(db, nil)
	n, err := svc.ExpireStale(ctx, 48*time.Hour)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d batches, want 1", n)
	}
}
