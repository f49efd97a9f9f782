// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestCanTransitionSponsorship(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{SponsorshipPending, SponsorshipApproved, true},
		{SponsorshipPending, SponsorshipRejected, true},
		{SponsorshipPending, SponsorshipCancelled, false},
		{SponsorshipPending, SponsorshipPending, false},
		{SponsorshipApproved, SponsorshipCancelled, true},
		{SponsorshipApproved, SponsorshipRejected, false},
		{SponsorshipRejected, SponsorshipApproved, false},
		{SponsorshipCancelled, SponsorshipPending, false},
	}
	for _, tt := range tests {
		if got := CanTransitionSponsorship(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionSponsorship(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidCaseStatus(t *testing.T) {
	for _, s := range []string{CaseStatusDraft, CaseStatusOpen, CaseStatusClosed} {
		if !ValidCaseStatus(s) {
			t.Errorf("ValidCaseStatus(%q) = false, want true", s)
		}
	}
	if ValidCaseStatus("archived") {
		t.Error("ValidCaseStatus(archived) = true, want false")
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleAdmin) || !ValidRole(RoleStaff) {
		t.Error("known roles reported invalid")
	}
	if ValidRole("superuser") {
		t.Error("ValidRole(superuser) = true, want false")
	}
}
