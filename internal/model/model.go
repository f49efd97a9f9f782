// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the shared domain constants and the state machines
// that govern them.
package model

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff
}

// Case statuses.
const (
	CaseStatusDraft  = "draft"
	CaseStatusOpen   = "open"
	CaseStatusClosed = "closed"
)

// ValidCaseStatus reports whether s is a known case status.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseStatusDraft, CaseStatusOpen, CaseStatusClosed:
		return true
	}
	return false
}

// Sponsorship statuses.
const (
	SponsorshipPending   = "pending"
	SponsorshipApproved  = "approved"
	SponsorshipRejected  = "rejected"
	SponsorshipCancelled = "cancelled"
)

// ValidSponsorshipStatus reports whether s is a known sponsorship status.
func ValidSponsorshipStatus(s string) bool {
	switch s {
	case SponsorshipPending, SponsorshipApproved, SponsorshipRejected, SponsorshipCancelled:
		return true
	}
	return false
}

// CanTransitionSponsorship reports whether a sponsorship may move from one
// status to another. Pending can be decided either way, an approved pledge
// can only be cancelled, and rejected and cancelled are terminal.
func CanTransitionSponsorship(from, to string) bool {
	switch from {
	case SponsorshipPending:
		return to == SponsorshipApproved || to == SponsorshipRejected
	case SponsorshipApproved:
		return to == SponsorshipCancelled
	}
	return false
}

// Batch sources.
const (
	BatchSourceCSV    = "csv"
	BatchSourceLegacy = "legacy"
)

// Batch statuses.
const (
	BatchPending   = "pending"
	BatchProcessed = "processed"
	BatchExpired   = "expired"
)

// Event levels.
const (
	EventInfo    = "info"
	EventWarning = "warning"
	EventError   = "error"
)

// Event categories.
const (
	EventCategoryAuth    = "auth"
	EventCategoryMenu    = "menu"
	EventCategoryBatch   = "batch"
	EventCategoryCase    = "case"
	EventCategorySponsor = "sponsorship"
	EventCategorySystem  = "system"
)
