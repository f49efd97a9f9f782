// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"casedesk/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// DefaultMenuSlug names the navigation menu created on first boot.
const DefaultMenuSlug = "main"

// Seed creates initial data in the database: the admin account and the main
// navigation menu. Safe to call on every startup.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	return seedMainMenu(ctx, queries)
}

func seedAdmin(ctx context.Context, q *Queries) error {
	_, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         "admin",
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedMainMenu(ctx context.Context, q *Queries) error {
	_, err := q.GetMenuBySlug(ctx, DefaultMenuSlug)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for main menu: %w", err)
	}

	now := time.Now()
	menu, err := q.CreateMenu(ctx, CreateMenuParams{
		Name:      "Main Navigation",
		Slug:      DefaultMenuSlug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating main menu: %w", err)
	}

	items := []struct {
		label string
		href  string
	}{
		{"Home", "/"},
		{"Cases", "/cases"},
		{"About", "/about"},
	}
	for i, it := range items {
		_, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
			MenuID:    menu.ID,
			PublicID:  uuid.NewString(),
			Label:     it.label,
			Href:      it.href,
			SortOrder: int64(i),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating menu item %q: %w", it.label, err)
		}
	}

	slog.Info("created default main menu", "id", menu.ID, "items", len(items))
	return nil
}
