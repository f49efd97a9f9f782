// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"casedesk/internal/auth"
	"casedesk/internal/middleware"
	"casedesk/internal/service"
	"casedesk/internal/store"
)

// AuthHandler handles login, logout, and the current-user endpoint.
type AuthHandler struct {
	db         *sql.DB
	queries    *store.Queries
	sm         *scs.SessionManager
	protection *middleware.LoginProtection
	events     *service.EventService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, protection *middleware.LoginProtection, events *service.EventService) *AuthHandler {
	return &AuthHandler{
		db:         db,
		queries:    store.New(db),
		sm:         sm,
		protection: protection,
		events:     events,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password are required", nil)
		return
	}

	ip := middleware.ClientIP(r)

	if locked, remaining := h.protection.IsAccountLocked(email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("account locked, try again in %s", remaining.Round(time.Second)), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "login failed")
			return
		}
		// Unknown email still counts as a failed attempt so the account
		// namespace cannot be probed faster than a real account.
		h.protection.RecordFailedAttempt(email)
		_ = h.events.LogLogin(r.Context(), 0, email, ip, r.UserAgent(), false)
		WriteUnauthorized(w, "invalid email or password")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.protection.RecordFailedAttempt(email)
		_ = h.events.LogLogin(r.Context(), user.ID, email, ip, r.UserAgent(), false)
		WriteUnauthorized(w, "invalid email or password")
		return
	}

	h.protection.RecordSuccessfulLogin(email)

	// Upgrade the hash when the parameters have been strengthened since
	// the password was last set.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash, time.Now()); err != nil {
				slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	// A fresh session token prevents session fixation.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		WriteInternalError(w, "login failed")
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	_ = h.events.LogLogin(r.Context(), user.ID, email, ip, r.UserAgent(), true)

	WriteSuccess(w, user, nil)
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		WriteInternalError(w, "logout failed")
		return
	}
	WriteSuccess(w, map[string]string{"status": "logged out"}, nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "not logged in")
		return
	}
	WriteSuccess(w, user, nil)
}
