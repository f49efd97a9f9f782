// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"casedesk/internal/auth"
	"casedesk/internal/model"
	"casedesk/internal/store"
)

// UserHandler manages console users.
type UserHandler struct {
	queries *store.Queries
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{queries: store.New(db)}
}

// List returns all users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteInternalError(w, "failed to list users")
		return
	}
	WriteSuccess(w, users, nil)
}

// Contributions returns the credited contributions of one user, newest first.
func (h *UserHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid user id", nil)
		return
	}
	if _, err := h.queries.GetUserByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "user not found")
			return
		}
		WriteInternalError(w, "failed to load user")
		return
	}

	contributions, err := h.queries.ListContributionsForUser(r.Context(), id)
	if err != nil {
		WriteInternalError(w, "failed to list contributions")
		return
	}
	if contributions == nil {
		contributions = []store.Contribution{}
	}
	WriteSuccess(w, contributions, nil)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 10

// Create adds a new console user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	fieldErrors := make(map[string]string)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "a valid email is required"
	}
	if req.Name == "" {
		fieldErrors["name"] = "name is required"
	}
	if len(req.Password) < minPasswordLength {
		fieldErrors["password"] = "password must be at least 10 characters"
	}
	if req.Role == "" {
		req.Role = model.RoleStaff
	}
	if !model.ValidRole(req.Role) {
		fieldErrors["role"] = "role must be admin or staff"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteConflict(w, "a user with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "failed to hash password")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		WriteInternalError(w, "failed to create user")
		return
	}
	WriteCreated(w, user)
}
