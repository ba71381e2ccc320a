// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users      *service.UserService
	sm         *scs.SessionManager
	protection *middleware.LoginProtection
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService, sm *scs.SessionManager, protection *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{users: users, sm: sm, protection: protection}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	case errors.Is(err, service.ErrDuplicateUser):
		writeJSONError(w, http.StatusBadRequest, "Username or email already exists")
		return
	case err != nil:
		writeInternalError(w, "registering user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if locked, remaining := h.protection.IsAccountLocked(req.Email); locked {
		slog.Warn("login attempt on locked account", "remaining", remaining.Round(1e9))
		writeJSONError(w, http.StatusTooManyRequests, "Account temporarily locked, try again later")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.protection.RecordFailedAttempt(req.Email)
			writeJSONError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeInternalError(w, "authenticating user", err)
		return
	}
	h.protection.RecordSuccessfulLogin(req.Email)

	// Rotate the session token on privilege change.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		writeInternalError(w, "renewing session token", err)
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	ua := useragent.Parse(r.UserAgent())
	slog.Info("user logged in",
		"user", user.Username,
		"ip", middleware.GetClientIP(r),
		"browser", ua.Name,
		"os", ua.OS,
		"mobile", ua.Mobile,
	)

	writeJSON(w, http.StatusOK, map[string]any{"user": publicUserJSON(user)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		writeInternalError(w, "destroying session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": publicUserJSON(*user)})
}
