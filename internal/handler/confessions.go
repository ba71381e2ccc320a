// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// ConfessionHandler handles pile-baseline declarations.
type ConfessionHandler struct {
	confessions *service.ConfessionService
	home        *service.HomeService
}

// NewConfessionHandler creates a ConfessionHandler.
func NewConfessionHandler(confessions *service.ConfessionService, home *service.HomeService) *ConfessionHandler {
	return &ConfessionHandler{confessions: confessions, home: home}
}

type confessRequest struct {
	// Pointer so a missing count and an explicit zero are distinct.
	MiniCount *int64 `json:"miniCount"`
}

// Create handles POST /api/confessions.
func (h *ConfessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req confessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MiniCount == nil || *req.MiniCount < 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid mini count")
		return
	}

	confession, event, err := h.confessions.Confess(r.Context(), userID, *req.MiniCount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMiniCount) {
			writeJSONError(w, http.StatusBadRequest, "Invalid mini count")
			return
		}
		writeInternalError(w, "creating confession", err)
		return
	}
	h.home.Invalidate(r.Context(), userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"confession": confession,
		"event":      event,
	})
}

// Latest handles GET /api/confessions, returning the caller's most
// recent confession as a zero-or-one element list.
func (h *ConfessionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	latest, ok, err := h.confessions.Latest(r.Context(), userID)
	if err != nil {
		writeInternalError(w, "loading latest confession", err)
		return
	}

	confessions := []store.Confession{}
	if ok {
		confessions = append(confessions, latest)
	}
	writeJSON(w, http.StatusOK, confessions)
}
