// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
)

// MiniHandler handles the painting inventory.
type MiniHandler struct {
	minis *service.MiniService
	home  *service.HomeService
}

// NewMiniHandler creates a MiniHandler.
func NewMiniHandler(minis *service.MiniService, home *service.HomeService) *MiniHandler {
	return &MiniHandler{minis: minis, home: home}
}

type createMiniRequest struct {
	Name            string `json:"name"`
	System          string `json:"system"`
	Status          string `json:"status"`
	Stage           string `json:"stage"`
	ProgressPercent int64  `json:"progressPercent"`
	CoverImageURL   string `json:"coverImageUrl"`
}

// Create handles POST /api/minis.
func (h *MiniHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req createMiniRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProgressPercent < 0 || req.ProgressPercent > 100 {
		writeJSONError(w, http.StatusBadRequest, "progressPercent must be between 0 and 100")
		return
	}

	mini, event, err := h.minis.Create(r.Context(), userID, service.CreateMiniInput{
		Name:            req.Name,
		System:          req.System,
		Status:          req.Status,
		Stage:           req.Stage,
		ProgressPercent: req.ProgressPercent,
		CoverImageURL:   req.CoverImageURL,
	})
	switch {
	case errors.Is(err, service.ErrMiniNameRequired):
		writeJSONError(w, http.StatusBadRequest, "Name is required")
		return
	case errors.Is(err, service.ErrInvalidStatus):
		writeJSONError(w, http.StatusBadRequest, "Unknown status")
		return
	case err != nil:
		writeInternalError(w, "creating mini", err)
		return
	}
	h.home.Invalidate(r.Context(), userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"mini":  mini,
		"event": event,
	})
}

// List handles GET /api/minis.
func (h *MiniHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	minis, err := h.minis.List(r.Context(), userID)
	if err != nil {
		writeInternalError(w, "listing minis", err)
		return
	}
	writeJSON(w, http.StatusOK, minis)
}
