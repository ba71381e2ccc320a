// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
)

// ReactionHandler handles reaction upserts and removals.
type ReactionHandler struct {
	reactions *service.ReactionService
}

// NewReactionHandler creates a ReactionHandler.
func NewReactionHandler(reactions *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

type reactRequest struct {
	EventID string `json:"eventId"`
	Type    string `json:"type"`
}

// Create handles POST /api/reactions.
func (h *ReactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req reactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EventID == "" || req.Type == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	reaction, err := h.reactions.React(r.Context(), req.EventID, userID, req.Type)
	switch {
	case errors.Is(err, service.ErrUnknownReaction):
		writeJSONError(w, http.StatusBadRequest, "Unknown reaction type")
		return
	case errors.Is(err, service.ErrEventNotFound):
		writeJSONError(w, http.StatusBadRequest, "Unknown event")
		return
	case err != nil:
		writeInternalError(w, "saving reaction", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reaction": reaction})
}

// Delete handles DELETE /api/reactions?eventId=.
func (h *ReactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing eventId")
		return
	}

	if err := h.reactions.Unreact(r.Context(), eventID, userID); err != nil {
		writeInternalError(w, "removing reaction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
