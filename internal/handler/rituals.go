// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/service"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// RitualHandler handles painting session requests.
type RitualHandler struct {
	rituals *service.RitualService
	home    *service.HomeService
}

// NewRitualHandler creates a RitualHandler.
func NewRitualHandler(rituals *service.RitualService, home *service.HomeService) *RitualHandler {
	return &RitualHandler{rituals: rituals, home: home}
}

// ritualRequest is the discriminated POST body: action "start" opens a
// session, anything else is treated as an end submission with its own
// required fields.
type ritualRequest struct {
	Action          string   `json:"action"`
	SessionID       string   `json:"sessionId"`
	TargetMiniID    string   `json:"targetMiniId"`
	MiniCount       *int64   `json:"miniCount"`
	ActivityType    string   `json:"activityType"`
	DurationSeconds *int64   `json:"durationSeconds"`
	BeforeImageURL  string   `json:"beforeImageUrl"`
	AfterImageURL   string   `json:"afterImageUrl"`
	Notes           string   `json:"notes"`
	Photos          []string `json:"photos"`
	Stage           string   `json:"stage"`
	ProgressPercent *int64   `json:"progressPercent"`
	Status          string   `json:"status"`
}

// Post handles POST /api/rituals.
func (h *RitualHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req ritualRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Action == "start" {
		h.start(w, r, userID, req)
		return
	}
	h.end(w, r, userID, req)
}

func (h *RitualHandler) start(w http.ResponseWriter, r *http.Request, userID int64, req ritualRequest) {
	result, err := h.rituals.Start(r.Context(), userID, req.TargetMiniID)
	if err != nil {
		writeInternalError(w, "starting ritual session", err)
		return
	}
	h.home.Invalidate(r.Context(), userID)

	response := map[string]any{
		"ritualSession": result.Session,
		"event":         nil,
	}
	if !result.Resumed {
		response["event"] = result.Event
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *RitualHandler) end(w http.ResponseWriter, r *http.Request, userID int64, req ritualRequest) {
	if req.MiniCount == nil || req.ActivityType == "" || req.DurationSeconds == nil {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Stage == "" && req.ProgressPercent == nil && req.Status == "" {
		writeJSONError(w, http.StatusBadRequest, "At least one of stage, progressPercent or status is required")
		return
	}
	if req.ProgressPercent != nil && (*req.ProgressPercent < 0 || *req.ProgressPercent > 100) {
		writeJSONError(w, http.StatusBadRequest, "progressPercent must be between 0 and 100")
		return
	}
	if !model.IsActivityType(req.ActivityType) {
		writeJSONError(w, http.StatusBadRequest, "Unknown activity type")
		return
	}
	if req.Status != "" && !model.IsMiniStatus(req.Status) {
		writeJSONError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	result, err := h.rituals.End(r.Context(), userID, service.EndInput{
		SessionID:       req.SessionID,
		TargetMiniID:    req.TargetMiniID,
		MiniCount:       *req.MiniCount,
		ActivityType:    req.ActivityType,
		DurationSeconds: *req.DurationSeconds,
		BeforeImageURL:  req.BeforeImageURL,
		AfterImageURL:   req.AfterImageURL,
		Notes:           req.Notes,
		Photos:          req.Photos,
		Stage:           req.Stage,
		ProgressPercent: req.ProgressPercent,
		Status:          req.Status,
	})
	if err != nil {
		writeInternalError(w, "ending ritual session", err)
		return
	}
	h.home.Invalidate(r.Context(), userID)

	response := map[string]any{
		"ritualSession": result.Session,
		"event":         result.Event,
	}
	if result.Mini != nil {
		response["mini"] = result.Mini
	}
	writeJSON(w, http.StatusOK, response)
}

// Recent handles GET /api/rituals, the caller's last 10 sessions.
// With ?active=1 it returns only the open session, as a zero-or-one
// element list.
func (h *RitualHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if r.URL.Query().Get("active") == "1" {
		active, ok, err := h.rituals.Active(r.Context(), userID)
		if err != nil {
			writeInternalError(w, "loading active ritual session", err)
			return
		}
		sessions := []store.RitualSession{}
		if ok {
			sessions = append(sessions, active)
		}
		writeJSON(w, http.StatusOK, sessions)
		return
	}

	sessions, err := h.rituals.Recent(r.Context(), userID, 10)
	if err != nil {
		writeInternalError(w, "listing ritual sessions", err)
		return
	}
	if sessions == nil {
		sessions = []store.RitualSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}
