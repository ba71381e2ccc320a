// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
)

// HomeHandler serves the personalized dashboard.
type HomeHandler struct {
	home *service.HomeService
}

// NewHomeHandler creates a HomeHandler.
func NewHomeHandler(home *service.HomeService) *HomeHandler {
	return &HomeHandler{home: home}
}

// Get handles GET /api/home.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	payload, err := h.home.Dashboard(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeInternalError(w, "building home dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
