// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/olegiv/pileoffame-go/internal/service"
)

// FeedHandler serves the activity feed.
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Page handles GET /api/events/feed?cursor&limit.
func (h *FeedHandler) Page(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := int64(service.DefaultFeedLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.feed.Page(r.Context(), cursor, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCursor) {
			writeJSONError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		writeInternalError(w, "loading feed", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
