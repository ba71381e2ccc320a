// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/pileoffame-go/internal/model"
)

// Vocabulary handles GET /api/vocabulary, the static copy and option
// lists clients render from.
func Vocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":           model.AppVocabulary,
		"activityTypes": model.ActivityTypes,
		"reactions":     model.ReactionDefinitions,
	})
}
