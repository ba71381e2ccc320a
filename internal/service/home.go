// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pileoffame-go/internal/cache"
	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// Personalization states for the home dashboard, checked in order.
const (
	StateNoMinis          = "NO_MINIS"
	StateHasActiveSession = "HAS_ACTIVE_SESSION"
	StateHasWipMinis      = "HAS_WIP_MINIS"
	StateOnlyShameMinis   = "ONLY_SHAME_MINIS"
	StateDefault          = "DEFAULT"
)

// HomeService assembles the personalized dashboard payload. Payloads
// are cached briefly per user and invalidated on every mutation, so the
// dashboard stays read-your-writes despite the cache.
type HomeService struct {
	queries *store.Queries
	cache   cache.Cache
	ttl     time.Duration
}

// NewHomeService creates a HomeService.
func NewHomeService(db *sql.DB, c cache.Cache, ttl time.Duration) *HomeService {
	return &HomeService{queries: store.New(db), cache: c, ttl: ttl}
}

// ProgressAnchor is the headline stat of the dashboard.
type ProgressAnchor struct {
	Type  string             `json:"type"`
	Value int64              `json:"value"`
	Meta  ProgressAnchorMeta `json:"meta"`
}

// ProgressAnchorMeta carries the supporting numbers for ProgressAnchor.
type ProgressAnchorMeta struct {
	TotalMinis        int64 `json:"totalMinis"`
	CompletionPercent int64 `json:"completionPercent"`
}

// PrimaryCTA is the single suggested next action.
type PrimaryCTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Kind  string `json:"kind"`
}

// HomeSessions groups the session pointers shown on the dashboard.
type HomeSessions struct {
	Latest *store.RitualSession `json:"latestSession"`
	Active *store.RitualSession `json:"activeSession"`
}

// HomePayload is the full dashboard response.
type HomePayload struct {
	ProgressAnchor       ProgressAnchor `json:"progressAnchor"`
	CurrentProject       *store.Mini    `json:"currentProject"`
	Sessions             HomeSessions   `json:"session"`
	PersonalizationState string         `json:"personalizationState"`
	PrimaryCTA           PrimaryCTA     `json:"primaryCta"`
}

func homeCacheKey(userID int64) string {
	return fmt.Sprintf("home:%d", userID)
}

// Dashboard returns the user's dashboard, from cache when fresh.
func (s *HomeService) Dashboard(ctx context.Context, userID int64) (HomePayload, error) {
	key := homeCacheKey(userID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var payload HomePayload
		if err := json.Unmarshal(cached, &payload); err == nil {
			return payload, nil
		}
		// A corrupt entry falls through to a rebuild.
	}

	payload, err := s.build(ctx, userID)
	if err != nil {
		return HomePayload{}, err
	}

	if encoded, err := json.Marshal(payload); err == nil {
		if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
			slog.Warn("caching home payload failed", "error", err)
		}
	}
	return payload, nil
}

// Invalidate drops the user's cached dashboard. Called after any
// mutation that feeds the dashboard.
func (s *HomeService) Invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, homeCacheKey(userID)); err != nil {
		slog.Warn("invalidating home payload failed", "error", err)
	}
}

func (s *HomeService) build(ctx context.Context, userID int64) (HomePayload, error) {
	totalMinis, err := s.queries.CountMinisByUser(ctx, userID)
	if err != nil {
		return HomePayload{}, fmt.Errorf("counting minis: %w", err)
	}
	fameMinis, err := s.queries.CountMinisByUserAndStatus(ctx, userID, string(model.StatusFame))
	if err != nil {
		return HomePayload{}, fmt.Errorf("counting fame minis: %w", err)
	}
	wipMinis, err := s.queries.CountMinisByUserAndStatus(ctx, userID, string(model.StatusWIP))
	if err != nil {
		return HomePayload{}, fmt.Errorf("counting wip minis: %w", err)
	}
	shameMinis, err := s.queries.CountMinisByUserAndStatus(ctx, userID, string(model.StatusShame))
	if err != nil {
		return HomePayload{}, fmt.Errorf("counting shame minis: %w", err)
	}

	var currentProject *store.Mini
	if project, err := s.queries.GetCurrentProject(ctx, userID); err == nil {
		currentProject = &project
	} else if !errors.Is(err, sql.ErrNoRows) {
		return HomePayload{}, fmt.Errorf("loading current project: %w", err)
	}

	var latest, active *store.RitualSession
	if session, err := s.queries.GetLatestSessionByUser(ctx, userID); err == nil {
		latest = &session
	} else if !errors.Is(err, sql.ErrNoRows) {
		return HomePayload{}, fmt.Errorf("loading latest session: %w", err)
	}
	if session, err := s.queries.GetActiveSessionByUser(ctx, userID); err == nil {
		active = &session
	} else if !errors.Is(err, sql.ErrNoRows) {
		return HomePayload{}, fmt.Errorf("loading active session: %w", err)
	}

	var completionPercent int64
	if totalMinis > 0 {
		completionPercent = (fameMinis*100 + totalMinis/2) / totalMinis
	}

	state := personalizationState(totalMinis, wipMinis, shameMinis, active != nil)

	return HomePayload{
		ProgressAnchor: ProgressAnchor{
			Type:  "FAME_COUNT",
			Value: fameMinis,
			Meta: ProgressAnchorMeta{
				TotalMinis:        totalMinis,
				CompletionPercent: completionPercent,
			},
		},
		CurrentProject:       currentProject,
		Sessions:             HomeSessions{Latest: latest, Active: active},
		PersonalizationState: state,
		PrimaryCTA:           primaryCTA(state),
	}, nil
}

func personalizationState(totalMinis, wipMinis, shameMinis int64, hasActiveSession bool) string {
	switch {
	case totalMinis == 0:
		return StateNoMinis
	case hasActiveSession:
		return StateHasActiveSession
	case wipMinis > 0:
		return StateHasWipMinis
	case shameMinis == totalMinis:
		return StateOnlyShameMinis
	default:
		return StateDefault
	}
}

func primaryCTA(state string) PrimaryCTA {
	switch state {
	case StateNoMinis:
		return PrimaryCTA{Label: "Add your first mini", Href: "/confess", Kind: "ADD_FIRST_MINI"}
	case StateHasActiveSession:
		return PrimaryCTA{Label: "Resume Session", Href: "/ritual", Kind: "RESUME_SESSION"}
	case StateHasWipMinis:
		return PrimaryCTA{Label: "Continue Last Mini", Href: "/ritual", Kind: "CONTINUE_LAST_MINI"}
	default:
		return PrimaryCTA{Label: "Pick Something to Start", Href: "/ritual", Kind: "PICK_SOMETHING_TO_START"}
	}
}
