// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// RitualService runs the painting session state machine: NONE → ACTIVE
// → COMPLETED, with COMPLETED terminal.
type RitualService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewRitualService creates a RitualService.
func NewRitualService(db *sql.DB) *RitualService {
	return &RitualService{db: db, queries: store.New(db)}
}

// StartResult is the outcome of Start. Resumed is true when an already
// ACTIVE session was returned instead of a new one being opened.
type StartResult struct {
	Session store.RitualSession
	Event   store.Event
	Resumed bool
}

// Start opens an ACTIVE session for the user, or returns the existing
// one. Starting is idempotent: a user has at most one ACTIVE session,
// enforced by a partial unique index, and a second start resumes rather
// than errors. Only a genuinely new session emits a SESSION_STARTED
// event.
func (s *RitualService) Start(ctx context.Context, userID int64, targetMiniID string) (StartResult, error) {
	if active, err := s.queries.GetActiveSessionByUser(ctx, userID); err == nil {
		return StartResult{Session: active, Resumed: true}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return StartResult{}, fmt.Errorf("checking for active session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StartResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	session, err := qtx.CreateRitualSession(ctx, store.CreateRitualSessionParams{
		ID:           uuid.NewString(),
		UserID:       userID,
		TargetMiniID: nullString(targetMiniID),
		Photos:       "[]",
		Delta:        "{}",
		StartedAt:    now,
		CreatedAt:    now,
	})
	if err != nil {
		// A concurrent start may have won the race against the unique
		// index; resume its session instead of failing.
		if active, lookupErr := s.queries.GetActiveSessionByUser(ctx, userID); lookupErr == nil {
			return StartResult{Session: active, Resumed: true}, nil
		}
		return StartResult{}, fmt.Errorf("creating ritual session: %w", err)
	}

	event, err := WriteEvent(ctx, qtx, WriteEventInput{
		Type:            model.EventSessionStarted,
		UserID:          userID,
		EntityType:      model.EntityRitualSession,
		EntityID:        session.ID,
		RitualSessionID: session.ID,
		Metadata:        model.SessionStartedMetadata(targetMiniID),
		CreatedAt:       now,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("writing session start event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return StartResult{}, fmt.Errorf("committing session start: %w", err)
	}
	return StartResult{Session: session, Event: event}, nil
}

// EndInput carries the fields a client submits when closing a session.
// Optional numeric fields are pointers so absent and zero are distinct.
type EndInput struct {
	SessionID       string
	TargetMiniID    string
	MiniCount       int64
	ActivityType    string
	DurationSeconds int64
	BeforeImageURL  string
	AfterImageURL   string
	Notes           string
	Photos          []string
	Stage           string
	ProgressPercent *int64
	Status          string
}

// EndResult is the outcome of End.
type EndResult struct {
	Session store.RitualSession
	Event   store.Event
	Mini    *store.Mini
}

// End completes the user's ACTIVE session, or synthesizes an
// already-COMPLETED one when no ACTIVE session exists (clients that
// never called start still get their work recorded). When a target mini
// is named, its stage/progress/status are patched as a side effect and
// the before/after snapshot is stored on the session as a delta.
// Exactly one SESSION_ENDED event is emitted either way.
func (s *RitualService) End(ctx context.Context, userID int64, in EndInput) (EndResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EndResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	var updatedMini *store.Mini
	delta := model.MiniDelta{}
	heuristics := model.Heuristics{}

	if in.TargetMiniID != "" {
		mini, err := qtx.GetMiniForUser(ctx, in.TargetMiniID, userID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Unknown target is soft-ignored: the session still completes,
			// it just patches nothing.
		case err != nil:
			return EndResult{}, fmt.Errorf("loading target mini: %w", err)
		default:
			patched, miniDelta, h, err := applyMiniPatch(ctx, qtx, mini, in, now)
			if err != nil {
				return EndResult{}, err
			}
			updatedMini = &patched
			delta = miniDelta
			heuristics = h
		}
	}

	heuristics.PhotoSuggestionTriggered = (len(in.Photos) > 0 || in.AfterImageURL != "") &&
		in.Stage == "" && in.Status == ""

	photosJSON, err := json.Marshal(append([]string{}, in.Photos...))
	if err != nil {
		return EndResult{}, fmt.Errorf("encoding photos: %w", err)
	}
	deltaJSON, err := json.Marshal(delta)
	if err != nil {
		return EndResult{}, fmt.Errorf("encoding delta: %w", err)
	}

	session, err := s.completeOrSynthesize(ctx, qtx, userID, in, string(photosJSON), string(deltaJSON), now)
	if err != nil {
		return EndResult{}, err
	}

	event, err := WriteEvent(ctx, qtx, WriteEventInput{
		Type:            model.EventRitual,
		UserID:          userID,
		EntityType:      model.EntityRitualSession,
		EntityID:        session.ID,
		RitualSessionID: session.ID,
		Metadata: model.SessionEndedMetadata(model.SessionEndedInfo{
			ActivityType:    in.ActivityType,
			DurationSeconds: in.DurationSeconds,
			MiniCount:       in.MiniCount,
			TargetMiniID:    in.TargetMiniID,
			Notes:           in.Notes,
			PhotosCount:     int64(len(in.Photos)),
			Stage:           in.Stage,
			ProgressPercent: in.ProgressPercent,
			Status:          model.MiniStatus(in.Status),
			Heuristics:      heuristics,
		}),
		CreatedAt: now,
	})
	if err != nil {
		return EndResult{}, fmt.Errorf("writing session end event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return EndResult{}, fmt.Errorf("committing session end: %w", err)
	}
	return EndResult{Session: session, Event: event, Mini: updatedMini}, nil
}

// completeOrSynthesize locates the session to close. Preference order:
// the pinned session when it is still ACTIVE, then the user's current
// ACTIVE session, then a freshly synthesized COMPLETED row.
func (s *RitualService) completeOrSynthesize(ctx context.Context, qtx *store.Queries, userID int64, in EndInput, photosJSON, deltaJSON string, now time.Time) (store.RitualSession, error) {
	var active store.RitualSession
	found := false

	if in.SessionID != "" {
		pinned, err := qtx.GetRitualSessionForUser(ctx, in.SessionID, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return store.RitualSession{}, fmt.Errorf("loading pinned session: %w", err)
		}
		if err == nil && pinned.Active() {
			active, found = pinned, true
		}
	}
	if !found {
		current, err := qtx.GetActiveSessionByUser(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return store.RitualSession{}, fmt.Errorf("looking up active session: %w", err)
		}
		if err == nil {
			active, found = current, true
		}
	}

	minutes := durationMinutes(in.DurationSeconds)

	if found {
		session, err := qtx.CompleteRitualSession(ctx, store.CompleteRitualSessionParams{
			TargetMiniID:    nullString(in.TargetMiniID),
			ActivityType:    in.ActivityType,
			MiniCount:       in.MiniCount,
			DurationSeconds: in.DurationSeconds,
			DurationMinutes: minutes,
			BeforeImageURL:  in.BeforeImageURL,
			AfterImageURL:   in.AfterImageURL,
			Notes:           in.Notes,
			Photos:          photosJSON,
			Delta:           deltaJSON,
			EndedAt:         now,
			ID:              active.ID,
			UserID:          userID,
		})
		if err != nil {
			return store.RitualSession{}, fmt.Errorf("completing ritual session: %w", err)
		}
		return session, nil
	}

	session, err := qtx.CreateRitualSession(ctx, store.CreateRitualSessionParams{
		ID:              uuid.NewString(),
		UserID:          userID,
		TargetMiniID:    nullString(in.TargetMiniID),
		ActivityType:    in.ActivityType,
		MiniCount:       in.MiniCount,
		DurationSeconds: in.DurationSeconds,
		DurationMinutes: minutes,
		BeforeImageURL:  in.BeforeImageURL,
		AfterImageURL:   in.AfterImageURL,
		Notes:           in.Notes,
		Photos:          photosJSON,
		Delta:           deltaJSON,
		StartedAt:       now.Add(-time.Duration(in.DurationSeconds) * time.Second),
		EndedAt:         sql.NullTime{Time: now, Valid: true},
		CreatedAt:       now,
	})
	if err != nil {
		return store.RitualSession{}, fmt.Errorf("synthesizing completed session: %w", err)
	}
	return session, nil
}

// applyMiniPatch updates the target mini per the session-end input and
// returns the before/after delta plus the auto-fame heuristic outcome.
func applyMiniPatch(ctx context.Context, qtx *store.Queries, mini store.Mini, in EndInput, now time.Time) (store.Mini, model.MiniDelta, model.Heuristics, error) {
	stage := mini.Stage
	if in.Stage != "" {
		stage = in.Stage
	}
	progress := mini.ProgressPercent
	if in.ProgressPercent != nil {
		progress = *in.ProgressPercent
	}
	status := mini.Status
	if in.Status != "" {
		status = in.Status
	}

	var h model.Heuristics
	if model.AutoFame(progress, stage) {
		if status != string(model.StatusFame) {
			h.AutoSetFame = true
		}
		status = string(model.StatusFame)
	}

	var delta model.MiniDelta
	if stage != mini.Stage {
		delta.Stage = &model.StringChange{From: mini.Stage, To: stage}
	}
	if progress != mini.ProgressPercent {
		delta.ProgressPercent = &model.IntChange{From: mini.ProgressPercent, To: progress}
	}
	if status != mini.Status {
		delta.Status = &model.StringChange{From: mini.Status, To: status}
	}
	if delta.Empty() {
		return mini, delta, h, nil
	}

	patched, err := qtx.UpdateMiniProgress(ctx, store.UpdateMiniProgressParams{
		Stage:           stage,
		ProgressPercent: progress,
		Status:          status,
		UpdatedAt:       now,
		ID:              mini.ID,
		UserID:          mini.UserID,
	})
	if err != nil {
		return store.Mini{}, model.MiniDelta{}, model.Heuristics{}, fmt.Errorf("patching target mini: %w", err)
	}
	return patched, delta, h, nil
}

// Active returns the user's current ACTIVE session, or ok=false.
func (s *RitualService) Active(ctx context.Context, userID int64) (store.RitualSession, bool, error) {
	session, err := s.queries.GetActiveSessionByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RitualSession{}, false, nil
	}
	if err != nil {
		return store.RitualSession{}, false, err
	}
	return session, true, nil
}

// Recent returns the user's newest sessions, most recent first.
func (s *RitualService) Recent(ctx context.Context, userID int64, limit int64) ([]store.RitualSession, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queries.ListRecentSessionsByUser(ctx, userID, limit)
}

// durationMinutes floors seconds to whole minutes, never reporting less
// than one minute for a completed session.
func durationMinutes(seconds int64) int64 {
	minutes := seconds / 60
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
