// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// ErrInvalidMiniCount is returned when a confession declares a negative
// or missing pile size.
var ErrInvalidMiniCount = errors.New("invalid mini count")

// ConfessionService records pile-size declarations.
type ConfessionService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewConfessionService creates a ConfessionService.
func NewConfessionService(db *sql.DB) *ConfessionService {
	return &ConfessionService{db: db, queries: store.New(db)}
}

// Confess appends a new confession and its feed event in one
// transaction. A count of zero is a valid confession (an empty pile is
// still a statement); negative counts are rejected.
func (s *ConfessionService) Confess(ctx context.Context, userID, miniCount int64) (store.Confession, store.Event, error) {
	if miniCount < 0 {
		return store.Confession{}, store.Event{}, ErrInvalidMiniCount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Confession{}, store.Event{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	confession, err := qtx.CreateConfession(ctx, store.CreateConfessionParams{
		ID:        uuid.NewString(),
		UserID:    userID,
		MiniCount: miniCount,
		CreatedAt: now,
	})
	if err != nil {
		return store.Confession{}, store.Event{}, fmt.Errorf("creating confession: %w", err)
	}

	event, err := WriteEvent(ctx, qtx, WriteEventInput{
		Type:         model.EventConfession,
		UserID:       userID,
		EntityType:   model.EntityConfession,
		EntityID:     confession.ID,
		ConfessionID: confession.ID,
		Metadata:     model.ConfessionMetadata(miniCount),
		CreatedAt:    now,
	})
	if err != nil {
		return store.Confession{}, store.Event{}, fmt.Errorf("writing confession event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.Confession{}, store.Event{}, fmt.Errorf("committing confession: %w", err)
	}
	return confession, event, nil
}

// Latest returns the user's most recent confession, or ok=false when
// the user has never confessed.
func (s *ConfessionService) Latest(ctx context.Context, userID int64) (store.Confession, bool, error) {
	confession, err := s.queries.GetLatestConfessionByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Confession{}, false, nil
	}
	if err != nil {
		return store.Confession{}, false, err
	}
	return confession, true, nil
}
