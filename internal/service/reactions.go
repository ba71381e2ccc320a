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

// Errors returned by ReactionService.
var (
	ErrUnknownReaction = errors.New("unknown reaction type")
	ErrEventNotFound   = errors.New("event not found")
)

// ReactionService maintains each user's single reaction per event.
// Unlike events, reactions mutate: re-reacting overwrites the type in
// place and unreacting deletes the row.
type ReactionService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewReactionService creates a ReactionService.
func NewReactionService(db *sql.DB) *ReactionService {
	return &ReactionService{db: db, queries: store.New(db)}
}

// React upserts the user's reaction to an event. A first reaction
// creates the row; a repeat reaction replaces its type, so a PRAY
// turning into an EXALT is an overwrite, not an addition.
func (s *ReactionService) React(ctx context.Context, eventID string, userID int64, typ string) (store.Reaction, error) {
	if !model.IsReactionType(typ) {
		return store.Reaction{}, ErrUnknownReaction
	}

	if _, err := s.queries.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reaction{}, ErrEventNotFound
		}
		return store.Reaction{}, fmt.Errorf("looking up event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Reaction{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	var reaction store.Reaction
	existing, err := qtx.GetReactionByEventAndUser(ctx, eventID, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		reaction, err = qtx.CreateReaction(ctx, store.CreateReactionParams{
			ID:        uuid.NewString(),
			EventID:   eventID,
			UserID:    userID,
			Type:      typ,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return store.Reaction{}, fmt.Errorf("creating reaction: %w", err)
		}
	case err != nil:
		return store.Reaction{}, fmt.Errorf("looking up reaction: %w", err)
	default:
		reaction, err = qtx.UpdateReactionType(ctx, existing.ID, typ, now)
		if err != nil {
			return store.Reaction{}, fmt.Errorf("updating reaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Reaction{}, fmt.Errorf("committing reaction: %w", err)
	}
	return reaction, nil
}

// Unreact removes the user's reaction to an event. Removing a reaction
// that does not exist is a no-op.
func (s *ReactionService) Unreact(ctx context.Context, eventID string, userID int64) error {
	return s.queries.DeleteReactionsByEventAndUser(ctx, eventID, userID)
}

// Tally counts reactions per type, skipping any type outside the fixed
// vocabulary.
func Tally(reactions []store.Reaction) map[string]int64 {
	tallies := make(map[string]int64)
	for _, r := range reactions {
		if model.IsReactionType(r.Type) {
			tallies[r.Type]++
		}
	}
	return tallies
}
