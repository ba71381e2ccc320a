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

// Errors returned by MiniService.
var (
	ErrMiniNameRequired = errors.New("mini name is required")
	ErrInvalidStatus    = errors.New("invalid mini status")
)

// MiniService manages the painting inventory.
type MiniService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewMiniService creates a MiniService.
func NewMiniService(db *sql.DB) *MiniService {
	return &MiniService{db: db, queries: store.New(db)}
}

// CreateMiniInput describes a new inventory item.
type CreateMiniInput struct {
	Name            string
	System          string
	Status          string
	Stage           string
	ProgressPercent int64
	CoverImageURL   string
}

// Create adds a mini to the user's inventory and appends a
// MINI_CREATED event in the same transaction. New minis default to
// SHAME, the unpainted pile.
func (s *MiniService) Create(ctx context.Context, userID int64, in CreateMiniInput) (store.Mini, store.Event, error) {
	if in.Name == "" {
		return store.Mini{}, store.Event{}, ErrMiniNameRequired
	}
	if in.Status == "" {
		in.Status = string(model.StatusShame)
	}
	if !model.IsMiniStatus(in.Status) {
		return store.Mini{}, store.Event{}, ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Mini{}, store.Event{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	mini, err := qtx.CreateMini(ctx, store.CreateMiniParams{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            in.Name,
		System:          in.System,
		Status:          in.Status,
		Stage:           in.Stage,
		ProgressPercent: in.ProgressPercent,
		CoverImageURL:   in.CoverImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return store.Mini{}, store.Event{}, fmt.Errorf("creating mini: %w", err)
	}

	event, err := WriteEvent(ctx, qtx, WriteEventInput{
		Type:       model.EventMiniCreated,
		UserID:     userID,
		EntityType: model.EntityMini,
		EntityID:   mini.ID,
		Metadata:   model.MiniCreatedMetadata(mini.Name),
		CreatedAt:  now,
	})
	if err != nil {
		return store.Mini{}, store.Event{}, fmt.Errorf("writing mini created event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.Mini{}, store.Event{}, fmt.Errorf("committing mini: %w", err)
	}
	return mini, event, nil
}

// List returns the user's inventory, grouped by status.
func (s *MiniService) List(ctx context.Context, userID int64) ([]store.Mini, error) {
	minis, err := s.queries.ListMinisByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if minis == nil {
		minis = []store.Mini{}
	}
	return minis, nil
}
