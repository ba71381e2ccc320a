// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the domain operations behind the API:
// confessions, ritual sessions, reactions, the activity feed and the
// minis inventory. Every state change goes through WriteEvent so the
// events table stays a complete, append-only record of what happened.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// WriteEventInput describes one event to append to the ledger.
type WriteEventInput struct {
	Type            model.EventType
	EventVersion    int64
	UserID          int64
	EntityType      string
	EntityID        string
	ConfessionID    string
	RitualSessionID string
	Metadata        model.EventMetadata
	CreatedAt       time.Time
}

// WriteEvent validates and appends a single event. It is the one choke
// point for ledger writes: callers pass the queries handle bound to
// their transaction so the event commits atomically with the state
// change it records.
func WriteEvent(ctx context.Context, q *store.Queries, in WriteEventInput) (store.Event, error) {
	if !model.IsEventType(string(in.Type)) {
		return store.Event{}, fmt.Errorf("unknown event type %q", in.Type)
	}
	if in.EventVersion == 0 {
		in.EventVersion = 1
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	metadata, err := in.Metadata.Encode()
	if err != nil {
		return store.Event{}, fmt.Errorf("encoding event metadata: %w", err)
	}

	return q.CreateEvent(ctx, store.CreateEventParams{
		ID:              uuid.NewString(),
		Type:            string(in.Type),
		EventVersion:    in.EventVersion,
		UserID:          in.UserID,
		EntityType:      in.EntityType,
		EntityID:        in.EntityID,
		ConfessionID:    nullString(in.ConfessionID),
		RitualSessionID: nullString(in.RitualSessionID),
		Metadata:        metadata,
		CreatedAt:       in.CreatedAt,
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
