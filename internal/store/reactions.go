// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const reactionColumns = `id, event_id, user_id, type, created_at, updated_at`

const createReaction = `
INSERT INTO reactions (id, event_id, user_id, type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + reactionColumns

// CreateReactionParams holds the fields for CreateReaction.
type CreateReactionParams struct {
	ID        string
	EventID   string
	UserID    int64
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateReaction inserts a user's first reaction to an event.
func (q *Queries) CreateReaction(ctx context.Context, arg CreateReactionParams) (Reaction, error) {
	row := q.db.QueryRowContext(ctx, createReaction,
		arg.ID, arg.EventID, arg.UserID, arg.Type, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanReaction(row)
}

const getReactionByEventAndUser = `
SELECT ` + reactionColumns + ` FROM reactions WHERE event_id = ? AND user_id = ?
`

// GetReactionByEventAndUser returns the user's current reaction to an event.
func (q *Queries) GetReactionByEventAndUser(ctx context.Context, eventID string, userID int64) (Reaction, error) {
	return scanReaction(q.db.QueryRowContext(ctx, getReactionByEventAndUser, eventID, userID))
}

const updateReactionType = `
UPDATE reactions SET type = ?, updated_at = ? WHERE id = ?
RETURNING ` + reactionColumns

// UpdateReactionType overwrites an existing reaction's type in place.
func (q *Queries) UpdateReactionType(ctx context.Context, id, typ string, updatedAt time.Time) (Reaction, error) {
	return scanReaction(q.db.QueryRowContext(ctx, updateReactionType, typ, updatedAt, id))
}

const deleteReactionsByEventAndUser = `
DELETE FROM reactions WHERE event_id = ? AND user_id = ?
`

// DeleteReactionsByEventAndUser removes the user's reaction to an event.
// Defensively a set delete, though the unique constraint guarantees at
// most one row.
func (q *Queries) DeleteReactionsByEventAndUser(ctx context.Context, eventID string, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteReactionsByEventAndUser, eventID, userID)
	return err
}

// ListReactionsByEventIDs fetches all reactions for the given set of
// events in one query, grouped by event ID.
func (q *Queries) ListReactionsByEventIDs(ctx context.Context, eventIDs []string) (map[string][]Reaction, error) {
	reactions := make(map[string][]Reaction, len(eventIDs))
	if len(eventIDs) == 0 {
		return reactions, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(eventIDs)), ", ")
	query := `SELECT ` + reactionColumns + ` FROM reactions WHERE event_id IN (` + placeholders + `) ORDER BY created_at ASC`

	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		reactions[r.EventID] = append(reactions[r.EventID], r)
	}
	return reactions, rows.Err()
}

func scanReaction(row rowScanner) (Reaction, error) {
	var r Reaction
	err := row.Scan(&r.ID, &r.EventID, &r.UserID, &r.Type, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
