// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const createConfession = `
INSERT INTO confessions (id, user_id, mini_count, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, user_id, mini_count, created_at
`

// CreateConfessionParams holds the fields for CreateConfession.
type CreateConfessionParams struct {
	ID        string
	UserID    int64
	MiniCount int64
	CreatedAt time.Time
}

// CreateConfession appends a pile-baseline declaration. Confessions are
// never updated or deleted; the latest row wins for display.
func (q *Queries) CreateConfession(ctx context.Context, arg CreateConfessionParams) (Confession, error) {
	row := q.db.QueryRowContext(ctx, createConfession,
		arg.ID, arg.UserID, arg.MiniCount, arg.CreatedAt,
	)
	return scanConfession(row)
}

const getLatestConfessionByUser = `
SELECT id, user_id, mini_count, created_at FROM confessions
WHERE user_id = ?
ORDER BY created_at DESC
LIMIT 1
`

// GetLatestConfessionByUser returns the user's most recent confession.
func (q *Queries) GetLatestConfessionByUser(ctx context.Context, userID int64) (Confession, error) {
	return scanConfession(q.db.QueryRowContext(ctx, getLatestConfessionByUser, userID))
}

// ListConfessionsByIDs fetches confessions for the given set of IDs,
// keyed by ID for enrichment joins.
func (q *Queries) ListConfessionsByIDs(ctx context.Context, ids []string) (map[string]Confession, error) {
	confessions := make(map[string]Confession, len(ids))
	if len(ids) == 0 {
		return confessions, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `SELECT id, user_id, mini_count, created_at FROM confessions WHERE id IN (` + placeholders + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanConfession(rows)
		if err != nil {
			return nil, err
		}
		confessions[c.ID] = c
	}
	return confessions, rows.Err()
}

func scanConfession(row rowScanner) (Confession, error) {
	var c Confession
	err := row.Scan(&c.ID, &c.UserID, &c.MiniCount, &c.CreatedAt)
	return c, err
}
