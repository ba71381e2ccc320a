// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const ritualSessionColumns = `id, user_id, target_mini_id, activity_type, mini_count, duration_seconds,
duration_minutes, before_image_url, after_image_url, notes, photos, delta, started_at, ended_at, created_at`

const createRitualSession = `
INSERT INTO ritual_sessions (id, user_id, target_mini_id, activity_type, mini_count, duration_seconds,
duration_minutes, before_image_url, after_image_url, notes, photos, delta, started_at, ended_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + ritualSessionColumns

// CreateRitualSessionParams holds the fields for CreateRitualSession.
type CreateRitualSessionParams struct {
	ID              string
	UserID          int64
	TargetMiniID    sql.NullString
	ActivityType    string
	MiniCount       int64
	DurationSeconds int64
	DurationMinutes int64
	BeforeImageURL  string
	AfterImageURL   string
	Notes           string
	Photos          string
	Delta           string
	StartedAt       time.Time
	EndedAt         sql.NullTime
	CreatedAt       time.Time
}

// CreateRitualSession inserts a session row, either ACTIVE (null ended_at)
// or already COMPLETED for the synthesized end-without-start path. The
// partial unique index on (user_id) WHERE ended_at IS NULL rejects a second
// concurrent ACTIVE session.
func (q *Queries) CreateRitualSession(ctx context.Context, arg CreateRitualSessionParams) (RitualSession, error) {
	row := q.db.QueryRowContext(ctx, createRitualSession,
		arg.ID, arg.UserID, arg.TargetMiniID, arg.ActivityType, arg.MiniCount,
		arg.DurationSeconds, arg.DurationMinutes, arg.BeforeImageURL, arg.AfterImageURL,
		arg.Notes, arg.Photos, arg.Delta, arg.StartedAt, arg.EndedAt, arg.CreatedAt,
	)
	return scanRitualSession(row)
}

const getActiveSessionByUser = `
SELECT ` + ritualSessionColumns + ` FROM ritual_sessions
WHERE user_id = ? AND ended_at IS NULL AND duration_seconds = 0
ORDER BY started_at DESC
LIMIT 1
`

// GetActiveSessionByUser returns the user's current ACTIVE session.
func (q *Queries) GetActiveSessionByUser(ctx context.Context, userID int64) (RitualSession, error) {
	return scanRitualSession(q.db.QueryRowContext(ctx, getActiveSessionByUser, userID))
}

const getRitualSessionForUser = `
SELECT ` + ritualSessionColumns + ` FROM ritual_sessions WHERE id = ? AND user_id = ?
`

// GetRitualSessionForUser fetches one of the user's sessions by ID.
func (q *Queries) GetRitualSessionForUser(ctx context.Context, id string, userID int64) (RitualSession, error) {
	return scanRitualSession(q.db.QueryRowContext(ctx, getRitualSessionForUser, id, userID))
}

const completeRitualSession = `
UPDATE ritual_sessions
SET target_mini_id = ?, activity_type = ?, mini_count = ?, duration_seconds = ?, duration_minutes = ?,
    before_image_url = ?, after_image_url = ?, notes = ?, photos = ?, delta = ?, ended_at = ?
WHERE id = ? AND user_id = ? AND ended_at IS NULL
RETURNING ` + ritualSessionColumns

// CompleteRitualSessionParams holds the fields for CompleteRitualSession.
type CompleteRitualSessionParams struct {
	TargetMiniID    sql.NullString
	ActivityType    string
	MiniCount       int64
	DurationSeconds int64
	DurationMinutes int64
	BeforeImageURL  string
	AfterImageURL   string
	Notes           string
	Photos          string
	Delta           string
	EndedAt         time.Time
	ID              string
	UserID          int64
}

// CompleteRitualSession transitions an ACTIVE session to COMPLETED by
// filling in the end-of-session fields. COMPLETED is terminal: the
// ended_at IS NULL guard makes the transition one-way.
func (q *Queries) CompleteRitualSession(ctx context.Context, arg CompleteRitualSessionParams) (RitualSession, error) {
	row := q.db.QueryRowContext(ctx, completeRitualSession,
		arg.TargetMiniID, arg.ActivityType, arg.MiniCount, arg.DurationSeconds, arg.DurationMinutes,
		arg.BeforeImageURL, arg.AfterImageURL, arg.Notes, arg.Photos, arg.Delta, arg.EndedAt,
		arg.ID, arg.UserID,
	)
	return scanRitualSession(row)
}

const listRecentSessionsByUser = `
SELECT ` + ritualSessionColumns + ` FROM ritual_sessions
WHERE user_id = ?
ORDER BY created_at DESC
LIMIT ?
`

// ListRecentSessionsByUser returns the user's newest sessions.
func (q *Queries) ListRecentSessionsByUser(ctx context.Context, userID int64, limit int64) ([]RitualSession, error) {
	rows, err := q.db.QueryContext(ctx, listRecentSessionsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []RitualSession
	for rows.Next() {
		s, err := scanRitualSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const getLatestSessionByUser = `
SELECT ` + ritualSessionColumns + ` FROM ritual_sessions
WHERE user_id = ?
ORDER BY created_at DESC
LIMIT 1
`

// GetLatestSessionByUser returns the user's newest session regardless of state.
func (q *Queries) GetLatestSessionByUser(ctx context.Context, userID int64) (RitualSession, error) {
	return scanRitualSession(q.db.QueryRowContext(ctx, getLatestSessionByUser, userID))
}

// ListRitualSessionsByIDs fetches sessions for the given set of IDs,
// keyed by ID for enrichment joins.
func (q *Queries) ListRitualSessionsByIDs(ctx context.Context, ids []string) (map[string]RitualSession, error) {
	sessions := make(map[string]RitualSession, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `SELECT ` + ritualSessionColumns + ` FROM ritual_sessions WHERE id IN (` + placeholders + `)`

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
		s, err := scanRitualSession(rows)
		if err != nil {
			return nil, err
		}
		sessions[s.ID] = s
	}
	return sessions, rows.Err()
}

func scanRitualSession(row rowScanner) (RitualSession, error) {
	var s RitualSession
	err := row.Scan(&s.ID, &s.UserID, &s.TargetMiniID, &s.ActivityType, &s.MiniCount,
		&s.DurationSeconds, &s.DurationMinutes, &s.BeforeImageURL, &s.AfterImageURL,
		&s.Notes, &s.Photos, &s.Delta, &s.StartedAt, &s.EndedAt, &s.CreatedAt)
	return s, err
}
