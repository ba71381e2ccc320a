// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const miniColumns = `id, user_id, name, system, status, stage, progress_percent, cover_image_url, created_at, updated_at`

const createMini = `
INSERT INTO minis (id, user_id, name, system, status, stage, progress_percent, cover_image_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + miniColumns

// CreateMiniParams holds the fields for CreateMini.
type CreateMiniParams struct {
	ID              string
	UserID          int64
	Name            string
	System          string
	Status          string
	Stage           string
	ProgressPercent int64
	CoverImageURL   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateMini inserts a new inventory item.
func (q *Queries) CreateMini(ctx context.Context, arg CreateMiniParams) (Mini, error) {
	row := q.db.QueryRowContext(ctx, createMini,
		arg.ID, arg.UserID, arg.Name, arg.System, arg.Status, arg.Stage,
		arg.ProgressPercent, arg.CoverImageURL, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanMini(row)
}

const getMiniForUser = `
SELECT ` + miniColumns + ` FROM minis WHERE id = ? AND user_id = ?
`

// GetMiniForUser fetches one of the user's minis by ID.
func (q *Queries) GetMiniForUser(ctx context.Context, id string, userID int64) (Mini, error) {
	return scanMini(q.db.QueryRowContext(ctx, getMiniForUser, id, userID))
}

const listMinisByUser = `
SELECT ` + miniColumns + ` FROM minis
WHERE user_id = ?
ORDER BY status ASC, updated_at DESC
`

// ListMinisByUser returns the user's inventory, grouped by status with the
// most recently touched items first within each group.
func (q *Queries) ListMinisByUser(ctx context.Context, userID int64) ([]Mini, error) {
	rows, err := q.db.QueryContext(ctx, listMinisByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var minis []Mini
	for rows.Next() {
		m, err := scanMini(rows)
		if err != nil {
			return nil, err
		}
		minis = append(minis, m)
	}
	return minis, rows.Err()
}

const countMinisByUser = `
SELECT COUNT(*) FROM minis WHERE user_id = ?
`

// CountMinisByUser returns the size of the user's inventory.
func (q *Queries) CountMinisByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMinisByUser, userID).Scan(&n)
	return n, err
}

const countMinisByUserAndStatus = `
SELECT COUNT(*) FROM minis WHERE user_id = ? AND status = ?
`

// CountMinisByUserAndStatus returns how many of the user's minis carry the status.
func (q *Queries) CountMinisByUserAndStatus(ctx context.Context, userID int64, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMinisByUserAndStatus, userID, status).Scan(&n)
	return n, err
}

const getCurrentProject = `
SELECT ` + miniColumns + ` FROM minis
WHERE user_id = ? AND status = 'WIP'
ORDER BY updated_at DESC
LIMIT 1
`

// GetCurrentProject returns the user's most recently touched WIP mini.
func (q *Queries) GetCurrentProject(ctx context.Context, userID int64) (Mini, error) {
	return scanMini(q.db.QueryRowContext(ctx, getCurrentProject, userID))
}

const updateMiniProgress = `
UPDATE minis
SET stage = ?, progress_percent = ?, status = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + miniColumns

// UpdateMiniProgressParams holds the fields for UpdateMiniProgress.
type UpdateMiniProgressParams struct {
	Stage           string
	ProgressPercent int64
	Status          string
	UpdatedAt       time.Time
	ID              string
	UserID          int64
}

// UpdateMiniProgress patches a mini's stage/progress/status.
func (q *Queries) UpdateMiniProgress(ctx context.Context, arg UpdateMiniProgressParams) (Mini, error) {
	row := q.db.QueryRowContext(ctx, updateMiniProgress,
		arg.Stage, arg.ProgressPercent, arg.Status, arg.UpdatedAt, arg.ID, arg.UserID,
	)
	return scanMini(row)
}

func scanMini(row rowScanner) (Mini, error) {
	var m Mini
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.System, &m.Status, &m.Stage,
		&m.ProgressPercent, &m.CoverImageURL, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
