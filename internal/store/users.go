// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const createUser = `
INSERT INTO users (username, email, name, password_hash, image_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, username, email, name, password_hash, image_url, created_at, updated_at
`

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Username     string
	Email        string
	Name         string
	PasswordHash string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user account.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.Email, arg.Name, arg.PasswordHash, arg.ImageURL,
		arg.CreatedAt, arg.UpdatedAt,
	)
	return scanUser(row)
}

const getUserByID = `
SELECT id, username, email, name, password_hash, image_url, created_at, updated_at
FROM users WHERE id = ?
`

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `
SELECT id, username, email, name, password_hash, image_url, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const countUsersByEmailOrUsername = `
SELECT COUNT(*) FROM users WHERE email = ? OR username = ?
`

// CountUsersByEmailOrUsername returns how many users already hold the
// given email or username. Used by registration duplicate checks.
func (q *Queries) CountUsersByEmailOrUsername(ctx context.Context, email, username string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsersByEmailOrUsername, email, username).Scan(&n)
	return n, err
}

// ListUsersByIDs fetches users for the given set of IDs in one query.
// Returns them keyed by ID for enrichment joins.
func (q *Queries) ListUsersByIDs(ctx context.Context, ids []int64) (map[int64]User, error) {
	users := make(map[int64]User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `SELECT id, username, email, name, password_hash, image_url, created_at, updated_at
FROM users WHERE id IN (` + placeholders + `)`

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
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash,
			&u.ImageURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash,
		&u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
