// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const eventColumns = `seq, id, type, event_version, user_id, entity_type, entity_id,
confession_id, ritual_session_id, metadata, created_at`

const createEvent = `
INSERT INTO events (id, type, event_version, user_id, entity_type, entity_id,
confession_id, ritual_session_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + eventColumns

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	ID              string
	Type            string
	EventVersion    int64
	UserID          int64
	EntityType      string
	EntityID        string
	ConfessionID    sql.NullString
	RitualSessionID sql.NullString
	Metadata        string
	CreatedAt       time.Time
}

// CreateEvent appends one row to the activity ledger. This is the only
// statement that touches the events table from the write side; there is
// no update or delete counterpart.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.ID, arg.Type, arg.EventVersion, arg.UserID, arg.EntityType, arg.EntityID,
		arg.ConfessionID, arg.RitualSessionID, arg.Metadata, arg.CreatedAt,
	)
	return scanEvent(row)
}

const getEventByID = `
SELECT ` + eventColumns + ` FROM events WHERE id = ?
`

// GetEventByID fetches an event by its opaque ID.
func (q *Queries) GetEventByID(ctx context.Context, id string) (Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEventByID, id))
}

const listEventsPage = `
SELECT ` + eventColumns + ` FROM events
ORDER BY created_at DESC, seq DESC
LIMIT ?
`

// ListEventsPage returns the newest events.
func (q *Queries) ListEventsPage(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsPage, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

const listEventsBefore = `
SELECT ` + eventColumns + ` FROM events
WHERE created_at < ? OR (created_at = ? AND seq < ?)
ORDER BY created_at DESC, seq DESC
LIMIT ?
`

// ListEventsBefore returns events strictly older (in display order) than
// the row identified by the given created_at/seq pair. Used to resume
// pagination after an exclusive cursor.
func (q *Queries) ListEventsBefore(ctx context.Context, createdAt time.Time, seq, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsBefore, createdAt, createdAt, seq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

const countEventsByUserAndType = `
SELECT COUNT(*) FROM events WHERE user_id = ? AND type = ?
`

// CountEventsByUserAndType tallies the user's events of one type.
func (q *Queries) CountEventsByUserAndType(ctx context.Context, userID int64, typ string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countEventsByUserAndType, userID, typ).Scan(&n)
	return n, err
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (Event, error) {
	var e Event
	err := row.Scan(&e.Seq, &e.ID, &e.Type, &e.EventVersion, &e.UserID,
		&e.EntityType, &e.EntityID, &e.ConfessionID, &e.RitualSessionID,
		&e.Metadata, &e.CreatedAt)
	return e, err
}
