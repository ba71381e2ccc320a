// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User is an account row.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	ImageURL     string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Mini is an inventory item row.
type Mini struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"userId"`
	Name            string    `json:"name"`
	System          string    `json:"system,omitempty"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage,omitempty"`
	ProgressPercent int64     `json:"progressPercent"`
	CoverImageURL   string    `json:"coverImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Confession is a pile-baseline declaration row. Append-only per user;
// the most recent row is authoritative for display.
type Confession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	MiniCount int64     `json:"miniCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// RitualSession is a painting work session row. A session is ACTIVE while
// ended_at is null and duration_seconds is zero, COMPLETED once ended.
type RitualSession struct {
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
	Photos          string // JSON array stored as string
	Delta           string // JSON snapshot stored as string
	StartedAt       time.Time
	EndedAt         sql.NullTime
	CreatedAt       time.Time
}

// Active reports whether the session is still running.
func (s RitualSession) Active() bool {
	return !s.EndedAt.Valid
}

// ritualSessionJSON is the API shape of a session: nullable endedAt and
// targetMiniId instead of sql.Null wrappers, photos as a decoded array.
// The delta snapshot stays internal.
type ritualSessionJSON struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"userId"`
	TargetMiniID    *string         `json:"targetMiniId"`
	ActivityType    string          `json:"activityType,omitempty"`
	MiniCount       int64           `json:"miniCount"`
	DurationSeconds int64           `json:"durationSeconds"`
	DurationMinutes int64           `json:"durationMinutes"`
	BeforeImageURL  string          `json:"beforeImageUrl,omitempty"`
	AfterImageURL   string          `json:"afterImageUrl,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Photos          json.RawMessage `json:"photos"`
	StartedAt       time.Time       `json:"startedAt"`
	EndedAt         *time.Time      `json:"endedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MarshalJSON emits the API shape; clients read session state from
// endedAt rather than inferring it from a zero duration.
func (s RitualSession) MarshalJSON() ([]byte, error) {
	out := ritualSessionJSON{
		ID:              s.ID,
		UserID:          s.UserID,
		ActivityType:    s.ActivityType,
		MiniCount:       s.MiniCount,
		DurationSeconds: s.DurationSeconds,
		DurationMinutes: s.DurationMinutes,
		BeforeImageURL:  s.BeforeImageURL,
		AfterImageURL:   s.AfterImageURL,
		Notes:           s.Notes,
		Photos:          json.RawMessage("[]"),
		StartedAt:       s.StartedAt,
		CreatedAt:       s.CreatedAt,
	}
	if s.TargetMiniID.Valid {
		out.TargetMiniID = &s.TargetMiniID.String
	}
	if s.EndedAt.Valid {
		out.EndedAt = &s.EndedAt.Time
	}
	if s.Photos != "" {
		out.Photos = json.RawMessage(s.Photos)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a session from its API shape, so cached
// payloads carrying sessions round-trip without losing endedAt.
func (s *RitualSession) UnmarshalJSON(b []byte) error {
	var in ritualSessionJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = RitualSession{
		ID:              in.ID,
		UserID:          in.UserID,
		ActivityType:    in.ActivityType,
		MiniCount:       in.MiniCount,
		DurationSeconds: in.DurationSeconds,
		DurationMinutes: in.DurationMinutes,
		BeforeImageURL:  in.BeforeImageURL,
		AfterImageURL:   in.AfterImageURL,
		Notes:           in.Notes,
		Photos:          "[]",
		StartedAt:       in.StartedAt,
		CreatedAt:       in.CreatedAt,
	}
	if in.TargetMiniID != nil {
		s.TargetMiniID = sql.NullString{String: *in.TargetMiniID, Valid: true}
	}
	if in.EndedAt != nil {
		s.EndedAt = sql.NullTime{Time: *in.EndedAt, Valid: true}
	}
	if len(in.Photos) > 0 {
		s.Photos = string(in.Photos)
	}
	return nil
}

// Event is an immutable activity ledger row. Rows are only ever inserted;
// seq is the insertion-order tiebreaker behind the opaque id cursor.
type Event struct {
	Seq             int64
	ID              string
	Type            string
	EventVersion    int64
	UserID          int64
	EntityType      string
	EntityID        string
	ConfessionID    sql.NullString
	RitualSessionID sql.NullString
	Metadata        string // JSON stored as string
	CreatedAt       time.Time
}

// MarshalJSON emits the API shape of an event: metadata decoded into an
// object rather than a string, seq kept internal to the cursor.
func (e Event) MarshalJSON() ([]byte, error) {
	out := struct {
		ID              string          `json:"id"`
		Type            string          `json:"type"`
		EventVersion    int64           `json:"eventVersion"`
		UserID          int64           `json:"userId"`
		EntityType      string          `json:"entityType"`
		EntityID        string          `json:"entityId"`
		ConfessionID    *string         `json:"confessionId"`
		RitualSessionID *string         `json:"ritualSessionId"`
		Metadata        json.RawMessage `json:"metadata"`
		CreatedAt       time.Time       `json:"createdAt"`
	}{
		ID:           e.ID,
		Type:         e.Type,
		EventVersion: e.EventVersion,
		UserID:       e.UserID,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		Metadata:     json.RawMessage("{}"),
		CreatedAt:    e.CreatedAt,
	}
	if e.ConfessionID.Valid {
		out.ConfessionID = &e.ConfessionID.String
	}
	if e.RitualSessionID.Valid {
		out.RitualSessionID = &e.RitualSessionID.String
	}
	if e.Metadata != "" {
		out.Metadata = json.RawMessage(e.Metadata)
	}
	return json.Marshal(out)
}

// Reaction is a user's current reaction to one event. Unique on
// (event_id, user_id); re-reacting overwrites type in place.
type Reaction struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
