// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "encoding/json"

// Heuristics records which session-end heuristics fired, persisted inside
// the event metadata so feed renderers can surface them.
type Heuristics struct {
	AutoSetFame              bool `json:"autoSetFame"`
	PhotoSuggestionTriggered bool `json:"photoSuggestionTriggered"`
}

// EventMetadata is the structured event payload. It always carries
// canonicalType (the stable semantic identity of the event) and, for
// writes to a legacy type tag, legacyType (the original tag) so old and
// new readers agree on meaning. The remaining fields form a union over
// the event kinds; the per-kind constructors below define which subset
// each kind carries.
type EventMetadata struct {
	CanonicalType   EventType   `json:"canonicalType,omitempty"`
	LegacyType      EventType   `json:"legacyType,omitempty"`
	MiniCount       *int64      `json:"miniCount,omitempty"`
	ActivityType    string      `json:"activityType,omitempty"`
	DurationSeconds *int64      `json:"durationSeconds,omitempty"`
	TargetMiniID    string      `json:"targetMiniId,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	PhotosCount     *int64      `json:"photosCount,omitempty"`
	Stage           string      `json:"stage,omitempty"`
	ProgressPercent *int64      `json:"progressPercent,omitempty"`
	Status          MiniStatus  `json:"status,omitempty"`
	Heuristics      *Heuristics `json:"heuristics,omitempty"`
	Name            string      `json:"name,omitempty"`
	Username        string      `json:"username,omitempty"`
}

// ConfessionMetadata builds the payload for a pile-baseline confession.
// Written against the legacy CONFESSION tag; the canonical identity is
// MINI_UPDATED.
func ConfessionMetadata(miniCount int64) EventMetadata {
	return EventMetadata{
		CanonicalType: EventMiniUpdated,
		LegacyType:    EventConfession,
		MiniCount:     &miniCount,
	}
}

// SessionStartedMetadata builds the payload for a session start.
func SessionStartedMetadata(targetMiniID string) EventMetadata {
	return EventMetadata{
		CanonicalType: EventSessionStarted,
		TargetMiniID:  targetMiniID,
	}
}

// SessionEndedInfo carries the session-end fields recorded in metadata.
type SessionEndedInfo struct {
	ActivityType    string
	DurationSeconds int64
	MiniCount       int64
	TargetMiniID    string
	Notes           string
	PhotosCount     int64
	Stage           string
	ProgressPercent *int64
	Status          MiniStatus
	Heuristics      Heuristics
}

// SessionEndedMetadata builds the payload for a completed session.
// Written against the legacy RITUAL tag; the canonical identity is
// SESSION_ENDED.
func SessionEndedMetadata(info SessionEndedInfo) EventMetadata {
	h := info.Heuristics
	return EventMetadata{
		CanonicalType:   EventSessionEnded,
		LegacyType:      EventRitual,
		ActivityType:    info.ActivityType,
		DurationSeconds: &info.DurationSeconds,
		MiniCount:       &info.MiniCount,
		TargetMiniID:    info.TargetMiniID,
		Notes:           info.Notes,
		PhotosCount:     &info.PhotosCount,
		Stage:           info.Stage,
		ProgressPercent: info.ProgressPercent,
		Status:          info.Status,
		Heuristics:      &h,
	}
}

// MiniCreatedMetadata builds the payload for a new inventory item.
func MiniCreatedMetadata(name string) EventMetadata {
	return EventMetadata{
		CanonicalType: EventMiniCreated,
		Name:          name,
	}
}

// CultJoinMetadata builds the payload for a user registration.
func CultJoinMetadata(username string) EventMetadata {
	return EventMetadata{
		CanonicalType: EventCultJoin,
		Username:      username,
	}
}

// Encode serializes the metadata to its stored JSON form.
func (m EventMetadata) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMetadata parses the stored JSON form of an event payload.
// An empty or absent payload decodes to the zero value.
func DecodeMetadata(raw string) (EventMetadata, error) {
	var m EventMetadata
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return EventMetadata{}, err
	}
	return m, nil
}
