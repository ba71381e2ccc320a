// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including event types, reaction vocabulary and the
// structured event metadata payload.
package model

// EventType identifies a kind of activity event.
//
// The set contains both legacy values (CONFESSION, RITUAL) and the
// canonical values that denote the same semantic action post-migration
// (MINI_UPDATED, SESSION_ENDED). The enumeration is frozen for backward
// compatibility; new semantics are expressed through the canonicalType
// metadata field instead of new writes to the legacy tags.
type EventType string

// Event types.
const (
	EventMiniCreated       EventType = "MINI_CREATED"
	EventSessionStarted    EventType = "SESSION_STARTED"
	EventSessionEnded      EventType = "SESSION_ENDED"
	EventMiniUpdated       EventType = "MINI_UPDATED"
	EventMilestoneUnlocked EventType = "MILESTONE_UNLOCKED"
	EventShareExported     EventType = "SHARE_EXPORTED"
	EventConfession        EventType = "CONFESSION"
	EventRitual            EventType = "RITUAL"
	EventStreak            EventType = "STREAK"
	EventCrusade           EventType = "CRUSADE"
	EventSystem            EventType = "SYSTEM"
	EventCultJoin          EventType = "CULT_JOIN"
)

// Entity types referenced by events.
const (
	EntityConfession    = "CONFESSION"
	EntityRitualSession = "RITUAL_SESSION"
	EntityMini          = "MINI"
	EntityUser          = "USER"
)

// eventTypes is the closed set of recognized event type tags.
var eventTypes = map[EventType]bool{
	EventMiniCreated:       true,
	EventSessionStarted:    true,
	EventSessionEnded:      true,
	EventMiniUpdated:       true,
	EventMilestoneUnlocked: true,
	EventShareExported:     true,
	EventConfession:        true,
	EventRitual:            true,
	EventStreak:            true,
	EventCrusade:           true,
	EventSystem:            true,
	EventCultJoin:          true,
}

// IsEventType reports whether s is a recognized event type tag.
func IsEventType(s string) bool {
	return eventTypes[EventType(s)]
}

// legacyCanonical maps legacy event type tags to their canonical identity.
// New code paths never branch on a legacy tag directly; they go through
// CanonicalEventType (or this table when writing metadata).
var legacyCanonical = map[EventType]EventType{
	EventConfession: EventMiniUpdated,
	EventRitual:     EventSessionEnded,
}

// CanonicalFor returns the canonical identity for an event type tag.
// Non-legacy tags are already canonical and map to themselves.
func CanonicalFor(t EventType) EventType {
	if c, ok := legacyCanonical[t]; ok {
		return c
	}
	return t
}

// CanonicalEventType resolves the stable semantic identity of an event:
// the metadata canonicalType when recorded, otherwise the raw type tag.
// Legacy events (type=CONFESSION/RITUAL with no canonicalType) and new
// events therefore render identically without a backfill migration.
func CanonicalEventType(t EventType, meta *EventMetadata) EventType {
	if meta != nil && meta.CanonicalType != "" {
		return meta.CanonicalType
	}
	return t
}
