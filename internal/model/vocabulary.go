// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Vocabulary holds the app-wide display strings.
type Vocabulary struct {
	AppName         string `json:"appName"`
	PrimaryAction   string `json:"primaryAction"`
	ContinueAction  string `json:"continueAction"`
	InventoryEntity string `json:"inventoryEntity"`
	SessionEntity   string `json:"sessionEntity"`
}

// AppVocabulary is the static copy vocabulary. Loaded once; never mutated.
var AppVocabulary = Vocabulary{
	AppName:         "Pile of Fame",
	PrimaryAction:   "Start Painting",
	ContinueAction:  "Continue Session",
	InventoryEntity: "Mini",
	SessionEntity:   "Session",
}

// ActivityTypeDef describes one selectable painting activity.
type ActivityTypeDef struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ActivityTypes is the fixed list of painting activities in display order.
var ActivityTypes = []ActivityTypeDef{
	{Value: "PRIME", Label: "Priming"},
	{Value: "BASE", Label: "Basecoating"},
	{Value: "HIGHLIGHT", Label: "Highlighting"},
	{Value: "WASH", Label: "Washing"},
	{Value: "DETAIL", Label: "Detailing"},
	{Value: "FINISH", Label: "Finishing"},
	{Value: "BASE_EARTH", Label: "Base - Earth"},
	{Value: "BASE_METAL", Label: "Base - Metal"},
	{Value: "BASE_SKIN", Label: "Base - Skin"},
	{Value: "BASE_CLOTH", Label: "Base - Cloth"},
	{Value: "BASE_HAIR", Label: "Base - Hair"},
}

// activityLabels indexes ActivityTypes by value.
var activityLabels = func() map[string]string {
	m := make(map[string]string, len(ActivityTypes))
	for _, a := range ActivityTypes {
		m[a.Value] = a.Label
	}
	return m
}()

// IsActivityType reports whether s is a recognized activity type.
func IsActivityType(s string) bool {
	_, ok := activityLabels[s]
	return ok
}

// ActivityLabel returns the display label for an activity type,
// or the raw value when unknown.
func ActivityLabel(s string) string {
	if label, ok := activityLabels[s]; ok {
		return label
	}
	return s
}

// ReactionType identifies a reaction kind.
type ReactionType string

// Reaction types.
const (
	ReactionPray   ReactionType = "PRAY"
	ReactionPurify ReactionType = "PURIFY"
	ReactionExalt  ReactionType = "EXALT"
)

// ReactionDef describes one reaction with its display emoji and labels.
type ReactionDef struct {
	Type  ReactionType `json:"type"`
	Emoji string       `json:"emoji"`
	Label string       `json:"label"`
	Aria  string       `json:"aria"`
}

// ReactionDefinitions is the fixed reaction vocabulary in display order.
var ReactionDefinitions = []ReactionDef{
	{Type: ReactionPray, Emoji: "\U0001F64F", Label: "Pray", Aria: "Support this progress"},
	{Type: ReactionPurify, Emoji: "\U0001F525", Label: "Zeal", Aria: "Celebrate the effort"},
	{Type: ReactionExalt, Emoji: "\U0001F451", Label: "Ascended", Aria: "Honor the milestone"},
}

// IsReactionType reports whether s is a recognized reaction type.
func IsReactionType(s string) bool {
	switch ReactionType(s) {
	case ReactionPray, ReactionPurify, ReactionExalt:
		return true
	}
	return false
}

// EventCopy maps event types (canonical and legacy) to feed copy strings.
var EventCopy = map[EventType]string{
	EventSessionEnded:      "completed a painting session",
	EventSessionStarted:    "started a painting session",
	EventMiniUpdated:       "updated mini progress",
	EventMiniCreated:       "added a mini to inventory",
	EventMilestoneUnlocked: "unlocked a milestone",
	EventShareExported:     "exported a share card",
	EventRitual:            "completed a painting session",
	EventConfession:        "updated pile baseline",
	EventCultJoin:          "joined the cult",
}

// FeedCopy returns the feed copy for an event. The raw type tag wins
// when it has its own entry, so confession rows keep their baseline
// wording whether or not canonicalType was recorded; tags without an
// entry fall back to their canonical identity's copy.
func FeedCopy(t, canonical EventType) string {
	if c, ok := EventCopy[t]; ok {
		return c
	}
	return EventCopy[canonical]
}
