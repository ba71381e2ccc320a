// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/pileoffame-go/internal/markdown"
	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
)

// Feed pagination bounds.
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// ErrInvalidCursor is returned when a feed cursor does not name a known
// event.
var ErrInvalidCursor = errors.New("invalid feed cursor")

// FeedService reads the activity ledger in display order and enriches
// each event for rendering. It never writes.
type FeedService struct {
	queries *store.Queries
}

// NewFeedService creates a FeedService.
func NewFeedService(db *sql.DB) *FeedService {
	return &FeedService{queries: store.New(db)}
}

// PublicUser is the actor identity exposed in feed payloads.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// FeedReaction is one reaction with its reacting user attached, so
// clients can render "did I already react" without a second call.
type FeedReaction struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	User      PublicUser `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
}

// FeedEvent is one fully enriched feed entry.
type FeedEvent struct {
	ID            string               `json:"id"`
	Type          model.EventType      `json:"type"`
	CanonicalType model.EventType      `json:"canonicalType"`
	Copy          string               `json:"copy,omitempty"`
	EventVersion  int64                `json:"eventVersion"`
	EntityType    string               `json:"entityType"`
	EntityID      string               `json:"entityId"`
	Metadata      model.EventMetadata  `json:"metadata"`
	Actor         PublicUser           `json:"user"`
	Confession    *store.Confession    `json:"confession,omitempty"`
	RitualSession *store.RitualSession `json:"ritualSession,omitempty"`
	NotesHTML     string               `json:"notesHtml,omitempty"`
	Reactions     []FeedReaction       `json:"reactions"`
	Tallies       map[string]int64     `json:"tallies"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// FeedPage is one page of the feed.
type FeedPage struct {
	Events     []FeedEvent `json:"events"`
	HasMore    bool        `json:"hasMore"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// Page returns one page of the feed, newest first. The cursor is an
// event ID and is exclusive: results resume strictly after that row in
// display order. The page is fetched with a limit+1 look-ahead so
// hasMore needs no COUNT query; when more rows exist, nextCursor is the
// ID of the last displayed row.
func (s *FeedService) Page(ctx context.Context, cursor string, limit int64) (FeedPage, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	var (
		events []store.Event
		err    error
	)
	if cursor == "" {
		events, err = s.queries.ListEventsPage(ctx, limit+1)
	} else {
		var after store.Event
		after, err = s.queries.GetEventByID(ctx, cursor)
		if errors.Is(err, sql.ErrNoRows) {
			return FeedPage{}, ErrInvalidCursor
		}
		if err != nil {
			return FeedPage{}, fmt.Errorf("resolving feed cursor: %w", err)
		}
		events, err = s.queries.ListEventsBefore(ctx, after.CreatedAt, after.Seq, limit+1)
	}
	if err != nil {
		return FeedPage{}, fmt.Errorf("listing events: %w", err)
	}

	page := FeedPage{Events: []FeedEvent{}}
	if int64(len(events)) > limit {
		events = events[:limit]
		page.HasMore = true
	}
	if len(events) == 0 {
		return page, nil
	}
	if page.HasMore {
		page.NextCursor = events[len(events)-1].ID
	}

	enriched, err := s.enrich(ctx, events)
	if err != nil {
		return FeedPage{}, err
	}
	page.Events = enriched
	return page, nil
}

// enrich joins reactions, actors and originating entities onto a batch
// of events with one query per relation rather than one per event.
func (s *FeedService) enrich(ctx context.Context, events []store.Event) ([]FeedEvent, error) {
	eventIDs := make([]string, 0, len(events))
	var confessionIDs, sessionIDs []string
	userIDSet := make(map[int64]bool)

	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
		userIDSet[e.UserID] = true
		if e.ConfessionID.Valid {
			confessionIDs = append(confessionIDs, e.ConfessionID.String)
		}
		if e.RitualSessionID.Valid {
			sessionIDs = append(sessionIDs, e.RitualSessionID.String)
		}
	}

	reactions, err := s.queries.ListReactionsByEventIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}
	for _, rs := range reactions {
		for _, r := range rs {
			userIDSet[r.UserID] = true
		}
	}

	userIDs := make([]int64, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}
	users, err := s.queries.ListUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	confessions, err := s.queries.ListConfessionsByIDs(ctx, confessionIDs)
	if err != nil {
		return nil, fmt.Errorf("listing confessions: %w", err)
	}
	sessions, err := s.queries.ListRitualSessionsByIDs(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("listing ritual sessions: %w", err)
	}

	out := make([]FeedEvent, 0, len(events))
	for _, e := range events {
		meta, err := model.DecodeMetadata(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("decoding metadata for event %s: %w", e.ID, err)
		}
		canonical := model.CanonicalEventType(model.EventType(e.Type), &meta)

		fe := FeedEvent{
			ID:            e.ID,
			Type:          model.EventType(e.Type),
			CanonicalType: canonical,
			Copy:          model.FeedCopy(model.EventType(e.Type), canonical),
			EventVersion:  e.EventVersion,
			EntityType:    e.EntityType,
			EntityID:      e.EntityID,
			Metadata:      meta,
			Actor:         publicUser(users[e.UserID]),
			Reactions:     []FeedReaction{},
			CreatedAt:     e.CreatedAt,
		}

		if e.ConfessionID.Valid {
			if c, ok := confessions[e.ConfessionID.String]; ok {
				fe.Confession = &c
			}
		}
		if e.RitualSessionID.Valid {
			if sess, ok := sessions[e.RitualSessionID.String]; ok {
				fe.RitualSession = &sess
				if sess.Notes != "" {
					fe.NotesHTML = markdown.RenderUGC(sess.Notes)
				}
			}
		}

		for _, r := range reactions[e.ID] {
			fe.Reactions = append(fe.Reactions, FeedReaction{
				ID:        r.ID,
				Type:      r.Type,
				User:      publicUser(users[r.UserID]),
				CreatedAt: r.CreatedAt,
			})
		}
		fe.Tallies = Tally(reactions[e.ID])

		out = append(out, fe)
	}
	return out, nil
}

func publicUser(u store.User) PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Name: u.Name, ImageURL: u.ImageURL}
}
