// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pileoffame-go/internal/store"
	"github.com/olegiv/pileoffame-go/internal/testutil"
)

func createTestUser(t *testing.T, q *store.Queries, username string) store.User {
	t.Helper()
	now := time.Now().UTC()
	user, err := q.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, q *store.Queries, userID int64, typ string, createdAt time.Time) store.Event {
	t.Helper()
	event, err := q.CreateEvent(context.Background(), store.CreateEventParams{
		ID:           uuid.NewString(),
		Type:         typ,
		EventVersion: 1,
		UserID:       userID,
		EntityType:   "USER",
		EntityID:     fmt.Sprintf("%d", userID),
		Metadata:     "{}",
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)
	return event
}

func TestUserQueries(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "alice")
	assert.NotZero(t, user.ID)

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := q.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byEmail, err := q.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate count", func(t *testing.T) {
		n, err := q.CountUsersByEmailOrUsername(ctx, "alice@example.com", "someone-else")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = q.CountUsersByEmailOrUsername(ctx, "new@example.com", "brand-new")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("unique username enforced", func(t *testing.T) {
		now := time.Now().UTC()
		_, err := q.CreateUser(ctx, store.CreateUserParams{
			Username:     "alice",
			Email:        "other@example.com",
			Name:         "Other",
			PasswordHash: "x",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		assert.Error(t, err)
	})

	t.Run("list by ids", func(t *testing.T) {
		bob := createTestUser(t, q, "bob")
		users, err := q.ListUsersByIDs(ctx, []int64{user.ID, bob.ID, 99999})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "bob", users[bob.ID].Username)
	})
}

func TestEventPagination(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "painter")

	// Five events: three share one timestamp so ordering falls back to
	// the seq tiebreaker.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var created []store.Event
	for i := 0; i < 5; i++ {
		at := base
		if i >= 3 {
			at = base.Add(time.Duration(i) * time.Minute)
		}
		created = append(created, createTestEvent(t, q, user.ID, "SYSTEM", at))
	}

	t.Run("first page newest first", func(t *testing.T) {
		events, err := q.ListEventsPage(ctx, 3)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, created[4].ID, events[0].ID)
		assert.Equal(t, created[3].ID, events[1].ID)
		assert.Equal(t, created[2].ID, events[2].ID)
	})

	t.Run("resume after cursor covers the rest exactly once", func(t *testing.T) {
		firstPage, err := q.ListEventsPage(ctx, 3)
		require.NoError(t, err)
		last := firstPage[len(firstPage)-1]

		rest, err := q.ListEventsBefore(ctx, last.CreatedAt, last.Seq, 10)
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Equal(t, created[1].ID, rest[0].ID)
		assert.Equal(t, created[0].ID, rest[1].ID)
	})

	t.Run("seq strictly increases with insertion order", func(t *testing.T) {
		for i := 1; i < len(created); i++ {
			assert.Greater(t, created[i].Seq, created[i-1].Seq)
		}
	})

	t.Run("count by user and type", func(t *testing.T) {
		n, err := q.CountEventsByUserAndType(ctx, user.ID, "SYSTEM")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})
}

func TestActiveSessionUniqueIndex(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "sessioner")
	now := time.Now().UTC()

	active, err := q.CreateRitualSession(ctx, store.CreateRitualSessionParams{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Photos:    "[]",
		Delta:     "{}",
		StartedAt: now,
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, active.Active())

	t.Run("second active session rejected", func(t *testing.T) {
		_, err := q.CreateRitualSession(ctx, store.CreateRitualSessionParams{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Photos:    "[]",
			Delta:     "{}",
			StartedAt: now,
			CreatedAt: now,
		})
		assert.Error(t, err)
	})

	t.Run("completed session coexists", func(t *testing.T) {
		_, err := q.CreateRitualSession(ctx, store.CreateRitualSessionParams{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			ActivityType:    "BASE",
			MiniCount:       1,
			DurationSeconds: 300,
			DurationMinutes: 5,
			Photos:          "[]",
			Delta:           "{}",
			StartedAt:       now.Add(-time.Hour),
			EndedAt:         sql.NullTime{Time: now, Valid: true},
			CreatedAt:       now,
		})
		assert.NoError(t, err)
	})

	t.Run("completion is one-way", func(t *testing.T) {
		completed, err := q.CompleteRitualSession(ctx, store.CompleteRitualSessionParams{
			ActivityType:    "BASE",
			MiniCount:       1,
			DurationSeconds: 60,
			DurationMinutes: 1,
			Photos:          "[]",
			Delta:           "{}",
			EndedAt:         now,
			ID:              active.ID,
			UserID:          user.ID,
		})
		require.NoError(t, err)
		assert.False(t, completed.Active())

		// Completing again matches no ACTIVE row.
		_, err = q.CompleteRitualSession(ctx, store.CompleteRitualSessionParams{
			ActivityType:    "BASE",
			MiniCount:       1,
			DurationSeconds: 60,
			DurationMinutes: 1,
			Photos:          "[]",
			Delta:           "{}",
			EndedAt:         now,
			ID:              active.ID,
			UserID:          user.ID,
		})
		assert.ErrorIs(t, err, sql.ErrNoRows)

		// With no ACTIVE session left, a new one can open.
		_, err = q.CreateRitualSession(ctx, store.CreateRitualSessionParams{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Photos:    "[]",
			Delta:     "{}",
			StartedAt: now,
			CreatedAt: now,
		})
		assert.NoError(t, err)
	})
}

func TestSessionJSONShape(t *testing.T) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(25 * time.Minute)

	t.Run("active session carries null endedAt", func(t *testing.T) {
		encoded, err := json.Marshal(store.RitualSession{
			ID:        "sess-1",
			UserID:    7,
			Photos:    "[]",
			Delta:     "{}",
			StartedAt: started,
			CreatedAt: started,
		})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(encoded, &out))
		require.Contains(t, out, "endedAt")
		assert.Nil(t, out["endedAt"])
		require.Contains(t, out, "targetMiniId")
		assert.Nil(t, out["targetMiniId"])
		assert.NotContains(t, out, "delta")
	})

	t.Run("completed session exposes endedAt and targetMiniId", func(t *testing.T) {
		encoded, err := json.Marshal(store.RitualSession{
			ID:              "sess-2",
			UserID:          7,
			TargetMiniID:    sql.NullString{String: "mini-9", Valid: true},
			ActivityType:    "BASE",
			MiniCount:       1,
			DurationSeconds: 1500,
			DurationMinutes: 25,
			Photos:          "[]",
			Delta:           "{}",
			StartedAt:       started,
			EndedAt:         sql.NullTime{Time: ended, Valid: true},
			CreatedAt:       started,
		})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(encoded, &out))
		assert.Equal(t, "mini-9", out["targetMiniId"])
		assert.Equal(t, ended.Format(time.RFC3339), out["endedAt"])
	})

	t.Run("session round-trips without losing endedAt", func(t *testing.T) {
		original := store.RitualSession{
			ID:        "sess-3",
			UserID:    7,
			Photos:    "[]",
			StartedAt: started,
			EndedAt:   sql.NullTime{Time: ended, Valid: true},
			CreatedAt: started,
		}
		encoded, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded store.RitualSession
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.False(t, decoded.Active())
		assert.True(t, decoded.EndedAt.Time.Equal(ended))
	})

	t.Run("event metadata is an object", func(t *testing.T) {
		encoded, err := json.Marshal(store.Event{
			Seq:       42,
			ID:        "evt-1",
			Type:      "RITUAL",
			UserID:    7,
			Metadata:  `{"durationSeconds":125}`,
			CreatedAt: started,
		})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(encoded, &out))
		meta, ok := out["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(125), meta["durationSeconds"])
		assert.NotContains(t, out, "seq")
	})

	t.Run("empty event metadata becomes an empty object", func(t *testing.T) {
		encoded, err := json.Marshal(store.Event{ID: "evt-2", Type: "SYSTEM", CreatedAt: started})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(encoded, &out))
		meta, ok := out["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Empty(t, meta)
	})
}

func TestReactionConstraints(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "reactor")
	event := createTestEvent(t, q, user.ID, "SYSTEM", time.Now().UTC())
	now := time.Now().UTC()

	reaction, err := q.CreateReaction(ctx, store.CreateReactionParams{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		UserID:    user.ID,
		Type:      "PRAY",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	t.Run("one reaction per user per event", func(t *testing.T) {
		_, err := q.CreateReaction(ctx, store.CreateReactionParams{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			UserID:    user.ID,
			Type:      "EXALT",
			CreatedAt: now,
			UpdatedAt: now,
		})
		assert.Error(t, err)
	})

	t.Run("type overwritten in place", func(t *testing.T) {
		updated, err := q.UpdateReactionType(ctx, reaction.ID, "EXALT", now)
		require.NoError(t, err)
		assert.Equal(t, reaction.ID, updated.ID)
		assert.Equal(t, "EXALT", updated.Type)
	})

	t.Run("delete then recreate", func(t *testing.T) {
		require.NoError(t, q.DeleteReactionsByEventAndUser(ctx, event.ID, user.ID))

		_, err := q.GetReactionByEventAndUser(ctx, event.ID, user.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		_, err = q.CreateReaction(ctx, store.CreateReactionParams{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			UserID:    user.ID,
			Type:      "PURIFY",
			CreatedAt: now,
			UpdatedAt: now,
		})
		assert.NoError(t, err)
	})

	t.Run("grouped listing", func(t *testing.T) {
		other := createTestEvent(t, q, user.ID, "SYSTEM", time.Now().UTC())
		grouped, err := q.ListReactionsByEventIDs(ctx, []string{event.ID, other.ID})
		require.NoError(t, err)
		assert.Len(t, grouped[event.ID], 1)
		assert.Empty(t, grouped[other.ID])
	})
}

func TestMiniQueries(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "collector")
	now := time.Now().UTC()

	newMini := func(name, status string, updatedAt time.Time) store.Mini {
		m, err := q.CreateMini(ctx, store.CreateMiniParams{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      name,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: updatedAt,
		})
		require.NoError(t, err)
		return m
	}

	newMini("old wip", "WIP", now.Add(-time.Hour))
	fresh := newMini("fresh wip", "WIP", now)
	newMini("shelf queen", "SHAME", now)

	t.Run("counts", func(t *testing.T) {
		total, err := q.CountMinisByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		wip, err := q.CountMinisByUserAndStatus(ctx, user.ID, "WIP")
		require.NoError(t, err)
		assert.Equal(t, int64(2), wip)
	})

	t.Run("current project is freshest WIP", func(t *testing.T) {
		project, err := q.GetCurrentProject(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, project.ID)
	})

	t.Run("progress patch", func(t *testing.T) {
		patched, err := q.UpdateMiniProgress(ctx, store.UpdateMiniProgressParams{
			Stage:           "HIGHLIGHT",
			ProgressPercent: 80,
			Status:          "WIP",
			UpdatedAt:       now.Add(time.Minute),
			ID:              fresh.ID,
			UserID:          user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(80), patched.ProgressPercent)
		assert.Equal(t, "HIGHLIGHT", patched.Stage)
	})

	t.Run("status check constraint", func(t *testing.T) {
		_, err := q.CreateMini(ctx, store.CreateMiniParams{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      "bad",
			Status:    "GLORIOUS",
			CreatedAt: now,
			UpdatedAt: now,
		})
		assert.Error(t, err)
	})
}
