// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pileoffame-go/internal/cache"
	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/service"
	"github.com/olegiv/pileoffame-go/internal/store"
	"github.com/olegiv/pileoffame-go/internal/testutil"
)

func registerTestUser(t *testing.T, db *sql.DB, username string) store.User {
	t.Helper()
	user, err := service.NewUserService(db).Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "brush-licker-9",
	})
	require.NoError(t, err)
	return user
}

func decodeEventMetadata(t *testing.T, e store.Event) model.EventMetadata {
	t.Helper()
	meta, err := model.DecodeMetadata(e.Metadata)
	require.NoError(t, err)
	return meta
}

func TestUserService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	users := service.NewUserService(db)

	t.Run("register emits cult join event", func(t *testing.T) {
		user := registerTestUser(t, db, "Grim Dabbler")
		assert.Equal(t, "grim-dabbler", user.Username)
		assert.Equal(t, "Grim Dabbler", user.Name)

		n, err := store.New(db).CountEventsByUserAndType(ctx, user.ID, string(model.EventCultJoin))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		_, err := users.Register(ctx, service.RegisterInput{
			Username: "grim dabbler",
			Email:    "fresh@example.com",
			Password: "pw",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateUser)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := users.Register(ctx, service.RegisterInput{Username: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, service.ErrMissingFields)
	})

	t.Run("authenticate", func(t *testing.T) {
		user, err := users.Authenticate(ctx, "Grim Dabbler@example.com ", "brush-licker-9")
		require.NoError(t, err)
		assert.Equal(t, "grim-dabbler", user.Username)

		_, err = users.Authenticate(ctx, "grim dabbler@example.com", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = users.Authenticate(ctx, "nobody@example.com", "brush-licker-9")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestConfessionService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "confessor")
	confessions := service.NewConfessionService(db)

	t.Run("confess writes entity and event atomically", func(t *testing.T) {
		confession, event, err := confessions.Confess(ctx, user.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(40), confession.MiniCount)

		assert.Equal(t, string(model.EventConfession), event.Type)
		meta := decodeEventMetadata(t, event)
		assert.Equal(t, model.EventMiniUpdated, meta.CanonicalType)
		assert.Equal(t, model.EventConfession, meta.LegacyType)
		require.NotNil(t, meta.MiniCount)
		assert.Equal(t, int64(40), *meta.MiniCount)
		assert.Equal(t, confession.ID, event.ConfessionID.String)
	})

	t.Run("zero is a valid confession", func(t *testing.T) {
		confession, _, err := confessions.Confess(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), confession.MiniCount)
	})

	t.Run("negative rejected without side effects", func(t *testing.T) {
		before, err := store.New(db).CountEventsByUserAndType(ctx, user.ID, string(model.EventConfession))
		require.NoError(t, err)

		_, _, err = confessions.Confess(ctx, user.ID, -1)
		assert.ErrorIs(t, err, service.ErrInvalidMiniCount)

		after, err := store.New(db).CountEventsByUserAndType(ctx, user.ID, string(model.EventConfession))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("latest wins", func(t *testing.T) {
		latest, ok, err := confessions.Latest(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(0), latest.MiniCount)
	})

	t.Run("no confession yet", func(t *testing.T) {
		fresh := registerTestUser(t, db, "fresh-confessor")
		_, ok, err := confessions.Latest(ctx, fresh.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRitualServiceStart(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "starter")
	rituals := service.NewRitualService(db)

	first, err := rituals.Start(ctx, user.ID, "")
	require.NoError(t, err)
	assert.False(t, first.Resumed)
	assert.True(t, first.Session.Active())
	assert.Equal(t, string(model.EventSessionStarted), first.Event.Type)

	t.Run("start is idempotent", func(t *testing.T) {
		second, err := rituals.Start(ctx, user.ID, "")
		require.NoError(t, err)
		assert.True(t, second.Resumed)
		assert.Equal(t, first.Session.ID, second.Session.ID)

		// At most one SESSION_STARTED total.
		n, err := store.New(db).CountEventsByUserAndType(ctx, user.ID, string(model.EventSessionStarted))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("active lookup", func(t *testing.T) {
		active, ok, err := rituals.Active(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first.Session.ID, active.ID)
	})
}

func TestRitualServiceEnd(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	rituals := service.NewRitualService(db)
	minis := service.NewMiniService(db)

	t.Run("end completes the active session", func(t *testing.T) {
		user := registerTestUser(t, db, "ender")
		started, err := rituals.Start(ctx, user.ID, "")
		require.NoError(t, err)

		result, err := rituals.End(ctx, user.ID, service.EndInput{
			MiniCount:       2,
			ActivityType:    "BASE",
			DurationSeconds: 125,
			Stage:           "WIP",
		})
		require.NoError(t, err)

		assert.Equal(t, started.Session.ID, result.Session.ID)
		assert.False(t, result.Session.Active())
		assert.Equal(t, int64(125), result.Session.DurationSeconds)
		assert.Equal(t, int64(2), result.Session.DurationMinutes)

		assert.Equal(t, string(model.EventRitual), result.Event.Type)
		meta := decodeEventMetadata(t, result.Event)
		assert.Equal(t, model.EventSessionEnded, meta.CanonicalType)
		assert.Equal(t, model.EventRitual, meta.LegacyType)
		assert.Equal(t, "WIP", meta.Stage)
		require.NotNil(t, meta.DurationSeconds)
		assert.Equal(t, int64(125), *meta.DurationSeconds)
	})

	t.Run("duration floors to a minimum of one minute", func(t *testing.T) {
		user := registerTestUser(t, db, "quick-ender")
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			MiniCount:       1,
			ActivityType:    "PRIME",
			DurationSeconds: 30,
			Stage:           "PRIMED",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Session.DurationMinutes)
	})

	t.Run("end without start synthesizes a completed session", func(t *testing.T) {
		user := registerTestUser(t, db, "skipper")
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			MiniCount:       1,
			ActivityType:    "BASE",
			DurationSeconds: 600,
			Stage:           "BASED",
		})
		require.NoError(t, err)
		assert.False(t, result.Session.Active())
		assert.Equal(t, int64(600), result.Session.DurationSeconds)

		// Still exactly one SESSION_ENDED event.
		n, err := store.New(db).CountEventsByUserAndType(ctx, user.ID, string(model.EventRitual))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("auto fame overrides caller status", func(t *testing.T) {
		user := registerTestUser(t, db, "finisher")
		mini, _, err := minis.Create(ctx, user.ID, service.CreateMiniInput{Name: "Terminator", Status: "WIP"})
		require.NoError(t, err)

		progress := int64(100)
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			TargetMiniID:    mini.ID,
			MiniCount:       1,
			ActivityType:    "DETAIL",
			DurationSeconds: 900,
			ProgressPercent: &progress,
			Status:          "WIP",
		})
		require.NoError(t, err)

		require.NotNil(t, result.Mini)
		assert.Equal(t, string(model.StatusFame), result.Mini.Status)

		meta := decodeEventMetadata(t, result.Event)
		require.NotNil(t, meta.Heuristics)
		assert.True(t, meta.Heuristics.AutoSetFame)
	})

	t.Run("delta snapshot records before and after", func(t *testing.T) {
		user := registerTestUser(t, db, "delta-painter")
		mini, _, err := minis.Create(ctx, user.ID, service.CreateMiniInput{
			Name: "Ogre", Status: "WIP", Stage: "BASE", ProgressPercent: 40,
		})
		require.NoError(t, err)

		progress := int64(70)
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			TargetMiniID:    mini.ID,
			MiniCount:       1,
			ActivityType:    "HIGHLIGHT",
			DurationSeconds: 300,
			Stage:           "HIGHLIGHT",
			ProgressPercent: &progress,
		})
		require.NoError(t, err)

		var delta model.MiniDelta
		require.NoError(t, decodeJSON(result.Session.Delta, &delta))
		require.NotNil(t, delta.Stage)
		assert.Equal(t, "BASE", delta.Stage.From)
		assert.Equal(t, "HIGHLIGHT", delta.Stage.To)
		require.NotNil(t, delta.ProgressPercent)
		assert.Equal(t, int64(40), delta.ProgressPercent.From)
		assert.Equal(t, int64(70), delta.ProgressPercent.To)
		assert.Nil(t, delta.Status)
	})

	t.Run("photo suggestion fires when photos lack a logged delta", func(t *testing.T) {
		user := registerTestUser(t, db, "photographer")
		progress := int64(10)
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			MiniCount:       1,
			ActivityType:    "BASE",
			DurationSeconds: 60,
			Photos:          []string{"https://example.com/wip.jpg"},
			ProgressPercent: &progress,
		})
		require.NoError(t, err)

		meta := decodeEventMetadata(t, result.Event)
		require.NotNil(t, meta.Heuristics)
		assert.True(t, meta.Heuristics.PhotoSuggestionTriggered)
		require.NotNil(t, meta.PhotosCount)
		assert.Equal(t, int64(1), *meta.PhotosCount)
	})

	t.Run("unknown target mini is soft-ignored", func(t *testing.T) {
		user := registerTestUser(t, db, "lost-target")
		result, err := rituals.End(ctx, user.ID, service.EndInput{
			TargetMiniID:    "no-such-mini",
			MiniCount:       1,
			ActivityType:    "BASE",
			DurationSeconds: 60,
			Stage:           "BASE",
		})
		require.NoError(t, err)
		assert.Nil(t, result.Mini)
		assert.False(t, result.Session.Active())
	})
}

func TestReactionService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "reactor")
	confessions := service.NewConfessionService(db)
	reactions := service.NewReactionService(db)

	_, event, err := confessions.Confess(ctx, user.ID, 12)
	require.NoError(t, err)

	t.Run("react then re-react overwrites", func(t *testing.T) {
		first, err := reactions.React(ctx, event.ID, user.ID, "PRAY")
		require.NoError(t, err)

		same, err := reactions.React(ctx, event.ID, user.ID, "PRAY")
		require.NoError(t, err)
		assert.Equal(t, first.ID, same.ID)

		changed, err := reactions.React(ctx, event.ID, user.ID, "EXALT")
		require.NoError(t, err)
		assert.Equal(t, first.ID, changed.ID)
		assert.Equal(t, "EXALT", changed.Type)

		all, err := store.New(db).ListReactionsByEventIDs(ctx, []string{event.ID})
		require.NoError(t, err)
		require.Len(t, all[event.ID], 1)

		tallies := service.Tally(all[event.ID])
		assert.Equal(t, int64(1), tallies["EXALT"])
		assert.Zero(t, tallies["PRAY"])
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := reactions.React(ctx, event.ID, user.ID, "SALUTE")
		assert.ErrorIs(t, err, service.ErrUnknownReaction)
	})

	t.Run("unknown event rejected", func(t *testing.T) {
		_, err := reactions.React(ctx, "no-such-event", user.ID, "PRAY")
		assert.ErrorIs(t, err, service.ErrEventNotFound)
	})

	t.Run("unreact deletes, twice is a no-op", func(t *testing.T) {
		require.NoError(t, reactions.Unreact(ctx, event.ID, user.ID))
		require.NoError(t, reactions.Unreact(ctx, event.ID, user.ID))

		all, err := store.New(db).ListReactionsByEventIDs(ctx, []string{event.ID})
		require.NoError(t, err)
		assert.Empty(t, all[event.ID])
	})

	t.Run("tally skips unknown types", func(t *testing.T) {
		tallies := service.Tally([]store.Reaction{
			{Type: "PRAY"}, {Type: "PRAY"}, {Type: "GLITTER"},
		})
		assert.Equal(t, int64(2), tallies["PRAY"])
		_, present := tallies["GLITTER"]
		assert.False(t, present)
	})
}

func TestFeedService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "feeder")
	confessions := service.NewConfessionService(db)
	feed := service.NewFeedService(db)

	// Registration already wrote one CULT_JOIN event.
	var lastEventID string
	for i := int64(1); i <= 6; i++ {
		_, event, err := confessions.Confess(ctx, user.ID, i*10)
		require.NoError(t, err)
		lastEventID = event.ID
	}

	t.Run("walking pages yields every event exactly once", func(t *testing.T) {
		seen := map[string]bool{}
		var cursor string
		var last time.Time
		pages := 0
		for {
			page, err := feed.Page(ctx, cursor, 3)
			require.NoError(t, err)
			pages++
			for _, e := range page.Events {
				assert.False(t, seen[e.ID], "event %s repeated", e.ID)
				seen[e.ID] = true
				if !last.IsZero() {
					assert.False(t, e.CreatedAt.After(last), "feed not descending")
				}
				last = e.CreatedAt
			}
			if !page.HasMore {
				break
			}
			require.NotEmpty(t, page.NextCursor)
			cursor = page.NextCursor
		}
		assert.Len(t, seen, 7) // 6 confessions + CULT_JOIN
		assert.Equal(t, 3, pages)
	})

	t.Run("enrichment", func(t *testing.T) {
		page, err := feed.Page(ctx, "", 1)
		require.NoError(t, err)
		require.Len(t, page.Events, 1)

		e := page.Events[0]
		assert.Equal(t, lastEventID, e.ID)
		assert.Equal(t, model.EventMiniUpdated, e.CanonicalType)
		assert.Equal(t, "updated pile baseline", e.Copy)
		assert.Equal(t, "feeder", e.Actor.Username)
		require.NotNil(t, e.Confession)
		assert.Equal(t, int64(60), e.Confession.MiniCount)
	})

	t.Run("reactions attached with public identity", func(t *testing.T) {
		reactions := service.NewReactionService(db)
		_, err := reactions.React(ctx, lastEventID, user.ID, "PRAY")
		require.NoError(t, err)

		page, err := feed.Page(ctx, "", 1)
		require.NoError(t, err)
		require.Len(t, page.Events[0].Reactions, 1)
		assert.Equal(t, "feeder", page.Events[0].Reactions[0].User.Username)
		assert.Equal(t, int64(1), page.Events[0].Tallies["PRAY"])
	})

	t.Run("invalid cursor", func(t *testing.T) {
		_, err := feed.Page(ctx, "bogus", 3)
		assert.ErrorIs(t, err, service.ErrInvalidCursor)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		page, err := feed.Page(ctx, "", 100000)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Events), service.MaxFeedLimit)
	})

	t.Run("legacy confession rows render like new ones", func(t *testing.T) {
		// A row written before canonicalType existed: raw tag only,
		// empty metadata.
		legacy, err := store.New(db).CreateEvent(ctx, store.CreateEventParams{
			ID:           "legacy-confession",
			Type:         string(model.EventConfession),
			EventVersion: 1,
			UserID:       user.ID,
			EntityType:   model.EntityConfession,
			EntityID:     "legacy-confession-entity",
			CreatedAt:    time.Now().UTC(),
		})
		require.NoError(t, err)

		page, err := feed.Page(ctx, "", 2)
		require.NoError(t, err)
		require.Len(t, page.Events, 2)

		newest, previous := page.Events[0], page.Events[1]
		require.Equal(t, legacy.ID, newest.ID)
		assert.Equal(t, model.EventConfession, newest.CanonicalType)
		assert.Equal(t, "updated pile baseline", newest.Copy)
		assert.Equal(t, previous.Copy, newest.Copy)
	})
}

func TestHomeService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "homebody")

	c := cache.NewMemoryCache(time.Minute)
	defer c.Close()
	home := service.NewHomeService(db, c, 30*time.Second)
	minis := service.NewMiniService(db)
	rituals := service.NewRitualService(db)

	t.Run("empty inventory", func(t *testing.T) {
		payload, err := home.Dashboard(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, service.StateNoMinis, payload.PersonalizationState)
		assert.Equal(t, "ADD_FIRST_MINI", payload.PrimaryCTA.Kind)
		assert.Nil(t, payload.CurrentProject)
	})

	t.Run("cache serves stale until invalidated", func(t *testing.T) {
		_, _, err := minis.Create(ctx, user.ID, service.CreateMiniInput{Name: "Dragon", Status: "WIP"})
		require.NoError(t, err)

		stale, err := home.Dashboard(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, service.StateNoMinis, stale.PersonalizationState)

		home.Invalidate(ctx, user.ID)
		fresh, err := home.Dashboard(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, service.StateHasWipMinis, fresh.PersonalizationState)
		require.NotNil(t, fresh.CurrentProject)
		assert.Equal(t, "Dragon", fresh.CurrentProject.Name)
	})

	t.Run("active session wins personalization", func(t *testing.T) {
		_, err := rituals.Start(ctx, user.ID, "")
		require.NoError(t, err)

		home.Invalidate(ctx, user.ID)
		payload, err := home.Dashboard(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, service.StateHasActiveSession, payload.PersonalizationState)
		assert.Equal(t, "RESUME_SESSION", payload.PrimaryCTA.Kind)
		require.NotNil(t, payload.Sessions.Active)
	})

	t.Run("completion percent rounds", func(t *testing.T) {
		fameUser := registerTestUser(t, db, "fame-counter")
		_, _, err := minis.Create(ctx, fameUser.ID, service.CreateMiniInput{Name: "a", Status: "FAME"})
		require.NoError(t, err)
		_, _, err = minis.Create(ctx, fameUser.ID, service.CreateMiniInput{Name: "b", Status: "SHAME"})
		require.NoError(t, err)
		_, _, err = minis.Create(ctx, fameUser.ID, service.CreateMiniInput{Name: "c", Status: "SHAME"})
		require.NoError(t, err)

		payload, err := home.Dashboard(ctx, fameUser.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), payload.ProgressAnchor.Value)
		assert.Equal(t, int64(3), payload.ProgressAnchor.Meta.TotalMinis)
		assert.Equal(t, int64(33), payload.ProgressAnchor.Meta.CompletionPercent)
	})
}

func TestMiniService(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	user := registerTestUser(t, db, "mini-maker")
	minis := service.NewMiniService(db)

	t.Run("create defaults to shame and emits event", func(t *testing.T) {
		mini, event, err := minis.Create(ctx, user.ID, service.CreateMiniInput{Name: "Skeleton"})
		require.NoError(t, err)
		assert.Equal(t, string(model.StatusShame), mini.Status)
		assert.Equal(t, string(model.EventMiniCreated), event.Type)

		meta := decodeEventMetadata(t, event)
		assert.Equal(t, "Skeleton", meta.Name)
	})

	t.Run("name required", func(t *testing.T) {
		_, _, err := minis.Create(ctx, user.ID, service.CreateMiniInput{})
		assert.ErrorIs(t, err, service.ErrMiniNameRequired)
	})

	t.Run("bad status rejected", func(t *testing.T) {
		_, _, err := minis.Create(ctx, user.ID, service.CreateMiniInput{Name: "x", Status: "GOLDEN"})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("list", func(t *testing.T) {
		listed, err := minis.List(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})
}

func decodeJSON(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}
