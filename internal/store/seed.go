// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/pileoffame-go/internal/auth"
	"github.com/olegiv/pileoffame-go/internal/model"
)

// Seed creates a demo account with a small pile when enabled and the
// database is empty. Intended for local development.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) error {
	if !doSeed {
		return nil
	}

	queries := New(db)

	var userCount int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	hash, err := auth.HashPassword("painter123")
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     "demo-painter",
		Email:        "demo@pileoffame.local",
		Name:         "Demo Painter",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating seed user: %w", err)
	}

	seedMinis := []struct {
		name     string
		system   string
		status   model.MiniStatus
		stage    string
		progress int64
	}{
		{"Intercessor Squad", "40k", model.StatusShame, "", 0},
		{"Plague Marine", "40k", model.StatusWIP, "BASE", 40},
		{"Necromancer", "AoS", model.StatusWIP, "HIGHLIGHT", 70},
		{"Goblin Boss", "AoS", model.StatusFame, model.StageFinished, 100},
	}
	for _, m := range seedMinis {
		if _, err := queries.CreateMini(ctx, CreateMiniParams{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			Name:            m.name,
			System:          m.system,
			Status:          string(m.status),
			Stage:           m.stage,
			ProgressPercent: m.progress,
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			return fmt.Errorf("creating seed mini %q: %w", m.name, err)
		}
	}

	slog.Info("seeded demo data", "user", user.Username, "minis", len(seedMinis))
	return nil
}
