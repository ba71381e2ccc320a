// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic database maintenance.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// maintenanceSpec runs nightly, after the feed has gone quiet.
const maintenanceSpec = "0 3 * * *"

// Scheduler owns the cron loop for background maintenance jobs.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler bound to the application database.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the maintenance job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(maintenanceSpec, func() {
		if err := s.RunMaintenance(context.Background()); err != nil {
			s.logger.Error("database maintenance failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for any running job before shutting the loop down.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunMaintenance sweeps expired login sessions, compacts the WAL and
// refreshes the query planner statistics. The event log is append-only,
// so without the nightly checkpoint the WAL file grows without bound.
func (s *Scheduler) RunMaintenance(ctx context.Context) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expiry < julianday('now')"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return err
	}

	s.logger.Info("database maintenance complete", "duration", time.Since(start))
	return nil
}
