// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance on a cron cadence.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
)

// Scheduler prunes the audit event log on a fixed cadence. Started with
// the server and stopped during graceful shutdown.
type Scheduler struct {
	db        *sql.DB
	cron      *cron.Cron
	logger    *slog.Logger
	events    *service.EventService
	retention time.Duration
}

// New creates a new scheduler instance. retention bounds the age of kept
// audit events.
func New(db *sql.DB, logger *slog.Logger, retention time.Duration) *Scheduler {
	return &Scheduler{
		db:        db,
		cron:      cron.New(),
		logger:    logger,
		events:    service.NewEventService(db),
		retention: retention,
	}
}

// Start begins the scheduler with an hourly event-log pruning job.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "event_retention", s.retention)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to
// finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneEvents deletes audit events older than the retention window.
func (s *Scheduler) pruneEvents() error {
	ctx := context.Background()

	if err := s.events.DeleteOldEvents(ctx, s.retention); err != nil {
		return err
	}

	s.logger.Debug("event log pruned", "retention", s.retention)
	_ = s.events.LogSystemEvent(ctx, model.EventLevelInfo, "Event log pruned",
		nil, "", map[string]any{"retention": s.retention.String()})
	return nil
}
