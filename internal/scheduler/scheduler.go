// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"casedesk/internal/geoip"
	"casedesk/internal/service"
)

// Config controls the maintenance windows.
type Config struct {
	// BatchMaxAge is how long an unprocessed batch may sit before it expires.
	BatchMaxAge time.Duration
	// EventRetention is how long audit events are kept.
	EventRetention time.Duration
}

// DefaultConfig returns the standard maintenance windows.
func DefaultConfig() Config {
	return Config{
		BatchMaxAge:    7 * 24 * time.Hour,
		EventRetention: 90 * 24 * time.Hour,
	}
}

// Scheduler expires stale batches, purges old audit events, and reloads the
// GeoIP database when its file changes.
type Scheduler struct {
	cfg     Config
	batches *service.BatchService
	events  *service.EventService
	geo     *geoip.Lookup
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a scheduler. geo may be nil when GeoIP is disabled.
func New(cfg Config, batches *service.BatchService, events *service.EventService, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		batches: batches,
		events:  events,
		geo:     geo,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the cron jobs and begins running them.
func (s *Scheduler) Start() error {
	// Expire stale batches hourly.
	if _, err := s.cron.AddFunc("0 * * * *", s.expireBatches); err != nil {
		return err
	}

	// Purge old audit events nightly.
	if _, err := s.cron.AddFunc("30 3 * * *", s.purgeEvents); err != nil {
		return err
	}

	if s.geo != nil && s.geo.IsEnabled() {
		if _, err := s.cron.AddFunc("15 4 * * *", s.reloadGeoIP); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) expireBatches() {
	n, err := s.batches.ExpireStale(context.Background(), s.cfg.BatchMaxAge)
	if err != nil {
		s.logger.Error("failed to expire stale batches", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired stale batches", "count", n, "max_age", s.cfg.BatchMaxAge)
	}
}

func (s *Scheduler) purgeEvents() {
	n, err := s.events.PurgeOlderThan(context.Background(), s.cfg.EventRetention)
	if err != nil {
		s.logger.Error("failed to purge old events", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("purged old events", "count", n, "retention", s.cfg.EventRetention)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Error("failed to reload GeoIP database", "error", err)
	}
}
