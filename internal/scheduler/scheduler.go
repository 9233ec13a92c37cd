// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/service"
	"github.com/qualitysolutions/qsite/internal/store"
)

// Retention windows.
const (
	LoginAttemptRetention = 24 * time.Hour
	EventRetention        = 30 * 24 * time.Hour
)

// Job names.
const (
	JobPruneLoginAttempts = "prune_login_attempts"
	JobPruneEvents        = "prune_events"
	JobPruneSessions      = "prune_sessions"
)

const jobTimeout = time.Minute

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) (int64, error)
	entryID  cron.EntryID
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  time.Time
}

// Scheduler handles the cleanup jobs.
type Scheduler struct {
	queries *store.Queries
	events  *service.EventService
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a scheduler. Session pruning is only registered for SQLite,
// where flash sessions live in the database.
func New(db store.DBTX, driver string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		queries: store.New(db),
		events:  service.NewEventService(db, logger),
		cron:    cron.New(),
		logger:  logger,
		now:     time.Now,
		jobs:    make(map[string]*job),
	}

	s.add(JobPruneLoginAttempts, "@hourly", s.pruneLoginAttempts)
	s.add(JobPruneEvents, "@daily", s.pruneEvents)
	if driver != store.DriverMySQL {
		s.add(JobPruneSessions, "@every 30m", s.pruneSessions)
	}
	return s
}

func (s *Scheduler) add(name, schedule string, run func(ctx context.Context) (int64, error)) {
	s.jobs[name] = &job{name: name, schedule: schedule, run: run}
}

// Start registers the jobs with cron and starts it.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		name := j.name
		id, err := s.cron.AddFunc(j.schedule, func() {
			if err := s.RunNow(name); err != nil {
				s.logger.Error("scheduled job failed", "job", name, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", name, err)
		}
		j.entryID = id
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

// Jobs lists the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{Name: j.name, Schedule: j.schedule}
		if j.entryID != 0 {
			info.NextRun = s.cron.Entry(j.entryID).Next
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, k int) bool { return infos[i].Name < infos[k].Name })
	return infos
}

// RunNow executes a job synchronously.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := s.now()
	n, err := j.run(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned rows", "job", name, "rows", n, "took", s.now().Sub(start))
	}
	return nil
}

func (s *Scheduler) pruneLoginAttempts(ctx context.Context) (int64, error) {
	return s.queries.DeleteLoginAttemptsBefore(ctx, s.now().Add(-LoginAttemptRetention))
}

func (s *Scheduler) pruneEvents(ctx context.Context) (int64, error) {
	n, err := s.events.DeleteOldEvents(ctx, EventRetention)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_ = s.events.LogSystemEvent(ctx, model.EventLevelInfo, "old events pruned", map[string]any{"rows": n})
	}
	return n, nil
}

func (s *Scheduler) pruneSessions(ctx context.Context) (int64, error) {
	return s.queries.DeleteExpiredSessions(ctx)
}
