// Package scheduler wires up the cron job that periodically runs the ingest
// pipeline over all configured sources.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/telemetry"
)

// Runner is the unit of scheduled work, one full ingest cycle.
type Runner interface {
	Run(ctx context.Context) []telemetry.Snapshot
}

// Scheduler wraps robfig/cron and manages the ingest loop.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *zap.Logger
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(runner Runner, intervalHours int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one ingest
// cycle immediately so the store is populated without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler and waits for a running cycle.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.logger.Info("ingest cycle started")

	snapshots := s.runner.Run(ctx)

	for _, snap := range snapshots {
		s.logger.Info("ingest cycle source summary",
			zap.String("source", snap.Source),
			zap.Int("raw", snap.Raw),
			zap.Int("eligible", snap.Eligible),
			zap.Int("inserted", snap.Inserted),
			zap.Int("updated", snap.Updated),
			zap.Int("errors", len(snap.Errors)),
		)
	}

	s.logger.Info("ingest cycle complete", zap.Int("sources", len(snapshots)))
}
