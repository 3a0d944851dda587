// Package scheduler runs the periodic gift card maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ExpirySweeper is the slice of the gift card engine the scheduler drives.
type ExpirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron    *cron.Cron
	sweeper ExpirySweeper
	logger  zerolog.Logger
}

// New creates a scheduler with the expiry sweep registered at the given cron
// schedule (seconds precision, UTC).
func New(sweeper ExpirySweeper, schedule string, logger zerolog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}

	if _, err := c.AddFunc(schedule, s.runExpirySweep); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now().UTC()

	expired, err := s.sweeper.SweepExpired(ctx, start)
	if err != nil {
		s.logger.Error().Err(err).Msg("gift card expiry sweep failed")
		return
	}

	s.logger.Info().
		Int("expired", expired).
		Dur("duration", time.Since(start)).
		Msg("gift card expiry sweep completed")
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}
