// Package scheduler fires a single job once per day at a fixed local time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pilotage/internal/logging"

	"github.com/robfig/cron/v3"
)

// Job is the action fired on each daily trigger.
type Job func(ctx context.Context)

// Config holds the daily trigger time. The job fires on the wall clock of
// Location, so DST transitions are cron's problem, not the job's.
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Scheduler wraps robfig/cron with a one-entry daily schedule.
type Scheduler struct {
	cron     *cron.Cron
	config   Config
	job      Job
	logger   logging.Logger
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a Scheduler. A still-running job is skipped, never overlapped,
// when the next trigger arrives.
func New(cfg Config, job Job, logger logging.Logger) *Scheduler {
	logger = logging.OrNop(logger)
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	options := []cron.Option{
		cron.WithParser(parser),
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	}

	return &Scheduler{
		cron:    cron.New(options...),
		config:  cfg,
		job:     job,
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Spec returns the cron expression for the configured trigger time.
func (s *Scheduler) Spec() string {
	return fmt.Sprintf("%d %d * * *", s.config.Minute, s.config.Hour)
}

// Start registers the daily trigger and starts cron. The scheduler stops
// itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.job == nil {
		return fmt.Errorf("scheduler has no job")
	}

	if _, err := s.cron.AddFunc(s.Spec(), func() {
		s.logger.Info("Scheduler: firing daily trigger (%02d:%02d %s)",
			s.config.Hour, s.config.Minute, s.config.Location)
		s.job(context.Background())
	}); err != nil {
		return fmt.Errorf("register daily trigger: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started (daily at %02d:%02d %s)",
		s.config.Hour, s.config.Minute, s.config.Location)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
// Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler stopping...")
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		close(s.stopped)
		s.logger.Info("Scheduler stopped")
	})
}

// Done returns a channel that is closed when the scheduler has fully stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.stopped
}
