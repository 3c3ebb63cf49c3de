// Package scheduler runs periodic maintenance jobs. Today that is one job: flushing season
// aggregates once the current season changes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SeasonRefresher is satisfied by service.SeasonStatsService.
type SeasonRefresher interface {
	RefreshSeason(ctx context.Context) (bool, error)
}

// jobTimeout bounds one refresh, lock wait included.
const jobTimeout = 30 * time.Second

type Scheduler struct {
	cron    *cron.Cron
	refresh SeasonRefresher
	clock   clockwork.Clock
	log     zerolog.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// New parses spec (standard five-field cron syntax, UTC) and registers the season check.
func New(spec string, refresh SeasonRefresher, clock clockwork.Clock, logger zerolog.Logger) (*Scheduler, error) {
	l := logger.With().Str("module", "scheduler").Logger()
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Scheduler{
		refresh: refresh,
		clock:   clock,
		log:     l,
	}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{l}),
		cron.WithChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l})),
	)
	if _, err := s.cron.AddFunc(spec, func() { _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler: bad season check spec %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the season check once immediately, then on schedule.
func (s *Scheduler) Start(ctx context.Context) {
	_ = s.RunOnce(ctx)
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.log.Info().Msg("scheduler stopped")
}

// RunOnce performs a single season check. Errors are logged and returned, never fatal.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := s.clock.Now()
	changed, err := s.refresh.RefreshSeason(ctx)

	s.mu.Lock()
	s.lastRun, s.lastErr = start, err
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("season check failed")
		return err
	}
	s.log.Debug().Bool("changed", changed).Dur("took", s.clock.Since(start)).Msg("season check done")
	return nil
}

// LastRun reports when the season check last ran and its outcome.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ log zerolog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
