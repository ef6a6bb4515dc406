package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/constants"
	"unfc-tracker/internal/service"

	"github.com/rs/zerolog"
)

// Runner is the subset of the tracker the daily triggers call.
type Runner interface {
	Refresh(ctx context.Context) (service.Report, error)
	Discover(ctx context.Context, since *time.Time) (service.Report, error)
	ScheduleEnabled(ctx context.Context) (bool, error)
}

type trigger struct {
	name string
	at   config.ClockTime
	run  func(ctx context.Context) (service.Report, error)
	next time.Time
}

// Scheduler fires refresh and discover once a day at fixed wall-clock times
// while the persisted schedule flag is on.
type Scheduler struct {
	runner   Runner
	loc      *time.Location
	interval time.Duration
	triggers []*trigger
	logger   zerolog.Logger
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(runner Runner, cfg *config.Config, logger zerolog.Logger) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		loc:      cfg.Timezone,
		interval: constants.SchedulerTick,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.triggers = []*trigger{
		{name: "refresh", at: cfg.RefreshAt, run: runner.Refresh},
		{name: "discover", at: cfg.DiscoverAt, run: func(ctx context.Context) (service.Report, error) {
			return runner.Discover(ctx, nil)
		}},
	}
	return s
}

// Start arms the triggers and runs the loop in the background until ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *Scheduler) run(ctx context.Context) {
	now := s.now()
	for _, t := range s.triggers {
		t.next = NextFire(t.at, now, s.loc)
		s.logger.Info().Str("trigger", t.name).Time("next", t.next).Msg("trigger armed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

// check fires every due trigger, one after another. A trigger that comes due
// while the schedule is off is skipped until the next day.
func (s *Scheduler) check(ctx context.Context) {
	now := s.now()
	for _, t := range s.triggers {
		if now.Before(t.next) {
			continue
		}
		t.next = NextFire(t.at, now, s.loc)

		enabled, err := s.runner.ScheduleEnabled(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("trigger", t.name).Msg("failed to read schedule flag")
			continue
		}
		if !enabled {
			s.logger.Debug().Str("trigger", t.name).Msg("schedule disabled, skipping")
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
		report, err := t.run(runCtx)
		cancel()

		switch {
		case errors.Is(err, service.ErrRunInProgress):
			s.logger.Warn().Str("trigger", t.name).Msg("skipped, another run holds the lease")
		case err != nil:
			s.logger.Error().Err(err).Str("trigger", t.name).Msg("scheduled run failed")
		default:
			s.logger.Info().Str("trigger", t.name).Str("summary", report.Message).Time("next", t.next).Msg("scheduled run finished")
		}
	}
}

// NextFire returns the first occurrence of at in loc strictly after after.
func NextFire(at config.ClockTime, after time.Time, loc *time.Location) time.Time {
	local := after.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, loc)
	for !candidate.After(after) {
		local = local.AddDate(0, 0, 1)
		candidate = time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, loc)
	}
	return candidate
}
