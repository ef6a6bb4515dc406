package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/constants"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/metrics"
	"unfc-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrRunInProgress = errors.New("another tracker run is in progress")
	ErrInvalidRow    = errors.New("invalid row number")
)

const lastUpdatedLayout = "2006-01-02"

// Fetcher is the upstream API. Bodies are returned raw so parse failures stay
// per-job.
type Fetcher interface {
	GetBeatmap(ctx context.Context, beatmapID int) ([]byte, error)
	GetScores(ctx context.Context, beatmapID int) ([]byte, error)
	GetBeatmapsSince(ctx context.Context, since time.Time, limit int) ([]domain.Beatmap, error)
}

// Store is the two-table record store. Calls made with the context handed to
// a WithTx callback join that transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListRecords(ctx context.Context) ([]domain.Record, error)
	GetRecordAt(ctx context.Context, position int) (domain.Record, error)
	CountRecords(ctx context.Context) (int, error)
	Tracked(ctx context.Context, beatmapID int) (bool, error)
	AppendRecord(ctx context.Context, rec domain.Record) (int, error)
	UpdateRecord(ctx context.Context, rec domain.Record) error
	DeleteRecordAt(ctx context.Context, position int) error
	SortRecords(ctx context.Context) error

	ListHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	SortHistory(ctx context.Context) error

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, error)
	Renew(ctx context.Context, name, holder string, ttl time.Duration) error
	Release(ctx context.Context, name, holder string) error
	Get(ctx context.Context, name string) (*domain.Lease, error)
}

// Report is the outcome of one operation. Message is the one-line summary
// shown to the user.
type Report struct {
	Operation  string `json:"operation"`
	Message    string `json:"message"`
	BeatmapIDs []int  `json:"beatmap_ids,omitempty"`
}

type TrackerService struct {
	store    Store
	leases   Locker
	fetcher  Fetcher
	pipeline *Pipeline
	cfg      *config.Config
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTrackerService(store Store, leases Locker, fetcher Fetcher, pipeline *Pipeline, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *TrackerService {
	return &TrackerService{
		store:    store,
		leases:   leases,
		fetcher:  fetcher,
		pipeline: pipeline,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// exclusive runs fn under the tracker lease so that no two mutating
// operations interleave.
func (s *TrackerService) exclusive(ctx context.Context, operation string, fn func(ctx context.Context) (Report, error)) (Report, error) {
	start := time.Now()
	log := s.logger.With().
		Str("operation", operation).
		Str("run_id", uuid.NewString()).
		Logger()
	ctx = log.WithContext(ctx)

	holder, err := s.leases.Acquire(ctx, constants.LeaseName, s.cfg.LeaseTTL)
	if errors.Is(err, repository.ErrLeaseHeld) {
		log.Warn().Msg("run rejected, lease held")
		s.metrics.ObserveRun(operation, start, ErrRunInProgress)
		return Report{}, ErrRunInProgress
	}
	if err != nil {
		s.metrics.ObserveRun(operation, start, err)
		return Report{}, fmt.Errorf("failed to acquire lease: %w", err)
	}
	defer func() {
		if err := s.leases.Release(context.WithoutCancel(ctx), constants.LeaseName, holder); err != nil {
			log.Warn().Err(err).Msg("failed to release lease")
		}
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := s.keepLease(runCtx, cancel, holder, log)

	log.Info().Msg("run started")
	report, err := fn(runCtx)
	stop()
	if lost := context.Cause(runCtx); errors.Is(lost, repository.ErrLeaseLost) {
		err = fmt.Errorf("run %s lost the tracker lease: %w", operation, lost)
	}
	s.metrics.ObserveRun(operation, start, err)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("run failed")
		return report, err
	}

	report.Operation = operation
	log.Info().Str("summary", report.Message).Dur("duration", time.Since(start)).Msg("run completed")
	s.updateRowGauges(ctx)
	return report, nil
}

// keepLease renews the lease every third of its TTL until the returned stop
// func is called. Losing the lease cancels ctx with ErrLeaseLost as cause.
func (s *TrackerService) keepLease(ctx context.Context, cancel context.CancelCauseFunc, holder string, log zerolog.Logger) func() {
	ttl := s.cfg.LeaseTTL
	if ttl <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := s.leases.Renew(ctx, constants.LeaseName, holder, ttl)
				switch {
				case errors.Is(err, repository.ErrLeaseLost):
					log.Error().Err(err).Msg("lease lost, cancelling run")
					cancel(err)
					return
				case err != nil:
					log.Warn().Err(err).Msg("failed to renew lease")
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// markUpdated writes yesterday's date, in the configured timezone, to the
// Last Updated marker.
func (s *TrackerService) markUpdated(ctx context.Context) error {
	yesterday := s.now().In(s.cfg.Timezone).AddDate(0, 0, -1)
	if err := s.store.SetMeta(ctx, repository.MetaLastUpdated, yesterday.Format(lastUpdatedLayout)); err != nil {
		return fmt.Errorf("failed to write last updated: %w", err)
	}
	return nil
}

func (s *TrackerService) updateRowGauges(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.store.CountRecords(ctx); err == nil {
		s.metrics.SetRows("data", n)
	}
	if entries, err := s.store.ListHistory(ctx); err == nil {
		s.metrics.SetRows("history", len(entries))
	}
}

func (s *TrackerService) Records(ctx context.Context) ([]domain.Record, error) {
	return s.store.ListRecords(ctx)
}

func (s *TrackerService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return s.store.ListHistory(ctx)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
