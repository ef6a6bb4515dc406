package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unfc-tracker/internal/db"
	"unfc-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var (
	ErrLeaseHeld = errors.New("lease is held by another run")
	ErrLeaseLost = errors.New("lease no longer held")
)

// LeaseRepository hands out named, expiring row locks. An expired lease can be
// taken over by the next caller.
type LeaseRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewLeaseRepository(queries *db.Queries, logger zerolog.Logger) *LeaseRepository {
	return &LeaseRepository{
		queries: queries,
		logger:  logger,
	}
}

// Acquire takes the lease for ttl and returns the holder token needed to
// release it.
func (r *LeaseRepository) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	holder, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now()
	n, err := r.queries.AcquireLock(ctx, db.AcquireLockParams{
		Name:       name,
		Holder:     holder,
		AcquiredAt: now.UnixMilli(),
		ExpiresAt:  now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to acquire lease %s: %w", name, err)
	}
	if n == 0 {
		return "", ErrLeaseHeld
	}

	r.logger.Debug().Str("lease", name).Str("holder", holder).Dur("ttl", ttl).Msg("lease acquired")
	return holder, nil
}

// Renew pushes the expiry of a held lease to now+ttl. ErrLeaseLost means the
// row is gone or another holder took it over.
func (r *LeaseRepository) Renew(ctx context.Context, name, holder string, ttl time.Duration) error {
	n, err := r.queries.RenewLock(ctx, db.RenewLockParams{
		ExpiresAt: time.Now().Add(ttl).UnixMilli(),
		Name:      name,
		Holder:    holder,
	})
	if err != nil {
		return fmt.Errorf("failed to renew lease %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("lease %s held by %s: %w", name, holder, ErrLeaseLost)
	}
	return nil
}

func (r *LeaseRepository) Release(ctx context.Context, name, holder string) error {
	n, err := r.queries.ReleaseLock(ctx, db.ReleaseLockParams{Name: name, Holder: holder})
	if err != nil {
		return fmt.Errorf("failed to release lease %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("lease %s held by %s: %w", name, holder, ErrNotFound)
	}

	r.logger.Debug().Str("lease", name).Str("holder", holder).Msg("lease released")
	return nil
}

// Get returns the current lease row, expired or not.
func (r *LeaseRepository) Get(ctx context.Context, name string) (*domain.Lease, error) {
	row, err := r.queries.GetLock(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lease %s: %w", name, err)
	}

	return &domain.Lease{
		Name:       row.Name,
		Holder:     row.Holder,
		AcquiredAt: time.UnixMilli(row.AcquiredAt).UTC(),
		ExpiresAt:  time.UnixMilli(row.ExpiresAt).UTC(),
	}, nil
}
