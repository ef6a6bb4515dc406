package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unfc-tracker/internal/constants"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/repository"
)

type Status struct {
	LastUpdated     string        `json:"last_updated,omitempty"`
	DiscoverSince   string        `json:"discover_since,omitempty"`
	ScheduleEnabled bool          `json:"schedule_enabled"`
	RefreshAt       string        `json:"refresh_at"`
	DiscoverAt      string        `json:"discover_at"`
	Timezone        string        `json:"timezone"`
	Records         int           `json:"records"`
	History         int           `json:"history"`
	Lease           *domain.Lease `json:"lease,omitempty"`
}

// SetSchedule installs (true) or removes (false) the daily refresh and
// discover triggers as a pair.
func (s *TrackerService) SetSchedule(ctx context.Context, enabled bool) (Report, error) {
	if err := s.store.SetMeta(ctx, repository.MetaScheduleEnabled, strconv.FormatBool(enabled)); err != nil {
		return Report{}, err
	}

	msg := "Daily schedule removed"
	if enabled {
		msg = fmt.Sprintf("Daily schedule installed: refresh at %s, discover at %s (%s)", s.cfg.RefreshAt, s.cfg.DiscoverAt, s.cfg.Timezone)
	}
	s.logger.Info().Bool("enabled", enabled).Msg("schedule updated")
	return Report{Operation: "schedule", Message: msg}, nil
}

func (s *TrackerService) ScheduleEnabled(ctx context.Context) (bool, error) {
	value, err := s.store.GetMeta(ctx, repository.MetaScheduleEnabled)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		s.logger.Warn().Str("value", value).Msg("unreadable schedule flag, treating as disabled")
		return false, nil
	}
	return enabled, nil
}

func (s *TrackerService) Status(ctx context.Context) (Status, error) {
	st := Status{
		RefreshAt:  s.cfg.RefreshAt.String(),
		DiscoverAt: s.cfg.DiscoverAt.String(),
		Timezone:   s.cfg.Timezone.String(),
	}

	var err error
	if st.ScheduleEnabled, err = s.ScheduleEnabled(ctx); err != nil {
		return Status{}, err
	}
	if st.LastUpdated, err = s.optionalMeta(ctx, repository.MetaLastUpdated); err != nil {
		return Status{}, err
	}
	if st.DiscoverSince, err = s.optionalMeta(ctx, repository.MetaDiscoverSince); err != nil {
		return Status{}, err
	}
	if st.Records, err = s.store.CountRecords(ctx); err != nil {
		return Status{}, err
	}
	history, err := s.store.ListHistory(ctx)
	if err != nil {
		return Status{}, err
	}
	st.History = len(history)

	lease, err := s.leases.Get(ctx, constants.LeaseName)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return Status{}, err
	case lease.ExpiresAt.After(s.now()):
		st.Lease = lease
	}
	return st, nil
}

func (s *TrackerService) optionalMeta(ctx context.Context, key string) (string, error) {
	value, err := s.store.GetMeta(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return value, err
}
