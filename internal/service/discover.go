package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unfc-tracker/internal/api"
	"unfc-tracker/internal/constants"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/repository"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Discover ingests beatmaps ranked since the stored marker, or since the
// given time when it is non-nil. Beatmaps that already have an FC are never
// inserted.
func (s *TrackerService) Discover(ctx context.Context, since *time.Time) (Report, error) {
	return s.exclusive(ctx, "discover", func(ctx context.Context) (Report, error) {
		return s.discover(ctx, since)
	})
}

func (s *TrackerService) discover(ctx context.Context, sinceArg *time.Time) (Report, error) {
	since, err := s.discoverSince(ctx, sinceArg)
	if err != nil {
		return Report{}, err
	}

	candidates, newest, err := s.collectNewBeatmaps(ctx, since)
	if err != nil {
		return Report{}, err
	}

	jobs := make([]Job, len(candidates))
	for i := range candidates {
		jobs[i] = Job{BeatmapID: candidates[i].BeatmapID, Beatmap: &candidates[i], WantsWriteback: true}
	}

	var added, dropped []int
	summary, err := s.pipeline.Run(ctx, jobs, func(ctx context.Context, chunk int, results []Result) error {
		return s.store.WithTx(ctx, func(ctx context.Context) error {
			for _, res := range results {
				if res.FullCombo {
					dropped = append(dropped, res.Job.BeatmapID)
					continue
				}
				rec := res.Record
				if res.Writeback != "" {
					rec.Link.URL = res.Writeback
				}
				if _, err := s.store.AppendRecord(ctx, rec); err != nil {
					return err
				}
				added = append(added, res.Job.BeatmapID)
			}
			return nil
		})
	})
	if err != nil {
		return Report{}, fmt.Errorf("discover stopped after %d chunks: %w", summary.Chunks, err)
	}

	if err := s.store.SortRecords(ctx); err != nil {
		return Report{}, err
	}
	if newest.After(since) {
		if err := s.store.SetMeta(ctx, repository.MetaDiscoverSince, newest.UTC().Format(time.RFC3339)); err != nil {
			return Report{}, err
		}
	}
	if err := s.markUpdated(ctx); err != nil {
		return Report{}, err
	}

	msg := fmt.Sprintf("Discovered %s since %s", pluralize(len(added), "new beatmap", "new beatmaps"), since.UTC().Format(time.DateTime))
	if len(added) > 0 {
		msg += ": " + joinIDs(added)
	}
	if len(dropped) > 0 {
		msg += fmt.Sprintf(" (%s already FC'd)", pluralize(len(dropped), "beatmap", "beatmaps"))
	}
	return Report{Message: msg, BeatmapIDs: added}, nil
}

func (s *TrackerService) discoverSince(ctx context.Context, since *time.Time) (time.Time, error) {
	if since != nil {
		return *since, nil
	}

	marker, err := s.store.GetMeta(ctx, repository.MetaDiscoverSince)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.now().Add(-s.cfg.DiscoverLookback), nil
	case err != nil:
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, marker)
	if err != nil {
		s.logger.Warn().Err(err).Str("marker", marker).Msg("ignoring unreadable discover marker")
		return s.now().Add(-s.cfg.DiscoverLookback), nil
	}
	return t, nil
}

// collectNewBeatmaps pages through the feed and keeps ranked standard-mode
// beatmaps that are not tracked yet. newest is the latest ranked date seen.
func (s *TrackerService) collectNewBeatmaps(ctx context.Context, since time.Time) ([]domain.Beatmap, time.Time, error) {
	var out []domain.Beatmap
	seen := make(map[int]bool)
	cursor, newest := since, since

	for {
		page, err := s.fetcher.GetBeatmapsSince(ctx, cursor, constants.DiscoverPageLimit)
		if errors.Is(err, api.ErrEmptyResponse) {
			break
		}
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to list beatmaps since %s: %w", cursor.Format(time.DateTime), err)
		}

		pageNewest := cursor
		for _, b := range page {
			if b.RankedAt.After(pageNewest) {
				pageNewest = b.RankedAt
			}
			if seen[b.BeatmapID] || b.Mode != 0 || !b.Status.Tracked() {
				continue
			}
			seen[b.BeatmapID] = true

			tracked, err := s.store.Tracked(ctx, b.BeatmapID)
			if err != nil {
				return nil, time.Time{}, err
			}
			if tracked {
				continue
			}
			out = append(out, b)
		}

		if pageNewest.After(newest) {
			newest = pageNewest
		}
		if len(page) < constants.DiscoverPageLimit || !pageNewest.After(cursor) {
			break
		}
		cursor = pageNewest
	}

	s.logger.Info().Int("candidates", len(out)).Time("since", since).Msg("discovery feed scanned")
	return out, newest, nil
}

// ParseSince reads a --since value: an RFC 3339 timestamp, a date, or a
// phrase such as "3 days ago" relative to now.
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty since value")
	}

	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse since %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize since %q", input)
	}
	return r.Time, nil
}
