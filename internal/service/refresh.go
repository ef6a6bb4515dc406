package service

import (
	"context"
	"fmt"
	"strings"
)

// Refresh rebuilds every Data row from the API, then settles and sorts the
// table and stamps Last Updated.
func (s *TrackerService) Refresh(ctx context.Context) (Report, error) {
	return s.exclusive(ctx, "refresh", s.refresh)
}

func (s *TrackerService) refresh(ctx context.Context) (Report, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return Report{}, err
	}

	jobs := make([]Job, 0, len(records))
	for _, r := range records {
		if r.IsBlank() || r.BeatmapID <= 0 {
			continue
		}
		jobs = append(jobs, Job{Position: r.Position, BeatmapID: r.BeatmapID, LinkURL: r.Link.URL})
	}

	summary, err := s.pipeline.Run(ctx, jobs, func(ctx context.Context, chunk int, results []Result) error {
		return s.store.WithTx(ctx, func(ctx context.Context) error {
			for _, res := range results {
				if err := s.store.UpdateRecord(ctx, res.Record); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return Report{}, fmt.Errorf("refresh stopped after %d of %d chunks: %w", summary.Chunks, chunkCount(len(jobs), s.pipeline.chunkSize), err)
	}

	settled, err := s.settle(ctx)
	if err != nil {
		return Report{}, err
	}
	if err := s.store.SortRecords(ctx); err != nil {
		return Report{}, err
	}
	if err := s.markUpdated(ctx); err != nil {
		return Report{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Refreshed %s in %s", pluralize(summary.Built, "beatmap", "beatmaps"), pluralize(summary.Chunks, "chunk", "chunks"))
	if summary.Errored > 0 || summary.ScoreFallbacks > 0 {
		fmt.Fprintf(&b, " (%s, %s)", pluralize(summary.Errored, "error", "errors"), pluralize(summary.ScoreFallbacks, "score fallback", "score fallbacks"))
	}
	fmt.Fprintf(&b, "; %s", settled.message())

	return Report{Message: b.String(), BeatmapIDs: settled.ids()}, nil
}

func chunkCount(jobs, size int) int {
	if size <= 0 {
		return jobs
	}
	return (jobs + size - 1) / size
}
