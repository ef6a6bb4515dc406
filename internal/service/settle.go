package service

import (
	"context"
	"fmt"
	"strings"
	"unfc-tracker/internal/domain"
)

type settleResult struct {
	archived []int
	deleted  []int
	skipped  int
}

func (r settleResult) message() string {
	if len(r.archived) == 0 && len(r.deleted) == 0 {
		return "no settled FCs"
	}
	var parts []string
	if len(r.archived) > 0 {
		parts = append(parts, fmt.Sprintf("archived %s", joinIDs(r.archived)))
	}
	if len(r.deleted) > 0 {
		parts = append(parts, fmt.Sprintf("deleted %s", joinIDs(r.deleted)))
	}
	return strings.Join(parts, ", ")
}

func (r settleResult) ids() []int {
	out := make([]int, 0, len(r.archived)+len(r.deleted))
	out = append(out, r.archived...)
	return append(out, r.deleted...)
}

// Settle moves FC'd rows out of Data: old ones to History, fresh ones
// deleted.
func (s *TrackerService) Settle(ctx context.Context) (Report, error) {
	return s.exclusive(ctx, "settle", func(ctx context.Context) (Report, error) {
		res, err := s.settle(ctx)
		if err != nil {
			return Report{}, err
		}
		if err := s.store.SortRecords(ctx); err != nil {
			return Report{}, err
		}

		msg := "Settled: " + res.message()
		if res.skipped > 0 {
			msg += fmt.Sprintf(" (%s skipped)", pluralize(res.skipped, "row", "rows"))
		}
		return Report{Message: msg, BeatmapIDs: res.ids()}, nil
	})
}

// settle applies one reconciliation plan in a single transaction. Rows are
// removed bottom-up so pending positions stay valid.
func (s *TrackerService) settle(ctx context.Context) (settleResult, error) {
	var res settleResult
	now := s.now()

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		records, err := s.store.ListRecords(ctx)
		if err != nil {
			return err
		}

		plan := domain.Reconcile(records, now)
		res = settleResult{skipped: plan.Skipped}

		for _, action := range plan.Ordered() {
			if action.Kind == domain.ActionArchive {
				if _, err := s.store.AppendHistory(ctx, domain.NewHistoryEntry(action.Record, now)); err != nil {
					return err
				}
			}
			if err := s.store.DeleteRecordAt(ctx, action.Position); err != nil {
				return err
			}

			s.logger.Info().
				Str("action", action.Kind.String()).
				Int("beatmap_id", action.BeatmapID).
				Int("position", action.Position).
				Msg("settled row")

			if action.Kind == domain.ActionArchive {
				res.archived = append(res.archived, action.BeatmapID)
			} else {
				res.deleted = append(res.deleted, action.BeatmapID)
			}
		}

		if len(plan.Archive) > 0 {
			return s.store.SortHistory(ctx)
		}
		return nil
	})
	if err != nil {
		return settleResult{}, fmt.Errorf("failed to settle records: %w", err)
	}
	return res, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
