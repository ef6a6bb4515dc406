package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/repository"
)

// ParseRow reads a 1-based Data row number.
func ParseRow(input string) (int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidRow, input)
	}
	if row < 1 {
		return 0, fmt.Errorf("%w: rows start at 1, got %d", ErrInvalidRow, row)
	}
	return row, nil
}

// Move archives Data row `input` to History regardless of its FC state.
func (s *TrackerService) Move(ctx context.Context, input string) (Report, error) {
	row, err := ParseRow(input)
	if err != nil {
		return Report{}, err
	}

	return s.exclusive(ctx, "move", func(ctx context.Context) (Report, error) {
		var entry domain.HistoryEntry
		err := s.store.WithTx(ctx, func(ctx context.Context) error {
			rec, err := s.store.GetRecordAt(ctx, row)
			if errors.Is(err, repository.ErrNotFound) {
				n, cerr := s.store.CountRecords(ctx)
				if cerr != nil {
					return cerr
				}
				return fmt.Errorf("%w: row %d is out of range 1-%d", ErrInvalidRow, row, n)
			}
			if err != nil {
				return err
			}
			if rec.IsBlank() || rec.IsError() {
				return fmt.Errorf("%w: row %d holds no beatmap data", ErrInvalidRow, row)
			}

			entry, err = s.store.AppendHistory(ctx, domain.NewHistoryEntry(rec, s.now()))
			if err != nil {
				return err
			}
			if err := s.store.DeleteRecordAt(ctx, row); err != nil {
				return err
			}
			return s.store.SortHistory(ctx)
		})
		if err != nil {
			return Report{}, err
		}

		return Report{
			Message:    fmt.Sprintf("Moved row %d (beatmap %d, %s) to History", row, entry.BeatmapID, entry.Link.Label),
			BeatmapIDs: []int{entry.BeatmapID},
		}, nil
	})
}

// SortHistory reorders History, newest FC first.
func (s *TrackerService) SortHistory(ctx context.Context) (Report, error) {
	return s.exclusive(ctx, "sort-history", func(ctx context.Context) (Report, error) {
		if err := s.store.SortHistory(ctx); err != nil {
			return Report{}, err
		}
		entries, err := s.store.ListHistory(ctx)
		if err != nil {
			return Report{}, err
		}
		return Report{Message: fmt.Sprintf("Sorted %s", pluralize(len(entries), "history entry", "history entries"))}, nil
	})
}
