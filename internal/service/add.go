package service

import (
	"context"
	"fmt"
	"strings"
	"unfc-tracker/internal/domain"
)

// Add starts tracking one beatmap from a link or a bare id. Tracked beatmaps
// and beatmaps that already have an FC are refused with a message, not an
// error.
func (s *TrackerService) Add(ctx context.Context, input string) (Report, error) {
	beatmapID, err := domain.ParseBeatmapLink(input)
	if err != nil {
		return Report{}, err
	}

	return s.exclusive(ctx, "add", func(ctx context.Context) (Report, error) {
		tracked, err := s.store.Tracked(ctx, beatmapID)
		if err != nil {
			return Report{}, err
		}
		if tracked {
			return Report{Message: fmt.Sprintf("Beatmap %d is already tracked", beatmapID)}, nil
		}

		// a bare id is not a link, so the row gets the canonical one
		link := strings.TrimSpace(input)
		job := Job{BeatmapID: beatmapID, LinkURL: link, WantsWriteback: !strings.Contains(link, "/")}

		var report Report
		_, err = s.pipeline.Run(ctx, []Job{job}, func(ctx context.Context, chunk int, results []Result) error {
			res := results[0]
			switch {
			case res.Record.IsError():
				report.Message = fmt.Sprintf("Beatmap %d could not be added: %s", beatmapID, res.Record.Error)
				return nil
			case res.FullCombo:
				report.Message = fmt.Sprintf("Beatmap %d already has an FC by %s", beatmapID, res.Record.Player.Label)
				return nil
			}

			rec := res.Record
			if res.Writeback != "" {
				rec.Link.URL = res.Writeback
			}
			position, err := s.store.AppendRecord(ctx, rec)
			if err != nil {
				return err
			}
			report = Report{
				Message:    fmt.Sprintf("Added beatmap %d (%s) at row %d", beatmapID, res.Record.Link.Label, position),
				BeatmapIDs: []int{beatmapID},
			}
			return nil
		})
		if err != nil {
			return Report{}, err
		}

		if len(report.BeatmapIDs) > 0 {
			if err := s.store.SortRecords(ctx); err != nil {
				return Report{}, err
			}
		}
		return report, nil
	})
}
