package service

import (
	"context"
	"fmt"
	"unfc-tracker/internal/export"
	"unfc-tracker/internal/repository"
)

// Workbook snapshots both tables for the spreadsheet export. It reads without
// the lease, so a concurrent run may leave the snapshot between chunks.
func (s *TrackerService) Workbook(ctx context.Context) (export.Workbook, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return export.Workbook{}, fmt.Errorf("failed to list records: %w", err)
	}
	history, err := s.store.ListHistory(ctx)
	if err != nil {
		return export.Workbook{}, fmt.Errorf("failed to list history: %w", err)
	}
	lastUpdated, err := s.optionalMeta(ctx, repository.MetaLastUpdated)
	if err != nil {
		return export.Workbook{}, err
	}
	return export.Workbook{Records: records, History: history, LastUpdated: lastUpdated}, nil
}
