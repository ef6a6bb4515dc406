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

var ErrNotFound = errors.New("not found")

const (
	MetaLastUpdated     = "last_updated"
	MetaDiscoverSince   = "discover_since"
	MetaScheduleEnabled = "schedule_enabled"
)

type txKey struct{}

// RecordRepository stores the Data and History tables. Rows are addressed by
// their 1-based position; deleting a row shifts every later row up by one.
type RecordRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRecordRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RecordRepository {
	return &RecordRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// WithTx runs fn inside a transaction carried by the context it receives.
// Calls made with that context join the transaction; nested calls reuse it.
func (r *RecordRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *RecordRepository) q(ctx context.Context) *db.Queries {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return r.queries.WithTx(tx)
	}
	return r.queries
}

func (r *RecordRepository) ListRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.q(ctx).ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]domain.Record, len(rows))
	for i, row := range rows {
		records[i] = recordFromRow(row)
	}
	return records, nil
}

func (r *RecordRepository) GetRecordAt(ctx context.Context, position int) (domain.Record, error) {
	row, err := r.q(ctx).GetRecordAt(ctx, int64(position))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to get record at %d: %w", position, err)
	}
	return recordFromRow(row), nil
}

func (r *RecordRepository) CountRecords(ctx context.Context) (int, error) {
	n, err := r.q(ctx).CountRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(n), nil
}

// Tracked reports whether the beatmap already has a Data row or a History
// entry.
func (r *RecordRepository) Tracked(ctx context.Context, beatmapID int) (bool, error) {
	q := r.q(ctx)

	_, err := q.GetRecordByBeatmapID(ctx, int64(beatmapID))
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("failed to look up beatmap %d: %w", beatmapID, err)
	}

	n, err := q.CountHistoryByBeatmapID(ctx, int64(beatmapID))
	if err != nil {
		return false, fmt.Errorf("failed to look up history for beatmap %d: %w", beatmapID, err)
	}
	return n > 0, nil
}

// AppendRecord adds rec after the last row and returns its position.
func (r *RecordRepository) AppendRecord(ctx context.Context, rec domain.Record) (int, error) {
	var position int64
	err := r.WithTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)

		var err error
		position, err = q.NextRecordPosition(ctx)
		if err != nil {
			return fmt.Errorf("failed to get next position: %w", err)
		}
		if err := q.InsertRecord(ctx, insertRecordParams(rec, position)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rec.BeatmapID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debug().Int("beatmap_id", rec.BeatmapID).Int64("position", position).Msg("record appended")
	return int(position), nil
}

// UpdateRecord overwrites the row holding rec.BeatmapID in place.
func (r *RecordRepository) UpdateRecord(ctx context.Context, rec domain.Record) error {
	n, err := r.q(ctx).UpdateRecord(ctx, updateRecordParams(rec))
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", rec.BeatmapID, err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", rec.BeatmapID, ErrNotFound)
	}
	return nil
}

// DeleteRecordAt removes the row at position and closes the gap.
func (r *RecordRepository) DeleteRecordAt(ctx context.Context, position int) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)

		n, err := q.DeleteRecordAt(ctx, int64(position))
		if err != nil {
			return fmt.Errorf("failed to delete record at %d: %w", position, err)
		}
		if n == 0 {
			return fmt.Errorf("record at %d: %w", position, ErrNotFound)
		}
		if err := q.ShiftRecordsAfter(ctx, int64(position)); err != nil {
			return fmt.Errorf("failed to shift records after %d: %w", position, err)
		}
		return nil
	})
}

// SortRecords rewrites Data positions in ranked-date order.
func (r *RecordRepository) SortRecords(ctx context.Context) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		records, err := r.ListRecords(ctx)
		if err != nil {
			return err
		}

		before := make(map[int]int, len(records))
		for _, rec := range records {
			before[rec.BeatmapID] = rec.Position
		}
		domain.SortRecords(records)

		q := r.q(ctx)
		moved := 0
		for _, rec := range records {
			if before[rec.BeatmapID] == rec.Position {
				continue
			}
			err := q.SetRecordPosition(ctx, db.SetRecordPositionParams{
				Position:  int64(rec.Position),
				BeatmapID: int64(rec.BeatmapID),
			})
			if err != nil {
				return fmt.Errorf("failed to reposition record %d: %w", rec.BeatmapID, err)
			}
			moved++
		}

		r.logger.Debug().Int("records", len(records)).Int("moved", moved).Msg("records sorted")
		return nil
	})
}

func (r *RecordRepository) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := r.q(ctx).ListHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = historyFromRow(row)
	}
	return entries, nil
}

// AppendHistory adds entry after the last History row. The stored entry,
// with its id and position, is returned.
func (r *RecordRepository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	err := r.WithTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)

		if entry.ID == "" {
			id, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
			entry.ID = id
		}

		position, err := q.NextHistoryPosition(ctx)
		if err != nil {
			return fmt.Errorf("failed to get next history position: %w", err)
		}
		entry.Position = int(position)

		if err := q.InsertHistoryEntry(ctx, insertHistoryParams(entry, position)); err != nil {
			return fmt.Errorf("failed to insert history entry %d: %w", entry.BeatmapID, err)
		}
		return nil
	})
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	return entry, nil
}

// SortHistory rewrites History positions, newest FC first.
func (r *RecordRepository) SortHistory(ctx context.Context) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		entries, err := r.ListHistory(ctx)
		if err != nil {
			return err
		}
		domain.SortHistory(entries)

		q := r.q(ctx)
		for _, e := range entries {
			err := q.SetHistoryPosition(ctx, db.SetHistoryPositionParams{
				Position: int64(e.Position),
				ID:       e.ID,
			})
			if err != nil {
				return fmt.Errorf("failed to reposition history entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (r *RecordRepository) GetMeta(ctx context.Context, key string) (string, error) {
	value, err := r.q(ctx).GetMeta(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

func (r *RecordRepository) SetMeta(ctx context.Context, key, value string) error {
	err := r.q(ctx).SetMeta(ctx, db.SetMetaParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}
