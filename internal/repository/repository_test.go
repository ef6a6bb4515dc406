package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"unfc-tracker/internal/database"
	"unfc-tracker/internal/db"
	"unfc-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (*RecordRepository, *LeaseRepository) {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "tracker.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	queries := db.New(sqlDB)
	return NewRecordRepository(sqlDB, queries, zerolog.Nop()), NewLeaseRepository(queries, zerolog.Nop())
}

func record(id int, rankedAt time.Time) domain.Record {
	return domain.Record{
		BeatmapID: id,
		Link:      domain.Link{Label: "map", URL: domain.BeatmapURL(id)},
		MaxCombo:  1000,
		Combo:     500,
		Rank:      domain.RankA,
		RankedAt:  rankedAt,
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func beatmapIDs(records []domain.Record) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.BeatmapID
	}
	return ids
}

func TestRecordRepository_AppendAndGet(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	scoreDate := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record(129891, time.Date(2012, 2, 18, 3, 44, 35, 0, time.UTC))
	rec.ScoreDate = &scoreDate
	rec.Mods = domain.ModHidden | domain.ModHardRock
	rec.Player = domain.Link{Label: "Rafis", URL: domain.UserURL(2558286)}

	pos, err := repo.AppendRecord(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = repo.AppendRecord(ctx, domain.ErrorRecord(42, "beatmap not found", rec.UpdatedAt))
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	got, err := repo.GetRecordAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 129891, got.BeatmapID)
	assert.True(t, got.RankedAt.Equal(rec.RankedAt))
	require.NotNil(t, got.ScoreDate)
	assert.True(t, got.ScoreDate.Equal(scoreDate))
	assert.Equal(t, rec.Mods, got.Mods)
	assert.Equal(t, rec.Player, got.Player)
	assert.Equal(t, domain.RankA, got.Rank)

	errRow, err := repo.GetRecordAt(ctx, 2)
	require.NoError(t, err)
	assert.True(t, errRow.IsError())
	assert.True(t, errRow.RankedAt.IsZero())
	assert.Nil(t, errRow.ScoreDate)

	_, err = repo.GetRecordAt(ctx, 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordRepository_DeleteShiftsPositions(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	ranked := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []int{10, 20, 30, 40} {
		_, err := repo.AppendRecord(ctx, record(id, ranked))
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteRecordAt(ctx, 2))

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30, 40}, beatmapIDs(records))
	for i, r := range records {
		assert.Equal(t, i+1, r.Position)
	}

	require.ErrorIs(t, repo.DeleteRecordAt(ctx, 9), ErrNotFound)

	pos, err := repo.AppendRecord(ctx, record(50, ranked))
	require.NoError(t, err)
	assert.Equal(t, 4, pos)
}

func TestRecordRepository_Update(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	rec := record(7, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := repo.AppendRecord(ctx, rec)
	require.NoError(t, err)

	rec.Combo = 999
	rec.PercentFC = 99.9
	require.NoError(t, repo.UpdateRecord(ctx, rec))

	got, err := repo.GetRecordAt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 999, got.Combo)
	assert.InDelta(t, 99.9, got.PercentFC, 1e-9)

	require.ErrorIs(t, repo.UpdateRecord(ctx, record(8, rec.RankedAt)), ErrNotFound)
}

func TestRecordRepository_SortRecords(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	jan := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []domain.Record{record(3, mar), record(2, jan), domain.ErrorRecord(9, "oops", jan), record(1, mar)} {
		_, err := repo.AppendRecord(ctx, r)
		require.NoError(t, err)
	}

	require.NoError(t, repo.SortRecords(ctx))

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3, 9}, beatmapIDs(records))
}

func TestRecordRepository_History(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	older := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	days := 30

	first, err := repo.AppendHistory(ctx, domain.HistoryEntry{BeatmapID: 1, ScoreDate: &older, DaysToFC: &days})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, first.Position)

	_, err = repo.AppendHistory(ctx, domain.HistoryEntry{BeatmapID: 2, ScoreDate: &newer})
	require.NoError(t, err)

	_, err = repo.AppendHistory(ctx, domain.HistoryEntry{BeatmapID: 1})
	require.Error(t, err, "beatmap ids are unique in history")

	require.NoError(t, repo.SortHistory(ctx))

	entries, err := repo.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].BeatmapID)
	assert.Nil(t, entries[0].DaysToFC)
	assert.Equal(t, 1, entries[1].BeatmapID)
	require.NotNil(t, entries[1].DaysToFC)
	assert.Equal(t, 30, *entries[1].DaysToFC)
}

func TestRecordRepository_Tracked(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AppendRecord(ctx, record(1, time.Now()))
	require.NoError(t, err)
	_, err = repo.AppendHistory(ctx, domain.HistoryEntry{BeatmapID: 2})
	require.NoError(t, err)

	for id, want := range map[int]bool{1: true, 2: true, 3: false} {
		got, err := repo.Tracked(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "beatmap %d", id)
	}
}

func TestRecordRepository_WithTxRollsBack(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	ranked := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.AppendRecord(ctx, record(1, ranked))
	require.NoError(t, err)

	err = repo.WithTx(ctx, func(ctx context.Context) error {
		if _, err := repo.AppendRecord(ctx, record(2, ranked)); err != nil {
			return err
		}
		if err := repo.DeleteRecordAt(ctx, 1); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, beatmapIDs(records))
}

func TestRecordRepository_Meta(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.GetMeta(ctx, MetaLastUpdated)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetMeta(ctx, MetaLastUpdated, "2024-05-01"))
	require.NoError(t, repo.SetMeta(ctx, MetaLastUpdated, "2024-05-02"))

	value, err := repo.GetMeta(ctx, MetaLastUpdated)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", value)
}

func TestLeaseRepository(t *testing.T) {
	_, leases := newTestRepos(t)
	ctx := context.Background()

	holder, err := leases.Acquire(ctx, "tracker", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, holder)

	_, err = leases.Acquire(ctx, "tracker", time.Minute)
	require.ErrorIs(t, err, ErrLeaseHeld)

	_, err = leases.Acquire(ctx, "other", time.Minute)
	require.NoError(t, err, "leases are independent by name")

	lease, err := leases.Get(ctx, "tracker")
	require.NoError(t, err)
	assert.Equal(t, holder, lease.Holder)
	assert.True(t, lease.ExpiresAt.After(lease.AcquiredAt))

	require.ErrorIs(t, leases.Release(ctx, "tracker", "someone-else"), ErrNotFound)
	require.NoError(t, leases.Release(ctx, "tracker", holder))

	_, err = leases.Get(ctx, "tracker")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = leases.Acquire(ctx, "tracker", time.Minute)
	require.NoError(t, err)
}

func TestLeaseRepository_ExpiredLeaseIsTakenOver(t *testing.T) {
	_, leases := newTestRepos(t)
	ctx := context.Background()

	stale, err := leases.Acquire(ctx, "tracker", -time.Second)
	require.NoError(t, err)

	fresh, err := leases.Acquire(ctx, "tracker", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, stale, fresh)

	require.ErrorIs(t, leases.Release(ctx, "tracker", stale), ErrNotFound)
}

func TestLeaseRepository_Renew(t *testing.T) {
	_, leases := newTestRepos(t)
	ctx := context.Background()

	holder, err := leases.Acquire(ctx, "tracker", -time.Second)
	require.NoError(t, err)

	require.NoError(t, leases.Renew(ctx, "tracker", holder, time.Minute))
	_, err = leases.Acquire(ctx, "tracker", time.Minute)
	require.ErrorIs(t, err, ErrLeaseHeld, "a renewed lease is not taken over")

	lease, err := leases.Get(ctx, "tracker")
	require.NoError(t, err)
	assert.Equal(t, holder, lease.Holder)
	assert.True(t, lease.ExpiresAt.After(time.Now()))

	require.ErrorIs(t, leases.Renew(ctx, "tracker", "someone-else", time.Minute), ErrLeaseLost)
}

func TestLeaseRepository_RenewAfterTakeover(t *testing.T) {
	_, leases := newTestRepos(t)
	ctx := context.Background()

	stale, err := leases.Acquire(ctx, "tracker", -time.Second)
	require.NoError(t, err)
	_, err = leases.Acquire(ctx, "tracker", time.Minute)
	require.NoError(t, err)

	require.ErrorIs(t, leases.Renew(ctx, "tracker", stale, time.Minute), ErrLeaseLost)
}
