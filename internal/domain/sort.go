package domain

import (
	"sort"
	"time"
)

// SortRecords orders Data rows by ranked date ascending, then beatmap id, and
// renumbers positions from 1. Rows without a ranked date (error placeholders)
// go last.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if c := compareDates(a.RankedAt, b.RankedAt); c != 0 {
			return c < 0
		}
		return a.BeatmapID < b.BeatmapID
	})
	for i := range records {
		records[i].Position = i + 1
	}
}

// SortHistory orders History rows by score date descending, then beatmap id,
// and renumbers positions from 1. Undated entries go last.
func SortHistory(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.ScoreDate == nil && b.ScoreDate != nil:
			return false
		case a.ScoreDate != nil && b.ScoreDate == nil:
			return true
		case a.ScoreDate != nil && b.ScoreDate != nil && !a.ScoreDate.Equal(*b.ScoreDate):
			return a.ScoreDate.After(*b.ScoreDate)
		}
		return a.BeatmapID < b.BeatmapID
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
}

// compareDates sorts zero times after everything else.
func compareDates(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return a.Compare(b)
}
