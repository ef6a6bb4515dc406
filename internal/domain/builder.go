package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	BeatmapURLFormat = "https://osu.ppy.sh/b/%d"
	UserURLFormat    = "https://osu.ppy.sh/u/%d"
)

func BeatmapURL(beatmapID int) string {
	return fmt.Sprintf(BeatmapURLFormat, beatmapID)
}

func UserURL(userID int) string {
	return fmt.Sprintf(UserURLFormat, userID)
}

// BuildRecord derives a Data row from beatmap metadata and its leaderboard.
// Link.URL is the tracking input and is left for the caller to fill.
func BuildRecord(b Beatmap, scores []Score, now time.Time) Record {
	best := SelectBestScore(scores, b.MaxCombo)

	rec := Record{
		BeatmapID:    b.BeatmapID,
		BeatmapsetID: b.BeatmapsetID,
		Link: Link{
			Label: fmt.Sprintf("%s - %s [%s]", b.Artist, b.Title, b.Version),
		},
		Creator:    Link{Label: b.Creator},
		Stars:      b.Stars,
		Length:     b.Length,
		BPM:        b.BPM,
		CS:         b.CS,
		AR:         b.AR,
		OD:         b.OD,
		HP:         b.HP,
		MaxCombo:   b.MaxCombo,
		Status:     b.Status,
		RankedAt:   b.RankedAt,
		DaysRanked: DaysRanked(b.RankedAt, now),
		Mods:       best.Mods,
		Combo:      best.Combo,
		Rank:       best.Rank,
		ScoreDate:  best.Date,
		PercentFC:  best.PercentFC,
		UpdatedAt:  now,
	}
	if b.CreatorID > 0 {
		rec.Creator.URL = UserURL(b.CreatorID)
	}
	if best.Player != "" {
		rec.Player = Link{Label: best.Player}
		if best.UserID > 0 {
			rec.Player.URL = UserURL(best.UserID)
		}
	}
	return rec
}

// ErrorRecord is the placeholder written when a beatmap could not be built.
func ErrorRecord(beatmapID int, msg string, now time.Time) Record {
	return Record{BeatmapID: beatmapID, Error: msg, UpdatedAt: now}
}

// IsBlank reports whether the row carries no data at all.
func (r Record) IsBlank() bool {
	return r.BeatmapID == 0 && r.Link == (Link{}) && r.Error == "" && r.MaxCombo == 0 && r.Combo == 0
}

func (r Record) IsError() bool {
	return r.Error != ""
}

// DaysRanked is the number of started days between rankedAt and now.
func DaysRanked(rankedAt, now time.Time) int {
	if rankedAt.IsZero() {
		return 0
	}
	d := now.Sub(rankedAt)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DaysBetween counts calendar days from a to b, both normalised to UTC dates.
func DaysBetween(a, b time.Time) int {
	da := utcDate(a)
	db := utcDate(b)
	return int(math.Round(db.Sub(da).Hours() / 24))
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
