package repository

import (
	"database/sql"
	"time"
	"unfc-tracker/internal/db"
	"unfc-tracker/internal/domain"
)

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func ptrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return toNullTime(*t)
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func ptrFromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func recordFromRow(row db.DataRecord) domain.Record {
	return domain.Record{
		Position:     int(row.Position),
		BeatmapID:    int(row.BeatmapID),
		BeatmapsetID: int(row.BeatmapsetID),
		Link:         domain.Link{Label: row.LinkLabel, URL: row.LinkUrl},
		Creator:      domain.Link{Label: row.CreatorName, URL: row.CreatorUrl},
		Stars:        row.Stars,
		Length:       int(row.LengthSeconds),
		BPM:          row.Bpm,
		CS:           row.Cs,
		AR:           row.Ar,
		OD:           row.Od,
		HP:           row.Hp,
		MaxCombo:     int(row.MaxCombo),
		Status:       domain.ApprovalStatus(row.Status),
		RankedAt:     fromNullTime(row.RankedAt),
		DaysRanked:   int(row.DaysRanked),
		Player:       domain.Link{Label: row.PlayerName, URL: row.PlayerUrl},
		Mods:         domain.Mods(row.Mods),
		Combo:        int(row.Combo),
		Rank:         domain.ParseRank(row.Rank),
		ScoreDate:    ptrFromNullTime(row.ScoreDate),
		PercentFC:    row.PercentFc,
		Error:        row.Error,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func insertRecordParams(r domain.Record, position int64) db.InsertRecordParams {
	return db.InsertRecordParams{
		BeatmapID:     int64(r.BeatmapID),
		Position:      position,
		BeatmapsetID:  int64(r.BeatmapsetID),
		LinkLabel:     r.Link.Label,
		LinkUrl:       r.Link.URL,
		CreatorName:   r.Creator.Label,
		CreatorUrl:    r.Creator.URL,
		Stars:         r.Stars,
		LengthSeconds: int64(r.Length),
		Bpm:           r.BPM,
		Cs:            r.CS,
		Ar:            r.AR,
		Od:            r.OD,
		Hp:            r.HP,
		MaxCombo:      int64(r.MaxCombo),
		Status:        int64(r.Status),
		RankedAt:      toNullTime(r.RankedAt),
		DaysRanked:    int64(r.DaysRanked),
		PlayerName:    r.Player.Label,
		PlayerUrl:     r.Player.URL,
		Mods:          int64(r.Mods),
		Combo:         int64(r.Combo),
		Rank:          string(r.Rank),
		ScoreDate:     ptrToNullTime(r.ScoreDate),
		PercentFc:     r.PercentFC,
		Error:         r.Error,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func updateRecordParams(r domain.Record) db.UpdateRecordParams {
	return db.UpdateRecordParams{
		BeatmapsetID:  int64(r.BeatmapsetID),
		LinkLabel:     r.Link.Label,
		LinkUrl:       r.Link.URL,
		CreatorName:   r.Creator.Label,
		CreatorUrl:    r.Creator.URL,
		Stars:         r.Stars,
		LengthSeconds: int64(r.Length),
		Bpm:           r.BPM,
		Cs:            r.CS,
		Ar:            r.AR,
		Od:            r.OD,
		Hp:            r.HP,
		MaxCombo:      int64(r.MaxCombo),
		Status:        int64(r.Status),
		RankedAt:      toNullTime(r.RankedAt),
		DaysRanked:    int64(r.DaysRanked),
		PlayerName:    r.Player.Label,
		PlayerUrl:     r.Player.URL,
		Mods:          int64(r.Mods),
		Combo:         int64(r.Combo),
		Rank:          string(r.Rank),
		ScoreDate:     ptrToNullTime(r.ScoreDate),
		PercentFc:     r.PercentFC,
		Error:         r.Error,
		UpdatedAt:     r.UpdatedAt.UTC(),
		BeatmapID:     int64(r.BeatmapID),
	}
}

func historyFromRow(row db.HistoryEntry) domain.HistoryEntry {
	e := domain.HistoryEntry{
		ID:           row.ID,
		Position:     int(row.Position),
		BeatmapID:    int(row.BeatmapID),
		BeatmapsetID: int(row.BeatmapsetID),
		Link:         domain.Link{Label: row.LinkLabel, URL: row.LinkUrl},
		Creator:      domain.Link{Label: row.CreatorName, URL: row.CreatorUrl},
		Stars:        row.Stars,
		Length:       int(row.LengthSeconds),
		BPM:          row.Bpm,
		CS:           row.Cs,
		AR:           row.Ar,
		OD:           row.Od,
		HP:           row.Hp,
		MaxCombo:     int(row.MaxCombo),
		Status:       domain.ApprovalStatus(row.Status),
		RankedAt:     fromNullTime(row.RankedAt),
		Player:       domain.Link{Label: row.PlayerName, URL: row.PlayerUrl},
		Mods:         domain.Mods(row.Mods),
		Combo:        int(row.Combo),
		Rank:         domain.ParseRank(row.Rank),
		ScoreDate:    ptrFromNullTime(row.ScoreDate),
		ArchivedAt:   row.ArchivedAt.UTC(),
	}
	if row.DaysToFc.Valid {
		days := int(row.DaysToFc.Int64)
		e.DaysToFC = &days
	}
	return e
}

func insertHistoryParams(e domain.HistoryEntry, position int64) db.InsertHistoryEntryParams {
	p := db.InsertHistoryEntryParams{
		ID:            e.ID,
		BeatmapID:     int64(e.BeatmapID),
		Position:      position,
		BeatmapsetID:  int64(e.BeatmapsetID),
		LinkLabel:     e.Link.Label,
		LinkUrl:       e.Link.URL,
		CreatorName:   e.Creator.Label,
		CreatorUrl:    e.Creator.URL,
		Stars:         e.Stars,
		LengthSeconds: int64(e.Length),
		Bpm:           e.BPM,
		Cs:            e.CS,
		Ar:            e.AR,
		Od:            e.OD,
		Hp:            e.HP,
		MaxCombo:      int64(e.MaxCombo),
		Status:        int64(e.Status),
		RankedAt:      toNullTime(e.RankedAt),
		PlayerName:    e.Player.Label,
		PlayerUrl:     e.Player.URL,
		Mods:          int64(e.Mods),
		Combo:         int64(e.Combo),
		Rank:          string(e.Rank),
		ScoreDate:     ptrToNullTime(e.ScoreDate),
		ArchivedAt:    e.ArchivedAt.UTC(),
	}
	if e.DaysToFC != nil {
		p.DaysToFc = sql.NullInt64{Int64: int64(*e.DaysToFC), Valid: true}
	}
	return p
}
