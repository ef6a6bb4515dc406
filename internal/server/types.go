package server

import (
	"time"
	"unfc-tracker/internal/domain"
)

type LinkResponse struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

type RecordResponse struct {
	Position     int          `json:"position"`
	BeatmapID    int          `json:"beatmap_id"`
	BeatmapsetID int          `json:"beatmapset_id,omitempty"`
	Beatmap      LinkResponse `json:"beatmap"`
	Creator      LinkResponse `json:"creator"`
	Stars        float64      `json:"stars"`
	Length       int          `json:"length"`
	BPM          float64      `json:"bpm"`
	CS           float64      `json:"cs"`
	AR           float64      `json:"ar"`
	OD           float64      `json:"od"`
	HP           float64      `json:"hp"`
	MaxCombo     int          `json:"max_combo"`
	Status       string       `json:"status"`
	RankedAt     *time.Time   `json:"ranked_at,omitempty"`
	DaysRanked   int          `json:"days_ranked"`
	Player       LinkResponse `json:"player"`
	Mods         string       `json:"mods"`
	Combo        int          `json:"combo"`
	Rank         string       `json:"rank,omitempty"`
	ScoreDate    *time.Time   `json:"score_date,omitempty"`
	PercentFC    float64      `json:"percent_fc"`
	Error        string       `json:"error,omitempty"`
}

type HistoryResponse struct {
	ID           string       `json:"id"`
	Position     int          `json:"position"`
	BeatmapID    int          `json:"beatmap_id"`
	BeatmapsetID int          `json:"beatmapset_id,omitempty"`
	Beatmap      LinkResponse `json:"beatmap"`
	Creator      LinkResponse `json:"creator"`
	Stars        float64      `json:"stars"`
	Length       int          `json:"length"`
	BPM          float64      `json:"bpm"`
	CS           float64      `json:"cs"`
	AR           float64      `json:"ar"`
	OD           float64      `json:"od"`
	HP           float64      `json:"hp"`
	MaxCombo     int          `json:"max_combo"`
	Status       string       `json:"status"`
	RankedAt     *time.Time   `json:"ranked_at,omitempty"`
	DaysToFC     *int         `json:"days_to_fc,omitempty"`
	Player       LinkResponse `json:"player"`
	Mods         string       `json:"mods"`
	Combo        int          `json:"combo"`
	Rank         string       `json:"rank,omitempty"`
	ScoreDate    *time.Time   `json:"score_date,omitempty"`
	ArchivedAt   time.Time    `json:"archived_at"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type AddRequest struct {
	Link string `json:"link"`
}

type ScheduleRequest struct {
	Enabled bool `json:"enabled"`
}

func toLinkResponse(l domain.Link) LinkResponse {
	return LinkResponse{Label: l.Label, URL: l.URL}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toRecordResponse(r domain.Record) RecordResponse {
	return RecordResponse{
		Position:     r.Position,
		BeatmapID:    r.BeatmapID,
		BeatmapsetID: r.BeatmapsetID,
		Beatmap:      toLinkResponse(r.Link),
		Creator:      toLinkResponse(r.Creator),
		Stars:        r.Stars,
		Length:       r.Length,
		BPM:          r.BPM,
		CS:           r.CS,
		AR:           r.AR,
		OD:           r.OD,
		HP:           r.HP,
		MaxCombo:     r.MaxCombo,
		Status:       r.Status.String(),
		RankedAt:     optionalTime(r.RankedAt),
		DaysRanked:   r.DaysRanked,
		Player:       toLinkResponse(r.Player),
		Mods:         r.Mods.String(),
		Combo:        r.Combo,
		Rank:         string(r.Rank),
		ScoreDate:    r.ScoreDate,
		PercentFC:    r.PercentFC,
		Error:        r.Error,
	}
}

func toHistoryResponse(e domain.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:           e.ID,
		Position:     e.Position,
		BeatmapID:    e.BeatmapID,
		BeatmapsetID: e.BeatmapsetID,
		Beatmap:      toLinkResponse(e.Link),
		Creator:      toLinkResponse(e.Creator),
		Stars:        e.Stars,
		Length:       e.Length,
		BPM:          e.BPM,
		CS:           e.CS,
		AR:           e.AR,
		OD:           e.OD,
		HP:           e.HP,
		MaxCombo:     e.MaxCombo,
		Status:       e.Status.String(),
		RankedAt:     optionalTime(e.RankedAt),
		DaysToFC:     e.DaysToFC,
		Player:       toLinkResponse(e.Player),
		Mods:         e.Mods.String(),
		Combo:        e.Combo,
		Rank:         string(e.Rank),
		ScoreDate:    e.ScoreDate,
		ArchivedAt:   e.ArchivedAt,
	}
}
