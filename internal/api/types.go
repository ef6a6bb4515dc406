package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unfc-tracker/internal/domain"
)

var ErrEmptyResponse = errors.New("empty response")

// The v1 API encodes every number as a string and every date as UTC
// "2006-01-02 15:04:05".

type BeatmapResponse struct {
	BeatmapID        string `json:"beatmap_id"`
	BeatmapsetID     string `json:"beatmapset_id"`
	Approved         string `json:"approved"`
	ApprovedDate     string `json:"approved_date"`
	Artist           string `json:"artist"`
	Title            string `json:"title"`
	Version          string `json:"version"`
	Creator          string `json:"creator"`
	CreatorID        string `json:"creator_id"`
	DifficultyRating string `json:"difficultyrating"`
	DiffSize         string `json:"diff_size"`
	DiffApproach     string `json:"diff_approach"`
	DiffOverall      string `json:"diff_overall"`
	DiffDrain        string `json:"diff_drain"`
	TotalLength      string `json:"total_length"`
	BPM              string `json:"bpm"`
	MaxCombo         string `json:"max_combo"`
	Mode             string `json:"mode"`
}

type ScoreResponse struct {
	ScoreID     string `json:"score_id"`
	Score       string `json:"score"`
	Username    string `json:"username"`
	MaxCombo    string `json:"maxcombo"`
	CountMiss   string `json:"countmiss"`
	Perfect     string `json:"perfect"`
	EnabledMods string `json:"enabled_mods"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Rank        string `json:"rank"`
	PP          string `json:"pp"`
}

// ParseBeatmaps decodes a get_beatmaps body. An empty list is an error since
// every caller asked for something that should exist.
func ParseBeatmaps(body []byte) ([]domain.Beatmap, error) {
	var raw []BeatmapResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode beatmaps: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	out := make([]domain.Beatmap, 0, len(raw))
	for _, r := range raw {
		b, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ParseScores decodes a get_scores body. An empty leaderboard is valid.
func ParseScores(body []byte) ([]domain.Score, error) {
	var raw []ScoreResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}

	out := make([]domain.Score, 0, len(raw))
	for _, r := range raw {
		s, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r BeatmapResponse) toDomain() (domain.Beatmap, error) {
	p := &fieldParser{}
	b := domain.Beatmap{
		BeatmapID:    p.int("beatmap_id", r.BeatmapID),
		BeatmapsetID: p.int("beatmapset_id", r.BeatmapsetID),
		Artist:       r.Artist,
		Title:        r.Title,
		Version:      r.Version,
		Creator:      r.Creator,
		CreatorID:    p.int("creator_id", r.CreatorID),
		Stars:        p.float("difficultyrating", r.DifficultyRating),
		CS:           p.float("diff_size", r.DiffSize),
		AR:           p.float("diff_approach", r.DiffApproach),
		OD:           p.float("diff_overall", r.DiffOverall),
		HP:           p.float("diff_drain", r.DiffDrain),
		Length:       p.int("total_length", r.TotalLength),
		BPM:          p.float("bpm", r.BPM),
		MaxCombo:     p.int("max_combo", r.MaxCombo),
		Status:       domain.ApprovalStatus(p.int("approved", r.Approved)),
		Mode:         p.int("mode", r.Mode),
	}
	if t := p.date("approved_date", r.ApprovedDate); t != nil {
		b.RankedAt = *t
	}
	if p.err != nil {
		return domain.Beatmap{}, p.err
	}
	if b.BeatmapID <= 0 {
		return domain.Beatmap{}, fmt.Errorf("beatmap without id")
	}
	return b, nil
}

func (r ScoreResponse) toDomain() (domain.Score, error) {
	p := &fieldParser{}
	s := domain.Score{
		UserID:   p.int("user_id", r.UserID),
		Username: r.Username,
		Combo:    p.int("maxcombo", r.MaxCombo),
		Rank:     domain.ParseRank(r.Rank),
		Mods:     domain.Mods(p.int("enabled_mods", r.EnabledMods)),
		Date:     p.date("date", r.Date),
	}
	if p.err != nil {
		return domain.Score{}, p.err
	}
	return s, nil
}

// fieldParser keeps the first conversion error so a whole object can be
// converted before checking.
type fieldParser struct {
	err error
}

func (p *fieldParser) int(field, v string) int {
	v = strings.TrimSpace(v)
	if v == "" || p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
	}
	return n
}

func (p *fieldParser) float(field, v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" || p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
	}
	return f
}

// date is lenient: sources without a usable date yield nil.
func (p *fieldParser) date(field, v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.ParseInLocation(v1DateLayout, v, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
