package domain

import (
	"sort"
	"time"
)

// SettleAfterDays separates fresh FCs (deleted) from ones worth archiving.
const SettleAfterDays = 30

type ActionKind int

const (
	ActionDelete ActionKind = iota
	ActionArchive
)

func (k ActionKind) String() string {
	if k == ActionArchive {
		return "archive"
	}
	return "delete"
}

type Action struct {
	Kind      ActionKind
	Position  int
	BeatmapID int
	Record    Record
}

type Plan struct {
	Delete  []Action
	Archive []Action
	Skipped int
}

func (p Plan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Archive) == 0
}

// Ordered returns every action by descending position, the order in which
// position-addressed rows can be removed without shifting pending ones.
func (p Plan) Ordered() []Action {
	out := make([]Action, 0, len(p.Delete)+len(p.Archive))
	out = append(out, p.Delete...)
	out = append(out, p.Archive...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position > out[j].Position
	})
	return out
}

// Reconcile re-classifies the stored best score of every row and routes the
// ones that now read as FC to deletion or archival.
func Reconcile(records []Record, now time.Time) Plan {
	var plan Plan
	for _, r := range records {
		if r.IsBlank() || r.IsError() || r.MaxCombo <= 0 {
			plan.Skipped++
			continue
		}

		// stored rows already hold mod-legal data
		synthetic := &Score{Rank: r.Rank, Combo: r.Combo}
		if !IsFullCombo(synthetic, r.MaxCombo) {
			continue
		}

		action := Action{Position: r.Position, BeatmapID: r.BeatmapID, Record: r}
		if DaysRanked(r.RankedAt, now) >= SettleAfterDays && r.ScoreDate != nil {
			action.Kind = ActionArchive
			plan.Archive = append(plan.Archive, action)
			continue
		}
		action.Kind = ActionDelete
		plan.Delete = append(plan.Delete, action)
	}
	return plan
}

// NewHistoryEntry converts a settled record into its History row.
func NewHistoryEntry(r Record, now time.Time) HistoryEntry {
	entry := HistoryEntry{
		BeatmapID:    r.BeatmapID,
		BeatmapsetID: r.BeatmapsetID,
		Link:         r.Link,
		Creator:      r.Creator,
		Stars:        r.Stars,
		Length:       r.Length,
		BPM:          r.BPM,
		CS:           r.CS,
		AR:           r.AR,
		OD:           r.OD,
		HP:           r.HP,
		MaxCombo:     r.MaxCombo,
		Status:       r.Status,
		RankedAt:     r.RankedAt,
		Player:       r.Player,
		Mods:         r.Mods,
		Combo:        r.Combo,
		Rank:         r.Rank,
		ScoreDate:    r.ScoreDate,
		ArchivedAt:   now,
	}
	if r.ScoreDate != nil && !r.RankedAt.IsZero() {
		days := DaysBetween(r.RankedAt, *r.ScoreDate)
		entry.DaysToFC = &days
	}
	return entry
}
