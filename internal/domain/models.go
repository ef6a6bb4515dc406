package domain

import (
	"time"
)

type Beatmap struct {
	BeatmapID    int
	BeatmapsetID int
	Artist       string
	Title        string
	Version      string
	Creator      string
	CreatorID    int
	Stars        float64
	CS           float64
	AR           float64
	OD           float64
	HP           float64
	Length       int // seconds
	BPM          float64
	MaxCombo     int
	Status       ApprovalStatus
	Mode         int
	RankedAt     time.Time // UTC, zero when unranked
}

type Score struct {
	UserID   int
	Username string
	Combo    int
	Rank     Rank
	Mods     Mods
	Date     *time.Time // nil when the source has no date for the play
}

// Link is a display label paired with its target; rendering is left to the
// presentation layer.
type Link struct {
	Label string
	URL   string
}

// BestScore is the representative score chosen for a leaderboard.
type BestScore struct {
	UserID    int
	Player    string
	Mods      Mods
	Combo     int
	Rank      Rank
	Date      *time.Time
	PercentFC float64
	FullCombo bool
}

// Record is one row of the Data table.
type Record struct {
	Position     int
	BeatmapID    int
	BeatmapsetID int
	Link         Link
	Creator      Link
	Stars        float64
	Length       int
	BPM          float64
	CS           float64
	AR           float64
	OD           float64
	HP           float64
	MaxCombo     int
	Status       ApprovalStatus
	RankedAt     time.Time
	DaysRanked   int
	Player       Link
	Mods         Mods
	Combo        int
	Rank         Rank
	ScoreDate    *time.Time
	PercentFC    float64
	Error        string
	UpdatedAt    time.Time
}

// HistoryEntry is one row of the History table.
type HistoryEntry struct {
	ID           string // nanoid
	Position     int
	BeatmapID    int
	BeatmapsetID int
	Link         Link
	Creator      Link
	Stars        float64
	Length       int
	BPM          float64
	CS           float64
	AR           float64
	OD           float64
	HP           float64
	MaxCombo     int
	Status       ApprovalStatus
	RankedAt     time.Time
	DaysToFC     *int
	Player       Link
	Mods         Mods
	Combo        int
	Rank         Rank
	ScoreDate    *time.Time
	ArchivedAt   time.Time
}

type ApprovalStatus int

const (
	StatusGraveyard ApprovalStatus = -2
	StatusWIP       ApprovalStatus = -1
	StatusPending   ApprovalStatus = 0
	StatusRanked    ApprovalStatus = 1
	StatusApproved  ApprovalStatus = 2
	StatusQualified ApprovalStatus = 3
	StatusLoved     ApprovalStatus = 4
)

func (s ApprovalStatus) String() string {
	switch s {
	case StatusGraveyard:
		return "Graveyard"
	case StatusWIP:
		return "WIP"
	case StatusPending:
		return "Pending"
	case StatusRanked:
		return "Ranked"
	case StatusApproved:
		return "Approved"
	case StatusQualified:
		return "Qualified"
	case StatusLoved:
		return "Loved"
	}
	return "Unknown"
}

// Tracked reports whether beatmaps with this status carry a ranked leaderboard.
func (s ApprovalStatus) Tracked() bool {
	return s == StatusRanked || s == StatusApproved
}

// Lease is the named row lock held by a mutating run.
type Lease struct {
	Name       string    `json:"name"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
