package domain

import "strings"

// Rank is a letter grade as reported by the API ("XH", "X", "SH", "S", "A", ...).
type Rank string

const (
	RankXH Rank = "XH"
	RankX  Rank = "X"
	RankSH Rank = "SH"
	RankS  Rank = "S"
	RankA  Rank = "A"
	RankB  Rank = "B"
	RankC  Rank = "C"
	RankD  Rank = "D"
	RankF  Rank = "F"
)

func ParseRank(s string) Rank {
	return Rank(strings.ToUpper(strings.TrimSpace(s)))
}

// Value orders grades: D < C < B < A < S = SH < X = XH. Failed and unknown
// grades are 0.
func (r Rank) Value() int {
	switch r {
	case RankD:
		return 1
	case RankC:
		return 2
	case RankB:
		return 3
	case RankA:
		return 4
	case RankS, RankSH:
		return 5
	case RankX, RankXH:
		return 6
	}
	return 0
}

// FullComboGrade reports whether the grade can belong to a full combo. A and
// below always contain a miss.
func (r Rank) FullComboGrade() bool {
	switch r {
	case RankXH, RankX, RankSH, RankS:
		return true
	}
	return false
}

// IsLegal reports whether none of the ForbiddenMods are enabled.
func IsLegal(m Mods) bool {
	return m&ForbiddenMods == 0
}

// IsFullCombo decides whether score counts as a full combo on a beatmap with
// the given max combo.
//
// The grade check comes first and is unconditional. Scores with forbidden
// mods are rejected. SD and PF end the play on any break, so a legal pass
// with either counts regardless of combo. Otherwise combo must reach
// maxCombo-1: a single missing combo point cannot be told apart from a break
// on the very first object, which is almost always a circle that cannot break
// combo on its own. Such maps need manual review.
func IsFullCombo(score *Score, maxCombo int) bool {
	if score == nil {
		return false
	}
	if !score.Rank.FullComboGrade() {
		return false
	}
	if !IsLegal(score.Mods) {
		return false
	}
	if score.Mods.Has(MaxComboMods) {
		return true
	}
	return score.Combo >= maxCombo-1
}
