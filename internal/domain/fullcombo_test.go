package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFullCombo(t *testing.T) {
	const maxCombo = 1000

	tests := []struct {
		name  string
		score *Score
		want  bool
	}{
		{name: "nil score", score: nil, want: false},
		{name: "max combo S", score: &Score{Rank: RankS, Combo: 1000}, want: true},
		{name: "max combo XH", score: &Score{Rank: RankXH, Combo: 1000, Mods: ModHidden}, want: true},
		{name: "one below max", score: &Score{Rank: RankSH, Combo: 999}, want: true},
		{name: "two below max", score: &Score{Rank: RankS, Combo: 998}, want: false},
		{name: "A rank at max combo", score: &Score{Rank: RankA, Combo: 1000}, want: false},
		{name: "unknown rank", score: &Score{Rank: "", Combo: 1000}, want: false},
		{name: "easy at max combo", score: &Score{Rank: RankX, Combo: 1000, Mods: ModEasy}, want: false},
		{name: "half time at max combo", score: &Score{Rank: RankS, Combo: 1000, Mods: ModHalfTime}, want: false},
		{name: "spun out at max combo", score: &Score{Rank: RankS, Combo: 1000, Mods: ModSpunOut}, want: false},
		{name: "touch device at max combo", score: &Score{Rank: RankS, Combo: 1000, Mods: ModTouchDevice}, want: false},
		{name: "sudden death low combo", score: &Score{Rank: RankS, Combo: 10, Mods: ModSuddenDeath}, want: true},
		{name: "perfect low combo", score: &Score{Rank: RankSH, Combo: 10, Mods: ModPerfect | ModSuddenDeath | ModHidden}, want: true},
		{name: "sudden death with forbidden mod", score: &Score{Rank: RankS, Combo: 1000, Mods: ModSuddenDeath | ModEasy}, want: false},
		{name: "sudden death with A rank", score: &Score{Rank: RankA, Combo: 1000, Mods: ModSuddenDeath}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFullCombo(tt.score, maxCombo))
		})
	}
}

func TestIsFullCombo_NonQualifyingRanks(t *testing.T) {
	for _, rank := range []Rank{RankA, RankB, RankC, RankD, RankF, "?"} {
		for _, mods := range []Mods{0, ModHidden, ModSuddenDeath, ModPerfect | ModSuddenDeath} {
			for _, combo := range []int{0, 499, 500, 501} {
				s := &Score{Rank: rank, Mods: mods, Combo: combo}
				assert.False(t, IsFullCombo(s, 500), "rank %s mods %s combo %d", rank, mods, combo)
			}
		}
	}
}

func TestIsFullCombo_ForbiddenModsAtMaxCombo(t *testing.T) {
	for _, forbidden := range []Mods{ModEasy, ModHalfTime, ModSpunOut, ModTouchDevice} {
		for _, extra := range []Mods{0, ModHidden, ModSuddenDeath, ModDoubleTime} {
			s := &Score{Rank: RankX, Mods: forbidden | extra, Combo: 700}
			assert.False(t, IsFullCombo(s, 700), "mods %s", s.Mods)
		}
	}
}

func TestIsFullCombo_ComboBoundary(t *testing.T) {
	for _, maxCombo := range []int{2, 3, 100, 4321} {
		assert.True(t, IsFullCombo(&Score{Rank: RankS, Combo: maxCombo - 1}, maxCombo), "max %d", maxCombo)
		assert.False(t, IsFullCombo(&Score{Rank: RankS, Combo: maxCombo - 2}, maxCombo), "max %d", maxCombo)
	}
}

func TestRank_Value(t *testing.T) {
	assert.Less(t, RankD.Value(), RankC.Value())
	assert.Less(t, RankC.Value(), RankB.Value())
	assert.Less(t, RankB.Value(), RankA.Value())
	assert.Less(t, RankA.Value(), RankS.Value())
	assert.Equal(t, RankS.Value(), RankSH.Value())
	assert.Less(t, RankSH.Value(), RankX.Value())
	assert.Equal(t, RankX.Value(), RankXH.Value())
	assert.Zero(t, RankF.Value())
	assert.Equal(t, RankSH, ParseRank(" sh "))
}
