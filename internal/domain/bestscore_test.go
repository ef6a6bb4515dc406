package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBestScore_Empty(t *testing.T) {
	for _, scores := range [][]Score{
		nil,
		{},
		{{Username: "cheater", Rank: RankX, Combo: 500, Mods: ModEasy}},
	} {
		got := SelectBestScore(scores, 500)
		assert.Equal(t, BestScore{}, got)
		assert.Zero(t, got.PercentFC)
		assert.Empty(t, got.Player)
		assert.Empty(t, got.Rank)
		assert.Nil(t, got.Date)
	}
}

func TestSelectBestScore_FirstFullComboWins(t *testing.T) {
	date := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	scores := []Score{
		{UserID: 1, Username: "top", Rank: RankA, Combo: 900},
		{UserID: 2, Username: "fc", Rank: RankS, Combo: 999, Date: &date},
		{UserID: 3, Username: "later", Rank: RankX, Combo: 1000},
	}

	got := SelectBestScore(scores, 1000)
	assert.Equal(t, "fc", got.Player)
	assert.Equal(t, 999, got.Combo)
	assert.True(t, got.FullCombo)
	assert.InDelta(t, 99.9, got.PercentFC, 1e-9)
	require.NotNil(t, got.Date)
	assert.Equal(t, date, *got.Date)
}

func TestSelectBestScore_HigherComboReplaces(t *testing.T) {
	scores := []Score{
		{Username: "a", Rank: RankA, Combo: 400},
		{Username: "b", Rank: RankB, Combo: 600},
		{Username: "c", Rank: RankS, Combo: 500},
	}

	got := SelectBestScore(scores, 1000)
	assert.Equal(t, "b", got.Player)
	assert.False(t, got.FullCombo)
	assert.InDelta(t, 60.0, got.PercentFC, 1e-9)
}

func TestSelectBestScore_TieBreakOnRank(t *testing.T) {
	lowFirst := []Score{
		{Username: "low", Rank: RankB, Combo: 700},
		{Username: "high", Rank: RankA, Combo: 700},
	}
	highFirst := []Score{
		{Username: "high", Rank: RankA, Combo: 700},
		{Username: "low", Rank: RankB, Combo: 700},
	}

	assert.Equal(t, "high", SelectBestScore(lowFirst, 1000).Player)
	assert.Equal(t, "high", SelectBestScore(highFirst, 1000).Player)
}

func TestSelectBestScore_EqualComboAndRankKeepsEarlier(t *testing.T) {
	scores := []Score{
		{Username: "first", Rank: RankS, Combo: 800},
		{Username: "second", Rank: RankSH, Combo: 800},
	}
	assert.Equal(t, "first", SelectBestScore(scores, 1000).Player)
}

func TestSelectBestScore_SkipsIllegalMods(t *testing.T) {
	scores := []Score{
		{Username: "easy", Rank: RankX, Combo: 1000, Mods: ModEasy},
		{Username: "halftime", Rank: RankA, Combo: 990, Mods: ModHalfTime},
		{Username: "legal", Rank: RankA, Combo: 950, Mods: ModHidden},
	}

	got := SelectBestScore(scores, 1000)
	assert.Equal(t, "legal", got.Player)
	assert.Equal(t, ModHidden, got.Mods)
}

func TestSelectBestScore_Window(t *testing.T) {
	scores := make([]Score, 0, LeaderboardWindow+1)
	for i := 0; i < LeaderboardWindow; i++ {
		scores = append(scores, Score{Username: "filler", Rank: RankA, Combo: 100})
	}
	scores = append(scores, Score{Username: "outside", Rank: RankX, Combo: 1000})

	got := SelectBestScore(scores, 1000)
	assert.Equal(t, "filler", got.Player)
	assert.False(t, got.FullCombo)
}

func TestSelectBestScore_ZeroMaxCombo(t *testing.T) {
	got := SelectBestScore([]Score{{Username: "x", Rank: RankA, Combo: 10}}, 0)
	assert.Zero(t, got.PercentFC)
}
