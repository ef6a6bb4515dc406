package domain

// LeaderboardWindow is how many leading leaderboard entries are considered.
const LeaderboardWindow = 50

// SelectBestScore picks the score to display for a leaderboard ordered
// best-first. The earliest legal full combo wins outright; otherwise the
// legal score with the highest combo, ties going to the higher grade.
func SelectBestScore(scores []Score, maxCombo int) BestScore {
	if len(scores) > LeaderboardWindow {
		scores = scores[:LeaderboardWindow]
	}

	var best *Score
	fc := false
	for i := range scores {
		s := &scores[i]
		if !IsLegal(s.Mods) {
			continue
		}
		if IsFullCombo(s, maxCombo) {
			best = s
			fc = true
			break
		}
		if best == nil ||
			s.Combo > best.Combo ||
			(s.Combo == best.Combo && s.Rank.Value() > best.Rank.Value()) {
			best = s
		}
	}

	var out BestScore
	if best != nil {
		out = BestScore{
			UserID:    best.UserID,
			Player:    best.Username,
			Mods:      best.Mods,
			Combo:     best.Combo,
			Rank:      best.Rank,
			Date:      best.Date,
			FullCombo: fc,
		}
	}
	out.PercentFC = percentFC(out.Combo, maxCombo)
	return out
}

func percentFC(combo, maxCombo int) float64 {
	if maxCombo <= 0 {
		return 0
	}
	return float64(combo) / float64(maxCombo) * 100
}
