package quiz

import (
	"math"
	"sort"
)

// CalculateScore returns the points awarded for one answer.
// Incorrect answers score zero. Correct answers earn the base points plus a
// speed bonus that decays linearly to zero as the response time approaches the
// round timer.
func CalculateScore(settings Settings, isCorrect bool, responseTimeMs int64) int {
	if !isCorrect {
		return 0
	}

	base := float64(settings.PointsPerCorrectAnswer)
	maxBonus := float64(settings.BonusPointsForSpeed)
	timerMs := float64(settings.QuestionTimer) * 1000

	speedBonus := math.Max(0, maxBonus*(1-float64(responseTimeMs)/timerMs))

	return int(math.Round(base + speedBonus))
}

// BuildLeaderboard ranks non-spectator players by score descending, ties
// broken by lives descending. Positions are 1-based. The remaining tie-breaks
// (join time, then user id) only exist to make the ordering total, so that
// repeated calls over the same player set yield the same result.
func BuildLeaderboard(players map[string]*PlayerState) []LeaderboardEntry {
	ranked := make([]*PlayerState, 0, len(players))
	for _, p := range players {
		if !p.IsSpectator {
			ranked = append(ranked, p)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Lives != b.Lives {
			return a.Lives > b.Lives
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.UserID < b.UserID
	})

	leaderboard := make([]LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		leaderboard[i] = LeaderboardEntry{
			UserID:   p.UserID,
			Username: p.Username,
			Score:    p.Score,
			Position: i + 1,
			Lives:    p.Lives,
			IsActive: p.IsActive,
		}
	}
	return leaderboard
}

// countActive returns the number of players still in the running.
func countActive(players map[string]*PlayerState) int {
	n := 0
	for _, p := range players {
		if p.IsActive && !p.IsSpectator {
			n++
		}
	}
	return n
}

// gameOver reports whether the game-over condition holds: one or zero active
// players left, or the question list exhausted.
func gameOver(players map[string]*PlayerState, currentQuestionIndex, totalQuestions int) bool {
	return countActive(players) <= 1 || currentQuestionIndex >= totalQuestions
}
