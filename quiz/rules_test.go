package quiz

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testSettings() Settings {
	return Settings{
		QuestionTimer:          15,
		LivesPerPlayer:         3,
		PointsPerCorrectAnswer: 100,
		BonusPointsForSpeed:    50,
	}
}

func TestCalculateScore(t *testing.T) {
	settings := testSettings()

	tests := map[string]struct {
		isCorrect      bool
		responseTimeMs int64
		want           int
	}{
		"instant answer gets full bonus":       {true, 0, 150},
		"half the timer gets half the bonus":   {true, 7500, 125},
		"answer at the deadline gets no bonus": {true, 15000, 100},
		"late answer bonus floors at zero":     {true, 30000, 100},
		"incorrect answer scores nothing":      {false, 0, 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := CalculateScore(settings, tt.isCorrect, tt.responseTimeMs)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuildLeaderboard_Ordering(t *testing.T) {
	joined := time.Now()
	players := map[string]*PlayerState{
		"a": {UserID: "a", Username: "alice", Score: 100, Lives: 1, IsActive: true, JoinedAt: joined},
		"b": {UserID: "b", Username: "bob", Score: 300, Lives: 2, IsActive: true, JoinedAt: joined},
		"c": {UserID: "c", Username: "carol", Score: 100, Lives: 3, IsActive: true, JoinedAt: joined},
		"d": {UserID: "d", Username: "dave", Score: 50, Lives: 0, IsSpectator: true, JoinedAt: joined},
	}

	leaderboard := BuildLeaderboard(players)

	require.Len(t, leaderboard, 3, "spectators must not be ranked")
	require.Equal(t, "b", leaderboard[0].UserID)
	require.Equal(t, "c", leaderboard[1].UserID, "equal scores break ties by lives")
	require.Equal(t, "a", leaderboard[2].UserID)

	for i, entry := range leaderboard {
		require.Equal(t, i+1, entry.Position)
	}
}

func TestBuildLeaderboard_Deterministic(t *testing.T) {
	joined := time.Now()
	players := map[string]*PlayerState{}
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		players[id] = &PlayerState{UserID: id, Username: id, Score: 200, Lives: 2, IsActive: true, JoinedAt: joined}
	}

	first := BuildLeaderboard(players)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, BuildLeaderboard(players))
	}
}

func TestGameOver(t *testing.T) {
	active := func(id string) *PlayerState {
		return &PlayerState{UserID: id, IsActive: true}
	}

	players := map[string]*PlayerState{"a": active("a"), "b": active("b")}
	require.False(t, gameOver(players, 3, 10))
	require.True(t, gameOver(players, 10, 10), "exhausted question list ends the game")

	players["b"].IsActive = false
	players["b"].IsSpectator = true
	require.True(t, gameOver(players, 3, 10), "a single survivor ends the game")
}
