package quiz

import "time"

// RoundOption is an option as broadcast to clients: text only, no correctness
// flag.
type RoundOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type RoundQuestion struct {
	ID        string        `json:"id"`
	Text      string        `json:"question"`
	Options   []RoundOption `json:"options"`
	TimeLimit int           `json:"timeLimit"`
}

type RoundStart struct {
	Question       RoundQuestion `json:"question"`
	QuestionNumber int           `json:"questionNumber"`
	TotalQuestions int           `json:"totalQuestions"`
}

type RoundEnd struct {
	QuestionID    string             `json:"questionId"`
	CorrectOption int                `json:"correctOption"`
	CorrectAnswer string             `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	ActivePlayers int                `json:"activePlayers"`
	GameOver      bool               `json:"-"`
}

type AnswerResult struct {
	IsCorrect      bool   `json:"isCorrect"`
	PointsAwarded  int    `json:"pointsAwarded"`
	TotalScore     int    `json:"totalScore"`
	LivesRemaining int    `json:"livesRemaining"`
	CorrectOption  int    `json:"correctOption"`
	CorrectAnswer  string `json:"correctAnswer"`
	Eliminated     bool   `json:"-"`
	Username       string `json:"-"`
}

type FinalResult struct {
	Winner      *LeaderboardEntry  `json:"winner"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Stats       Stats              `json:"stats"`
}

type LeaveInfo struct {
	Username    string `json:"username"`
	IsSpectator bool   `json:"isSpectator"`
}

// LobbyInfo is the short listing shown to the lobby audience.
type LobbyInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	CurrentPlayers int       `json:"currentPlayers"`
	MaxPlayers     int       `json:"maxPlayers"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Snapshot is the full read-only view of a game: the join payload and the
// shape written to the durable store.
type Snapshot struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Category             string             `json:"category"`
	Status               Status             `json:"status"`
	MaxPlayers           int                `json:"maxPlayers"`
	Settings             Settings           `json:"settings"`
	CreatedBy            string             `json:"createdBy"`
	Players              []PlayerState      `json:"players"`
	Spectators           []Spectator        `json:"spectators"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	TotalQuestions       int                `json:"totalQuestions"`
	QuestionIDs          []string           `json:"questionIds"`
	CreatedAt            time.Time          `json:"createdAt"`
	StartedAt            time.Time          `json:"startedAt,omitempty"`
	FinishedAt           time.Time          `json:"finishedAt,omitempty"`
	WinnerID             string             `json:"winnerId,omitempty"`
	Stats                Stats              `json:"stats"`
}

// GameStatsView is the admin stats query result.
type GameStatsView struct {
	TotalPlayers    int                `json:"totalPlayers"`
	ActivePlayers   int                `json:"activePlayers"`
	Spectators      int                `json:"spectators"`
	CurrentQuestion int                `json:"currentQuestion"`
	TotalQuestions  int                `json:"totalQuestions"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
}

func (g *Game) GetStatus() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Status
}

func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.Players)
}

func (g *Game) ActivePlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return countActive(g.Players)
}

// Player returns a copy of one player's state.
func (g *Game) Player(userID string) (PlayerState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.Players[userID]
	if !ok {
		return PlayerState{}, false
	}
	return *p, true
}

func (g *Game) LobbyInfo() LobbyInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return LobbyInfo{
		ID:             g.ID,
		Name:           g.Name,
		Category:       g.Category,
		CurrentPlayers: len(g.Players),
		MaxPlayers:     g.MaxPlayers,
		Status:         g.Status,
		CreatedAt:      g.CreatedAt,
	}
}

func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	players := make([]PlayerState, 0, len(g.Players))
	for _, p := range g.Players {
		cp := *p
		cp.Answers = append([]AnswerRecord(nil), p.Answers...)
		players = append(players, cp)
	}
	spectators := make([]Spectator, 0, len(g.Spectators))
	for _, s := range g.Spectators {
		spectators = append(spectators, *s)
	}
	questionIDs := make([]string, len(g.Questions))
	for i := range g.Questions {
		questionIDs[i] = g.Questions[i].ID
	}

	return Snapshot{
		ID:                   g.ID,
		Name:                 g.Name,
		Category:             g.Category,
		Status:               g.Status,
		MaxPlayers:           g.MaxPlayers,
		Settings:             g.Settings,
		CreatedBy:            g.CreatedBy,
		Players:              players,
		Spectators:           spectators,
		Leaderboard:          append([]LeaderboardEntry(nil), g.Leaderboard...),
		CurrentQuestionIndex: g.CurrentQuestionIndex,
		TotalQuestions:       len(g.Questions),
		QuestionIDs:          questionIDs,
		CreatedAt:            g.CreatedAt,
		StartedAt:            g.StartedAt,
		FinishedAt:           g.FinishedAt,
		WinnerID:             g.WinnerID,
		Stats:                g.Stats,
	}
}

// CurrentQuestion returns the broadcast view of the in-flight question, for
// spectators joining mid-game. ok is false between rounds and outside play.
func (g *Game) CurrentQuestion() (RoundQuestion, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.Status != StatusPlaying || g.CurrentQuestionIndex >= len(g.Questions) {
		return RoundQuestion{}, false
	}
	question := &g.Questions[g.CurrentQuestionIndex]
	options := make([]RoundOption, len(question.Options))
	for i, opt := range question.Options {
		options[i] = RoundOption{Index: i, Text: opt.Text}
	}
	return RoundQuestion{
		ID:        question.ID,
		Text:      question.Text,
		Options:   options,
		TimeLimit: g.Settings.QuestionTimer,
	}, true
}

func (g *Game) StatsView() GameStatsView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GameStatsView{
		TotalPlayers:    len(g.Players),
		ActivePlayers:   countActive(g.Players),
		Spectators:      len(g.Spectators),
		CurrentQuestion: g.CurrentQuestionIndex + 1,
		TotalQuestions:  len(g.Questions),
		Leaderboard:     topEntries(append([]LeaderboardEntry(nil), g.Leaderboard...), 10),
	}
}
