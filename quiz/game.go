package quiz

import (
	"sync"
	"time"
)

// Game is one quiz session from creation to finish. All mutation goes through
// its methods, each of which holds the game's own lock for the whole
// check-and-mutate sequence, so concurrent operations on the same game are
// serialized. No lock is ever shared between two games.
type Game struct {
	mu sync.RWMutex

	ID         string
	Name       string
	Category   string
	Status     Status
	MaxPlayers int
	Settings   Settings
	CreatedBy  string

	// Questions is fixed once the game is created; the referenced questions
	// are immutable for the lifetime of the game.
	Questions            []Question
	CurrentQuestionIndex int

	Players    map[string]*PlayerState
	Spectators map[string]*Spectator

	// Leaderboard is always a projection of Players, recomputed at round close
	// and at finish, never mutated independently.
	Leaderboard []LeaderboardEntry

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	WinnerID   string
	Stats      Stats
}

func NewGame(id, name, category string, maxPlayers int, settings Settings, questions []Question, createdBy string) *Game {
	return &Game{
		ID:         id,
		Name:       name,
		Category:   category,
		Status:     StatusWaiting,
		MaxPlayers: maxPlayers,
		Settings:   settings,
		CreatedBy:  createdBy,
		Questions:  questions,
		Players:    make(map[string]*PlayerState),
		Spectators: make(map[string]*Spectator),
		CreatedAt:  time.Now(),
	}
}

// Join adds the user to the game. Before the game starts, and while there is
// room, the user becomes an active player; in every other case (game already
// playing or finished, or lobby full) the user becomes a spectator. A user id
// already present in either role is rejected.
func (g *Game) Join(user UserInfo) (Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.Players[user.UserID]; ok {
		return "", ErrAlreadyJoined
	}
	if _, ok := g.Spectators[user.UserID]; ok {
		return "", ErrAlreadyJoined
	}

	now := time.Now()
	if g.Status == StatusWaiting && len(g.Players) < g.MaxPlayers {
		g.Players[user.UserID] = &PlayerState{
			UserID:   user.UserID,
			Username: user.Username,
			Avatar:   user.Avatar,
			Lives:    g.Settings.LivesPerPlayer,
			IsActive: true,
			JoinedAt: now,
		}
		g.Stats.TotalPlayers = len(g.Players)
		return RolePlayer, nil
	}

	g.Spectators[user.UserID] = &Spectator{
		UserID:   user.UserID,
		Username: user.Username,
		Avatar:   user.Avatar,
		JoinedAt: now,
	}
	g.Stats.TotalSpectators = len(g.Spectators)
	return RoleSpectator, nil
}

// Start is the sole waiting -> playing transition. It is irreversible; a
// second call fails with ErrInvalidState.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusWaiting {
		return ErrInvalidState
	}
	if countActive(g.Players) < MinPlayers {
		return ErrInsufficientPlayers
	}

	g.Status = StatusPlaying
	g.StartedAt = time.Now()
	return nil
}

// SubmitAnswer applies one player's answer to the current question. Each call
// mutates only the submitting player's own state, so submissions from
// different players commute; the question cursor and the leaderboard are only
// touched by the sequencer.
func (g *Game) SubmitAnswer(userID, questionID string, selectedOption int, responseTimeMs int64) (AnswerResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusPlaying {
		return AnswerResult{}, ErrInvalidState
	}

	player, ok := g.Players[userID]
	if !ok || !player.IsActive || player.IsSpectator {
		return AnswerResult{}, ErrNotActivePlayer
	}

	if g.CurrentQuestionIndex >= len(g.Questions) {
		return AnswerResult{}, ErrStaleQuestion
	}
	question := &g.Questions[g.CurrentQuestionIndex]
	if question.ID != questionID {
		return AnswerResult{}, ErrStaleQuestion
	}

	for _, rec := range player.Answers {
		if rec.QuestionID == questionID {
			return AnswerResult{}, ErrDuplicateAnswer
		}
	}

	isCorrect := selectedOption >= 0 && selectedOption < len(question.Options) &&
		question.Options[selectedOption].IsCorrect
	points := CalculateScore(g.Settings, isCorrect, responseTimeMs)

	now := time.Now()
	player.Answers = append(player.Answers, AnswerRecord{
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsCorrect:      isCorrect,
		ResponseTimeMs: responseTimeMs,
		AnsweredAt:     now,
	})
	player.LastAnswerAt = now

	eliminated := false
	if isCorrect {
		player.Score += points
	} else {
		player.Lives--
		if player.Lives <= 0 {
			player.Lives = 0
			player.IsActive = false
			player.IsSpectator = true
			g.Spectators[player.UserID] = &Spectator{
				UserID:   player.UserID,
				Username: player.Username,
				Avatar:   player.Avatar,
				JoinedAt: now,
			}
			g.Stats.TotalSpectators = len(g.Spectators)
			eliminated = true
		}
	}

	correctIndex, correctOption := question.CorrectAnswer()
	return AnswerResult{
		IsCorrect:      isCorrect,
		PointsAwarded:  points,
		TotalScore:     player.Score,
		LivesRemaining: player.Lives,
		CorrectOption:  correctIndex,
		CorrectAnswer:  correctOption.Text,
		Eliminated:     eliminated,
		Username:       player.Username,
	}, nil
}

// Leave detaches the user's live connection. Scored state is retained: a
// leaver's answers and score stay part of the game history, the player is
// merely no longer active.
func (g *Game) Leave(userID string) (LeaveInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if player, ok := g.Players[userID]; ok {
		player.IsActive = false
		return LeaveInfo{Username: player.Username, IsSpectator: player.IsSpectator}, true
	}
	if spec, ok := g.Spectators[userID]; ok {
		delete(g.Spectators, userID)
		return LeaveInfo{Username: spec.Username, IsSpectator: true}, true
	}
	return LeaveInfo{}, false
}

// OpenRound returns the broadcast view of the current question. ok is false
// when there is no round to open: the game is not playing anymore, or the
// question list is exhausted (the caller finishes the game instead).
func (g *Game) OpenRound() (RoundStart, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.Status != StatusPlaying || g.CurrentQuestionIndex >= len(g.Questions) {
		return RoundStart{}, false
	}

	question := &g.Questions[g.CurrentQuestionIndex]
	options := make([]RoundOption, len(question.Options))
	for i, opt := range question.Options {
		options[i] = RoundOption{Index: i, Text: opt.Text}
	}

	return RoundStart{
		Question: RoundQuestion{
			ID:        question.ID,
			Text:      question.Text,
			Options:   options,
			TimeLimit: g.Settings.QuestionTimer,
		},
		QuestionNumber: g.CurrentQuestionIndex + 1,
		TotalQuestions: len(g.Questions),
	}, true
}

// CloseRound reveals the correct answer, recomputes the leaderboard and
// advances the question cursor by exactly one. ok is false when the game is no
// longer playing, which makes a round-expiry timer firing into a finished game
// a detected no-op.
func (g *Game) CloseRound() (RoundEnd, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusPlaying || g.CurrentQuestionIndex >= len(g.Questions) {
		return RoundEnd{}, false
	}

	question := &g.Questions[g.CurrentQuestionIndex]
	correctIndex, correctOption := question.CorrectAnswer()

	g.Leaderboard = BuildLeaderboard(g.Players)
	g.CurrentQuestionIndex++

	return RoundEnd{
		QuestionID:    question.ID,
		CorrectOption: correctIndex,
		CorrectAnswer: correctOption.Text,
		Explanation:   question.Explanation,
		Leaderboard:   topEntries(g.Leaderboard, 10),
		ActivePlayers: countActive(g.Players),
		GameOver:      gameOver(g.Players, g.CurrentQuestionIndex, len(g.Questions)),
	}, true
}

// Finish freezes the game. It runs exactly once; later calls (or stale timer
// fires) report ok=false and change nothing.
func (g *Game) Finish() (FinalResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status == StatusFinished {
		return FinalResult{}, false
	}

	g.Status = StatusFinished
	g.FinishedAt = time.Now()
	g.Leaderboard = BuildLeaderboard(g.Players)

	var winner *LeaderboardEntry
	if len(g.Leaderboard) > 0 {
		top := g.Leaderboard[0]
		winner = &top
		g.WinnerID = top.UserID
	}

	g.Stats = g.computeStatsLocked()

	return FinalResult{
		Winner:      winner,
		Leaderboard: g.Leaderboard,
		Stats:       g.Stats,
	}, true
}

func (g *Game) computeStatsLocked() Stats {
	stats := Stats{
		TotalPlayers:      len(g.Players),
		TotalSpectators:   len(g.Spectators),
		QuestionsAnswered: g.CurrentQuestionIndex,
	}
	if len(g.Players) == 0 {
		return stats
	}

	totalScore := 0
	totalResponseTime := 0.0
	for _, p := range g.Players {
		totalScore += p.Score

		playerTotal := int64(0)
		for _, a := range p.Answers {
			playerTotal += a.ResponseTimeMs
		}
		answered := len(p.Answers)
		if answered == 0 {
			answered = 1
		}
		totalResponseTime += float64(playerTotal) / float64(answered)
	}

	stats.AverageScore = float64(totalScore) / float64(len(g.Players))
	stats.AverageResponseTime = totalResponseTime / float64(len(g.Players))
	return stats
}

func topEntries(leaderboard []LeaderboardEntry, n int) []LeaderboardEntry {
	if len(leaderboard) <= n {
		return leaderboard
	}
	return leaderboard[:n]
}
