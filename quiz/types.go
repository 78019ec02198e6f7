package quiz

import (
	"errors"
	"fmt"
	"time"
)

// Status is the session state machine state. The only transitions are
// waiting -> playing (StartGame) and playing -> finished (game over).
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	MinPlayers    = 2
	MaxPlayersCap = 100
	OptionCount   = 4
)

// Settings are fixed at game creation and never change afterwards.
type Settings struct {
	QuestionTimer          int `json:"questionTimer"` // seconds
	LivesPerPlayer         int `json:"livesPerPlayer"`
	PointsPerCorrectAnswer int `json:"pointsPerCorrectAnswer"`
	BonusPointsForSpeed    int `json:"bonusPointsForSpeed"`
}

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is owned by the question catalog. The engine holds references for
// the duration of a game and treats them as immutable.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"question"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
}

// Validate enforces the catalog invariant: exactly four options with exactly
// one marked correct.
func (q *Question) Validate() error {
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question %s: expected %d options, got %d", q.ID, OptionCount, len(q.Options))
	}
	correct := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %s: expected exactly one correct option, got %d", q.ID, correct)
	}
	return nil
}

// CorrectAnswer returns the index and text of the correct option.
func (q *Question) CorrectAnswer() (int, Option) {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i, opt
		}
	}
	return -1, Option{}
}

// AnswerRecord is immutable once appended. At most one exists per player per
// question.
type AnswerRecord struct {
	QuestionID     string    `json:"questionId"`
	SelectedOption int       `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	ResponseTimeMs int64     `json:"responseTime"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// PlayerState holds one participant's scored state. Username and avatar are
// snapshotted at join time.
type PlayerState struct {
	UserID       string         `json:"userId"`
	Username     string         `json:"username"`
	Avatar       string         `json:"avatar"`
	Lives        int            `json:"lives"`
	Score        int            `json:"score"`
	IsActive     bool           `json:"isActive"`
	IsSpectator  bool           `json:"isSpectator"`
	JoinedAt     time.Time      `json:"joinedAt"`
	LastAnswerAt time.Time      `json:"lastAnswerTime,omitempty"`
	Answers      []AnswerRecord `json:"answers"`
}

type Spectator struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
	Lives    int    `json:"lives"`
	IsActive bool   `json:"isActive"`
}

// Stats are computed once, when a game finishes.
type Stats struct {
	TotalPlayers        int     `json:"totalPlayers"`
	TotalSpectators     int     `json:"totalSpectators"`
	AverageScore        float64 `json:"averageScore"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	QuestionsAnswered   int     `json:"questionsAnswered"`
}

// UserInfo is the engine's view of an authenticated user, as provided by the
// auth collaborator.
type UserInfo struct {
	UserID   string
	Username string
	Avatar   string
	Admin    bool
}

// Role of a participant within one game.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Engine error taxonomy. Caller-triggered errors are unicast to the offending
// connection and never affect other participants.
var (
	ErrValidation          = errors.New("invalid request")
	ErrNotFound            = errors.New("game not found")
	ErrInvalidState        = errors.New("operation not allowed in current game state")
	ErrNotActivePlayer     = errors.New("player is not active in this game")
	ErrStaleQuestion       = errors.New("question is not the current question")
	ErrDuplicateAnswer     = errors.New("answer already submitted for this question")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrAlreadyJoined       = errors.New("user already joined this game")
	ErrNotAuthorized       = errors.New("admin privilege required")
)
