package quiz

import (
	"sync"
	"time"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/timer"
)

// Timing bounds every round regardless of player behavior: rounds open and
// close on the server's schedule, slow clients simply miss their window.
type Timing struct {
	LeadIn          time.Duration
	InterRoundPause time.Duration
}

type questionEndedPayload struct {
	QuestionID    string `json:"questionId"`
	CorrectOption int    `json:"correctOption"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type leaderboardPayload struct {
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	ActivePlayers int                `json:"activePlayers"`
}

// Sequencer drives every playing game through its rounds. It is the only
// component that advances the question cursor and recomputes leaderboards, so
// concurrent answer submissions never contend with each other over them.
type Sequencer struct {
	store   *Store
	bc      Broadcaster
	archive Archiver
	timers  *timer.Manager
	timing  Timing

	mu      sync.Mutex
	pending map[string]int64 // gameID -> scheduled timer task
}

func NewSequencer(store *Store, bc Broadcaster, archive Archiver, timers *timer.Manager, timing Timing) *Sequencer {
	return &Sequencer{
		store:   store,
		bc:      bc,
		archive: archive,
		timers:  timers,
		timing:  timing,
		pending: make(map[string]int64),
	}
}

// ScheduleStart arms the lead-in timer for a freshly started game; the first
// round opens when it fires.
func (s *Sequencer) ScheduleStart(gameID string) {
	s.schedule(gameID, s.timing.LeadIn, func() { s.openRound(gameID) })
}

// Cancel drops the game's pending timer, if any. Called on early finish so no
// stale callback fires into a finished game.
func (s *Sequencer) Cancel(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.pending[gameID]; ok {
		s.timers.RemoveTimer(id)
		delete(s.pending, gameID)
	}
}

// schedule replaces the game's pending timer. Each game has at most one timer
// armed at a time: either a round-expiry or the pause before the next round.
func (s *Sequencer) schedule(gameID string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.pending[gameID]; ok {
		s.timers.RemoveTimer(id)
	}
	s.pending[gameID] = s.timers.AddTimer(delay, 0, fn)
}

// openRound broadcasts the current question and arms the round-expiry timer.
func (s *Sequencer) openRound(gameID string) {
	game, exists := s.store.Get(gameID)
	if !exists {
		return
	}

	start, ok := game.OpenRound()
	if !ok {
		// Either the question list is exhausted or the game is no longer
		// playing. Only the former needs a finish.
		if game.GetStatus() == StatusPlaying {
			s.finishGame(game)
		}
		return
	}

	s.bc.ToGame(gameID, network.MsgTypeNewQuestion, start)

	expiry := time.Duration(game.Settings.QuestionTimer) * time.Second
	s.schedule(gameID, expiry, func() { s.closeRound(gameID) })
}

// closeRound fires unconditionally at the round deadline, however many
// players have answered. A player without an answer this round simply has no
// record for it.
func (s *Sequencer) closeRound(gameID string) {
	game, exists := s.store.Get(gameID)
	if !exists {
		return
	}

	end, ok := game.CloseRound()
	if !ok {
		// Stale fire into a finished game: detected no-op.
		return
	}

	s.bc.ToGame(gameID, network.MsgTypeQuestionEnded, questionEndedPayload{
		QuestionID:    end.QuestionID,
		CorrectOption: end.CorrectOption,
		CorrectAnswer: end.CorrectAnswer,
		Explanation:   end.Explanation,
	})
	s.bc.ToGame(gameID, network.MsgTypeLeaderboardUpdate, leaderboardPayload{
		Leaderboard:   end.Leaderboard,
		ActivePlayers: end.ActivePlayers,
	})

	if err := s.archive.SaveGame(game.Snapshot()); err != nil {
		logger.Log.Warnf("Game %s: snapshot write failed at round close, continuing: %v", gameID, err)
	}

	if end.GameOver {
		s.finishGame(game)
		return
	}

	s.schedule(gameID, s.timing.InterRoundPause, func() { s.openRound(gameID) })
}

// finishGame freezes the game, announces the result and archives it. Runs at
// most once per game; Game.Finish guards re-entry.
func (s *Sequencer) finishGame(game *Game) {
	final, ok := game.Finish()
	if !ok {
		return
	}

	s.Cancel(game.ID)

	s.bc.ToGame(game.ID, network.MsgTypeGameFinished, final)

	snapshot := game.Snapshot()
	if err := s.archive.SaveGame(snapshot); err != nil {
		logger.Log.Warnf("Game %s: final snapshot write failed: %v", game.ID, err)
	}

	duration := 0
	if !snapshot.StartedAt.IsZero() {
		duration = int(snapshot.FinishedAt.Sub(snapshot.StartedAt).Seconds())
	}
	record := GameRecord{
		GameID:          snapshot.ID,
		Name:            snapshot.Name,
		Category:        snapshot.Category,
		WinnerID:        snapshot.WinnerID,
		Leaderboard:     snapshot.Leaderboard,
		Stats:           snapshot.Stats,
		DurationSeconds: duration,
	}
	if err := s.archive.SaveGameRecord(record); err != nil {
		logger.Log.Warnf("Game %s: archive record write failed: %v", game.ID, err)
	}

	s.store.Remove(game.ID)
	logger.Log.Infof("Game %s finished, winner %q, %d questions played",
		game.ID, snapshot.WinnerID, snapshot.Stats.QuestionsAnswered)
}
