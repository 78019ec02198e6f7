package quiz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
)

// Coordinator handles every client-driven game operation: create, join,
// start, answer, leave. Round progression belongs to the Sequencer.
type Coordinator struct {
	store     *Store
	bc        Broadcaster
	archive   Archiver
	sequencer *Sequencer

	defaultSettings   Settings
	defaultMaxPlayers int
}

func NewCoordinator(store *Store, bc Broadcaster, archive Archiver, sequencer *Sequencer, defaultSettings Settings, defaultMaxPlayers int) *Coordinator {
	return &Coordinator{
		store:             store,
		bc:                bc,
		archive:           archive,
		sequencer:         sequencer,
		defaultSettings:   defaultSettings,
		defaultMaxPlayers: defaultMaxPlayers,
	}
}

type CreateGameRequest struct {
	Name       string
	Category   string
	MaxPlayers int
	Questions  []Question
}

// CreateGame registers a new waiting game and announces it to the lobby.
// Creation requires admin privilege; the request is validated before any
// state is touched.
func (c *Coordinator) CreateGame(user UserInfo, req CreateGameRequest) (*Game, error) {
	if !user.Admin {
		return nil, ErrNotAuthorized
	}

	if req.MaxPlayers == 0 {
		req.MaxPlayers = c.defaultMaxPlayers
	}
	if req.MaxPlayers < MinPlayers || req.MaxPlayers > MaxPlayersCap {
		return nil, fmt.Errorf("%w: maxPlayers must be between %d and %d", ErrValidation, MinPlayers, MaxPlayersCap)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(req.Questions) == 0 {
		return nil, fmt.Errorf("%w: question list is empty", ErrValidation)
	}
	for i := range req.Questions {
		if err := req.Questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	game := NewGame(uuid.New().String(), req.Name, req.Category, req.MaxPlayers,
		c.defaultSettings, req.Questions, user.UserID)
	c.store.Add(game)
	c.persist(game)

	c.bc.ToLobby(network.MsgTypeNewGameAvailable, game.LobbyInfo())
	logger.Log.Infof("Game %s (%s) created by %s", game.ID, game.Name, user.Username)

	return game, nil
}

type JoinResult struct {
	Role            Role           `json:"role"`
	Game            Snapshot       `json:"game"`
	CurrentQuestion *RoundQuestion `json:"currentQuestion,omitempty"`
}

// JoinGame adds the user as player or spectator and notifies the existing
// participants. The joiner's own confirmation is the returned JoinResult; the
// broadcasts below go out before the caller's connection is attached to the
// game, so the joiner never hears its own join.
func (c *Coordinator) JoinGame(gameID string, user UserInfo) (JoinResult, error) {
	game, exists := c.store.Get(gameID)
	if !exists {
		return JoinResult{}, ErrNotFound
	}

	role, err := game.Join(user)
	if err != nil {
		return JoinResult{}, err
	}

	result := JoinResult{Role: role, Game: game.Snapshot()}

	if role == RolePlayer {
		c.bc.ToGame(gameID, network.MsgTypePlayerJoined, map[string]interface{}{
			"username":     user.Username,
			"avatar":       user.Avatar,
			"totalPlayers": game.PlayerCount(),
		})
		c.bc.ToLobby(network.MsgTypeGameUpdated, game.LobbyInfo())
	} else {
		c.bc.ToGame(gameID, network.MsgTypeSpectatorJoined, map[string]interface{}{
			"username": user.Username,
			"avatar":   user.Avatar,
		})
		// A spectator arriving mid-round gets the in-flight question so their
		// view is not blank until the next broadcast.
		if question, ok := game.CurrentQuestion(); ok {
			result.CurrentQuestion = &question
		}
	}

	c.persist(game)
	logger.Log.Infof("User %s joined game %s as %s", user.Username, gameID, role)

	return result, nil
}

// StartGame transitions the game to playing and schedules the first round
// after the lead-in delay. Admin only.
func (c *Coordinator) StartGame(gameID string, user UserInfo) error {
	if !user.Admin {
		return ErrNotAuthorized
	}

	game, exists := c.store.Get(gameID)
	if !exists {
		return ErrNotFound
	}

	if err := game.Start(); err != nil {
		return err
	}

	c.persist(game)
	c.bc.ToGame(gameID, network.MsgTypeGameStarted, map[string]interface{}{
		"totalQuestions": len(game.Questions),
	})

	c.sequencer.ScheduleStart(gameID)
	logger.Log.Infof("Game %s started by %s with %d active players", gameID, user.Username, game.ActivePlayerCount())

	return nil
}

type SubmitAnswerRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
	ResponseTimeMs int64  `json:"responseTime"`
}

// SubmitAnswer scores one player's answer to the current question. Safe under
// concurrent invocation by many players: only the submitting player's own
// state changes. Elimination fans out a unicast to the eliminated player and a
// broadcast to the rest.
func (c *Coordinator) SubmitAnswer(gameID, userID string, req SubmitAnswerRequest) (AnswerResult, error) {
	game, exists := c.store.Get(gameID)
	if !exists {
		return AnswerResult{}, ErrNotFound
	}

	result, err := game.SubmitAnswer(userID, req.QuestionID, req.SelectedOption, req.ResponseTimeMs)
	if err != nil {
		return AnswerResult{}, err
	}

	if result.Eliminated {
		c.bc.ToUser(userID, network.MsgTypeEliminated, map[string]interface{}{
			"message": "You are out of lives. You can keep watching as a spectator.",
		})
		c.bc.ToGame(gameID, network.MsgTypePlayerEliminated, map[string]interface{}{
			"username":   result.Username,
			"finalScore": result.TotalScore,
		})
		logger.Log.Infof("Player %s eliminated from game %s with score %d", result.Username, gameID, result.TotalScore)
	}

	c.persist(game)
	return result, nil
}

// LeaveGame detaches the user's connection from the game. Scored state stays
// in the game history.
func (c *Coordinator) LeaveGame(gameID, userID string) error {
	game, exists := c.store.Get(gameID)
	if !exists {
		return ErrNotFound
	}

	info, ok := game.Leave(userID)
	if !ok {
		return nil
	}

	c.bc.ToGame(gameID, network.MsgTypePlayerLeft, info)
	if !info.IsSpectator && game.GetStatus() == StatusWaiting {
		c.bc.ToLobby(network.MsgTypeGameUpdated, game.LobbyInfo())
	}

	c.persist(game)
	logger.Log.Infof("User %s left game %s", userID, gameID)

	return nil
}

// AvailableGames lists joinable games for a freshly connected client.
func (c *Coordinator) AvailableGames() []LobbyInfo {
	return c.store.WaitingGames()
}

// persist writes the game snapshot behind the player-visible operation. A
// failed write is logged and flagged for reconciliation; gameplay continues
// on the in-memory state.
func (c *Coordinator) persist(game *Game) {
	if err := c.archive.SaveGame(game.Snapshot()); err != nil {
		logger.Log.Warnf("Game %s: snapshot write failed, continuing on in-memory state: %v", game.ID, err)
	}
}
