package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
)

func adminUser(id string) UserInfo {
	u := testUser(id)
	u.Admin = true
	return u
}

func newTestCoordinator(t *testing.T) (*Store, *fakeBroadcaster, *fakeArchiver, *Coordinator) {
	t.Helper()
	store, bc, archive, seq := newTestSequencer(t)
	coord := NewCoordinator(store, bc, archive, seq, testSettings(), 10)
	return store, bc, archive, coord
}

func TestCoordinator_CreateGame(t *testing.T) {
	store, bc, archive, coord := newTestCoordinator(t)

	game, err := coord.CreateGame(adminUser("admin"), CreateGameRequest{
		Name:      "Friday Quiz",
		Category:  "physics",
		Questions: testQuestions(3),
	})
	require.NoError(t, err)
	require.NotEmpty(t, game.ID)
	require.Equal(t, StatusWaiting, game.GetStatus())
	require.Equal(t, 10, game.MaxPlayers, "zero maxPlayers falls back to the default")

	stored, exists := store.Get(game.ID)
	require.True(t, exists)
	require.Same(t, game, stored)

	announcements := bc.byMsgID(network.MsgTypeNewGameAvailable)
	require.Len(t, announcements, 1)
	info, ok := announcements[0].Payload.(LobbyInfo)
	require.True(t, ok)
	require.Equal(t, "Friday Quiz", info.Name)

	require.NotEmpty(t, archive.snapshots)
}

func TestCoordinator_CreateGame_Validation(t *testing.T) {
	_, _, _, coord := newTestCoordinator(t)
	admin := adminUser("admin")

	_, err := coord.CreateGame(testUser("nobody"), CreateGameRequest{Name: "x", Questions: testQuestions(1)})
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = coord.CreateGame(admin, CreateGameRequest{Name: "", Questions: testQuestions(1)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = coord.CreateGame(admin, CreateGameRequest{Name: "x"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = coord.CreateGame(admin, CreateGameRequest{Name: "x", MaxPlayers: 1, Questions: testQuestions(1)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = coord.CreateGame(admin, CreateGameRequest{Name: "x", MaxPlayers: 101, Questions: testQuestions(1)})
	require.ErrorIs(t, err, ErrValidation)

	broken := testQuestions(1)
	broken[0].Options[0].IsCorrect = true
	_, err = coord.CreateGame(admin, CreateGameRequest{Name: "x", Questions: broken})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCoordinator_JoinGame(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := newTestGame(t, 3, "p1")
	store.Add(game)
	bc.reset()

	result, err := coord.JoinGame(game.ID, testUser("p2"))
	require.NoError(t, err)
	require.Equal(t, RolePlayer, result.Role)
	require.Equal(t, game.ID, result.Game.ID)
	require.Len(t, result.Game.Players, 2)
	require.Nil(t, result.CurrentQuestion)

	joined := bc.byMsgID(network.MsgTypePlayerJoined)
	require.Len(t, joined, 1)
	require.Equal(t, game.ID, joined[0].GameID)
	require.Len(t, bc.byMsgID(network.MsgTypeGameUpdated), 1)

	_, err = coord.JoinGame(game.ID, testUser("p2"))
	require.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = coord.JoinGame("missing", testUser("p3"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCoordinator_JoinGame_MidRoundSpectator(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := startedGame(t, 3, "p1", "p2")
	store.Add(game)
	bc.reset()

	result, err := coord.JoinGame(game.ID, testUser("watcher"))
	require.NoError(t, err)
	require.Equal(t, RoleSpectator, result.Role)
	require.NotNil(t, result.CurrentQuestion, "mid-round spectators get the in-flight question")
	require.Equal(t, "q1", result.CurrentQuestion.ID)

	require.Len(t, bc.byMsgID(network.MsgTypeSpectatorJoined), 1)
	require.Empty(t, bc.byMsgID(network.MsgTypeGameUpdated), "spectators do not change the lobby listing")
}

func TestCoordinator_StartGame(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := newTestGame(t, 3, "p1", "p2")
	store.Add(game)
	bc.reset()

	require.ErrorIs(t, coord.StartGame(game.ID, testUser("p1")), ErrNotAuthorized)
	require.ErrorIs(t, coord.StartGame("missing", adminUser("admin")), ErrNotFound)

	require.NoError(t, coord.StartGame(game.ID, adminUser("admin")))
	require.Equal(t, StatusPlaying, game.GetStatus())
	require.Len(t, bc.byMsgID(network.MsgTypeGameStarted), 1)

	// The lead-in timer for the first round is armed.
	coord.sequencer.mu.Lock()
	_, pending := coord.sequencer.pending[game.ID]
	coord.sequencer.mu.Unlock()
	require.True(t, pending)

	require.ErrorIs(t, coord.StartGame(game.ID, adminUser("admin")), ErrInvalidState)
}

func TestCoordinator_StartGame_InsufficientPlayers(t *testing.T) {
	store, _, _, coord := newTestCoordinator(t)
	game := newTestGame(t, 3, "p1")
	store.Add(game)

	require.ErrorIs(t, coord.StartGame(game.ID, adminUser("admin")), ErrInsufficientPlayers)
	require.Equal(t, StatusWaiting, game.GetStatus())
}

func TestCoordinator_SubmitAnswer(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := startedGame(t, 3, "p1", "p2")
	store.Add(game)
	bc.reset()

	result, err := coord.SubmitAnswer(game.ID, "p1", SubmitAnswerRequest{
		QuestionID:     "q1",
		SelectedOption: 1,
		ResponseTimeMs: 0,
	})
	require.NoError(t, err)
	require.True(t, result.IsCorrect)
	require.Equal(t, 150, result.TotalScore)
	require.Empty(t, bc.byMsgID(network.MsgTypePlayerEliminated))

	_, err = coord.SubmitAnswer("missing", "p1", SubmitAnswerRequest{QuestionID: "q1"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCoordinator_SubmitAnswer_EliminationFanOut(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := startedGame(t, 5, "p1", "p2")
	store.Add(game)

	wrong := func(questionID string) (AnswerResult, error) {
		return coord.SubmitAnswer(game.ID, "p1", SubmitAnswerRequest{
			QuestionID:     questionID,
			SelectedOption: 0,
			ResponseTimeMs: 1000,
		})
	}

	_, err := wrong("q1")
	require.NoError(t, err)
	_, ok := game.CloseRound()
	require.True(t, ok)
	_, err = wrong("q2")
	require.NoError(t, err)
	_, ok = game.CloseRound()
	require.True(t, ok)
	bc.reset()

	result, err := wrong("q3")
	require.NoError(t, err)
	require.True(t, result.Eliminated)

	unicasts := bc.byMsgID(network.MsgTypeEliminated)
	require.Len(t, unicasts, 1)
	require.Equal(t, "p1", unicasts[0].UserID)

	broadcasts := bc.byMsgID(network.MsgTypePlayerEliminated)
	require.Len(t, broadcasts, 1)
	require.Equal(t, game.ID, broadcasts[0].GameID)
}

func TestCoordinator_LeaveGame(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := newTestGame(t, 3, "p1", "p2")
	store.Add(game)
	bc.reset()

	require.NoError(t, coord.LeaveGame(game.ID, "p1"))
	require.Len(t, bc.byMsgID(network.MsgTypePlayerLeft), 1)
	require.Len(t, bc.byMsgID(network.MsgTypeGameUpdated), 1, "a waiting game's lobby listing shrinks")

	// Leaving twice is harmless and broadcasts nothing new.
	bc.reset()
	require.NoError(t, coord.LeaveGame(game.ID, "p1"))
	require.Empty(t, bc.all())

	require.ErrorIs(t, coord.LeaveGame("missing", "p1"), ErrNotFound)
}

func TestCoordinator_LeaveGame_DuringPlay(t *testing.T) {
	store, bc, _, coord := newTestCoordinator(t)
	game := startedGame(t, 3, "p1", "p2")
	store.Add(game)
	bc.reset()

	require.NoError(t, coord.LeaveGame(game.ID, "p1"))
	require.Len(t, bc.byMsgID(network.MsgTypePlayerLeft), 1)
	require.Empty(t, bc.byMsgID(network.MsgTypeGameUpdated), "mid-game departures do not touch the lobby")
}

func TestCoordinator_AvailableGames(t *testing.T) {
	store, _, _, coord := newTestCoordinator(t)

	waiting := newTestGame(t, 3, "p1")
	store.Add(waiting)
	playing := startedGame(t, 3, "p2", "p3")
	playing.ID = "g2"
	store.Add(playing)

	games := coord.AvailableGames()
	require.Len(t, games, 1)
	require.Equal(t, waiting.ID, games[0].ID)
}
