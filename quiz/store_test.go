package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	store := NewStore()
	require.Equal(t, 0, store.Count())

	game := newTestGame(t, 3, "p1")
	store.Add(game)
	require.Equal(t, 1, store.Count())

	got, exists := store.Get(game.ID)
	require.True(t, exists)
	require.Same(t, game, got)

	_, exists = store.Get("missing")
	require.False(t, exists)

	store.Remove(game.ID)
	require.Equal(t, 0, store.Count())
	_, exists = store.Get(game.ID)
	require.False(t, exists)
}

func TestStore_WaitingGames(t *testing.T) {
	store := NewStore()

	waiting := newTestGame(t, 3, "p1")
	store.Add(waiting)

	playing := startedGame(t, 3, "p2", "p3")
	playing.ID = "g2"
	store.Add(playing)

	listed := store.WaitingGames()
	require.Len(t, listed, 1)
	require.Equal(t, waiting.ID, listed[0].ID)
	require.Equal(t, StatusWaiting, listed[0].Status)
	require.Equal(t, 1, listed[0].CurrentPlayers)
}
