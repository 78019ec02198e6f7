package quiz

import "sync"

// Store is the in-process registry of active games. It is the only component
// that adds or removes games; durable persistence is layered on top by the
// coordinator through the Archiver.
type Store struct {
	games map[string]*Game
	mutex sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]*Game),
	}
}

func (s *Store) Add(game *Game) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.games[game.ID] = game
}

func (s *Store) Get(id string) (*Game, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	game, exists := s.games[id]
	return game, exists
}

func (s *Store) Remove(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.games, id)
}

func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.games)
}

// WaitingGames lists the games the lobby audience can still join as players.
func (s *Store) WaitingGames() []LobbyInfo {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var result []LobbyInfo
	for _, game := range s.games {
		if game.GetStatus() == StatusWaiting {
			result = append(result, game.LobbyInfo())
		}
	}
	return result
}
