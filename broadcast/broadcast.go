package broadcast

import (
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/session"
)

// GameBroadcaster fans messages out to the connections tracked by the session
// manager. It implements quiz.Broadcaster.
type GameBroadcaster struct {
	sessions *session.Manager
}

func NewGameBroadcaster(sessions *session.Manager) *GameBroadcaster {
	return &GameBroadcaster{sessions: sessions}
}

// ToGame sends to every connection attached to the game, players and
// spectators alike. A failed send is skipped; the connection's own read loop
// notices the dead socket and tears it down.
func (b *GameBroadcaster) ToGame(gameID string, msgID uint16, v interface{}) {
	for _, s := range b.sessions.GetByGameID(gameID) {
		if err := s.SendJSON(msgID, v); err != nil {
			continue
		}
	}
}

// ToUser sends to every live connection of one user.
func (b *GameBroadcaster) ToUser(userID string, msgID uint16, v interface{}) {
	for _, s := range b.sessions.GetByUserID(userID) {
		if err := s.SendJSON(msgID, v); err != nil {
			continue
		}
	}
}

// ToLobby reaches every connected client; lobby listings are visible even
// while in a game.
func (b *GameBroadcaster) ToLobby(msgID uint16, v interface{}) {
	for _, s := range b.sessions.All() {
		if err := s.SendJSON(msgID, v); err != nil {
			continue
		}
	}
}
