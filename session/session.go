package session

import (
	"sync"
	"time"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
)

// Session is one authenticated websocket connection. The username and avatar
// are snapshotted at connect time and do not track later profile edits.
type Session struct {
	ID          string
	Conn        network.Connection
	UserID      string
	Username    string
	Avatar      string
	Role        string
	GameID      string
	IsSpectator bool
	CreatedAt   time.Time
	LastActive  time.Time
	mutex       sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.SendJSON(msgID, v)
}

func (s *Session) GetID() string {
	return s.ID
}

// EnterGame records which game this connection is attached to.
func (s *Session) EnterGame(gameID string, spectator bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.GameID = gameID
	s.IsSpectator = spectator
}

func (s *Session) CurrentGame() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.GameID, s.IsSpectator
}

func (s *Session) LeaveGame() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.GameID = ""
	s.IsSpectator = false
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live connections.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) GetByUserID(userID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result
}

// GetByGameID returns every connection attached to the given game,
// players and spectators alike.
func (m *Manager) GetByGameID(gameID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if id, _ := session.CurrentGame(); id == gameID {
			result = append(result, session)
		}
	}
	return result
}

func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
