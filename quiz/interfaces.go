package quiz

// Broadcaster is the engine's view of the real-time transport. Implemented by
// the broadcast package; defined here so the engine does not depend on it.
type Broadcaster interface {
	ToGame(gameID string, msgID uint16, v interface{})
	ToUser(userID string, msgID uint16, v interface{})
	ToLobby(msgID uint16, v interface{})
}

// GameRecord is the archive row written once when a game finishes.
type GameRecord struct {
	GameID          string             `json:"gameId"`
	Name            string             `json:"name"`
	Category        string             `json:"category"`
	WinnerID        string             `json:"winnerId"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	Stats           Stats              `json:"stats"`
	DurationSeconds int                `json:"durationSeconds"`
}

// Archiver is the durable-storage collaborator. Writes happen on every
// state-changing operation; a failed write is logged and flagged, never
// surfaced to players.
type Archiver interface {
	SaveGame(snapshot Snapshot) error
	SaveGameRecord(record GameRecord) error
	DeleteGame(id string) error
}
