package persistence

import (
	"fmt"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
)

// Database is the durable-storage collaborator: crash-recovery snapshots of
// live games and the archive of finished ones. It backs quiz.Archiver; it is
// never consulted on the per-answer hot path.
type Database interface {
	SaveGame(snapshot quiz.Snapshot) error
	LoadGame(id string) (quiz.Snapshot, error)
	DeleteGame(id string) error
	SaveGameRecord(record quiz.GameRecord) error
	Close() error
}

var ErrRecordNotFound = fmt.Errorf("record not found")
