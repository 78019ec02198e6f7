package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
)

// PostgreSQL is the database/sql implementation of Database, for deployments
// that prefer raw SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS games (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(255) UNIQUE NOT NULL,
            name VARCHAR(255) NOT NULL,
            category VARCHAR(100) NOT NULL,
            status VARCHAR(50) NOT NULL,
            snapshot JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(255) NOT NULL,
            name VARCHAR(255) NOT NULL,
            category VARCHAR(100) NOT NULL,
            winner_id VARCHAR(255),
            leaderboard JSONB NOT NULL,
            stats JSONB NOT NULL,
            duration_seconds INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_games_game_id ON games(game_id);
        CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
        CREATE INDEX IF NOT EXISTS idx_game_records_game_id ON game_records(game_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
    `)

	return err
}

func (p *PostgreSQL) SaveGame(snapshot quiz.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO games (game_id, name, category, status, snapshot)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (game_id)
        DO UPDATE SET status = $4, snapshot = $5, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.Name, snapshot.Category, string(snapshot.Status), data)
	return err
}

func (p *PostgreSQL) LoadGame(id string) (quiz.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT snapshot FROM games WHERE game_id = $1`
	err := p.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Snapshot{}, ErrRecordNotFound
		}
		return quiz.Snapshot{}, err
	}

	var snapshot quiz.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return quiz.Snapshot{}, err
	}
	return snapshot, nil
}

func (p *PostgreSQL) DeleteGame(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM games WHERE game_id = $1`, id)
	return err
}

func (p *PostgreSQL) SaveGameRecord(record quiz.GameRecord) error {
	leaderboard, err := json.Marshal(record.Leaderboard)
	if err != nil {
		return err
	}
	stats, err := json.Marshal(record.Stats)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_records (game_id, name, category, winner_id, leaderboard, stats, duration_seconds)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err = p.db.ExecContext(ctx, query,
		record.GameID, record.Name, record.Category, record.WinnerID,
		leaderboard, stats, record.DurationSeconds)
	return err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
