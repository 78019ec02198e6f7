package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
)

// GormPostgreSQL is the GORM-backed implementation of Database.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// GameModel holds the latest snapshot of a live (or just-finished) game.
type GameModel struct {
	ID        uint          `gorm:"primaryKey"`
	GameID    string        `gorm:"uniqueIndex;not null"`
	Name      string        `gorm:"not null"`
	Category  string        `gorm:"index;not null"`
	Status    string        `gorm:"index;not null"`
	Snapshot  quiz.Snapshot `gorm:"serializer:json;type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameRecordModel is the post-game history row, written once per game.
type GameRecordModel struct {
	ID              uint                    `gorm:"primaryKey"`
	GameID          string                  `gorm:"index;not null"`
	Name            string                  `gorm:"not null"`
	Category        string                  `gorm:"index;not null"`
	WinnerID        string                  `gorm:"index"`
	Leaderboard     []quiz.LeaderboardEntry `gorm:"serializer:json;type:jsonb;not null"`
	Stats           quiz.Stats              `gorm:"serializer:json;type:jsonb;not null"`
	DurationSeconds int                     `gorm:"default:0"`
	CreatedAt       time.Time
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&GameModel{},
		&GameRecordModel{},
	)
}

// DB exposes the underlying handle for collaborators sharing the connection
// pool (the question catalog).
func (p *GormPostgreSQL) DB() *gorm.DB {
	return p.db
}

func (p *GormPostgreSQL) SaveGame(snapshot quiz.Snapshot) error {
	var game GameModel
	result := p.db.Where("game_id = ?", snapshot.ID).First(&game)

	if result.Error == gorm.ErrRecordNotFound {
		game = GameModel{
			GameID:   snapshot.ID,
			Name:     snapshot.Name,
			Category: snapshot.Category,
			Status:   string(snapshot.Status),
			Snapshot: snapshot,
		}
		return p.db.Create(&game).Error
	} else if result.Error != nil {
		return result.Error
	}

	game.Status = string(snapshot.Status)
	game.Snapshot = snapshot
	game.UpdatedAt = time.Now()
	return p.db.Save(&game).Error
}

func (p *GormPostgreSQL) LoadGame(id string) (quiz.Snapshot, error) {
	var game GameModel
	if err := p.db.Where("game_id = ?", id).First(&game).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return quiz.Snapshot{}, ErrRecordNotFound
		}
		return quiz.Snapshot{}, err
	}
	return game.Snapshot, nil
}

func (p *GormPostgreSQL) DeleteGame(id string) error {
	return p.db.Where("game_id = ?", id).Delete(&GameModel{}).Error
}

func (p *GormPostgreSQL) SaveGameRecord(record quiz.GameRecord) error {
	row := GameRecordModel{
		GameID:          record.GameID,
		Name:            record.Name,
		Category:        record.Category,
		WinnerID:        record.WinnerID,
		Leaderboard:     record.Leaderboard,
		Stats:           record.Stats,
		DurationSeconds: record.DurationSeconds,
	}
	return p.db.Create(&row).Error
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
