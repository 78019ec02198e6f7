package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
)

// Catalog is the question-catalog collaborator. Every question it returns
// satisfies the option invariant: exactly four options, exactly one correct.
type Catalog interface {
	FetchQuestions(ctx context.Context, category string, count int, difficulty string) ([]quiz.Question, error)
}

// QuestionModel is the catalog row. Authoring, approval and usage statistics
// belong to the catalog service; the engine only reads approved rows.
type QuestionModel struct {
	gorm.Model
	QuestionID  string        `gorm:"uniqueIndex;not null"`
	Text        string        `gorm:"not null"`
	Options     []quiz.Option `gorm:"serializer:json;type:jsonb;not null"`
	Explanation string        `gorm:"not null"`
	Category    string        `gorm:"index;not null"`
	Difficulty  string        `gorm:"index;default:medium"`
	Approved    bool          `gorm:"default:true"`
	Enabled     bool          `gorm:"default:true"`
}

func (QuestionModel) TableName() string {
	return "questions"
}

// GormCatalog reads questions from the shared PostgreSQL catalog.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) (*GormCatalog, error) {
	if err := db.AutoMigrate(&QuestionModel{}); err != nil {
		return nil, err
	}
	return &GormCatalog{db: db}, nil
}

// FetchQuestions picks count random approved questions. The category "mixed"
// (or empty) draws from all categories; an empty difficulty draws from all
// difficulties. Rows violating the option invariant are skipped with a
// warning rather than poisoning a game.
func (c *GormCatalog) FetchQuestions(ctx context.Context, category string, count int, difficulty string) ([]quiz.Question, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}

	query := c.db.WithContext(ctx).
		Where("approved = ? AND enabled = ?", true, true)
	if category != "" && category != "mixed" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var rows []QuestionModel
	if err := query.Order("RANDOM()").Limit(count).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q := quiz.Question{
			ID:          row.QuestionID,
			Text:        row.Text,
			Options:     row.Options,
			Explanation: row.Explanation,
			Category:    row.Category,
			Difficulty:  row.Difficulty,
		}
		if err := q.Validate(); err != nil {
			logger.Log.Warnf("Skipping malformed catalog question: %v", err)
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no usable questions for category %q difficulty %q", category, difficulty)
	}
	return questions, nil
}
