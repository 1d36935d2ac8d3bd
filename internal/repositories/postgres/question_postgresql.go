package postgres

import (
	"context"
	"fmt"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// Create creates a question, assigning the next order position when unset
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if question.Order == 0 {
			next, err := nextOrder(tx, question.QuizID)
			if err != nil {
				return fmt.Errorf("failed to determine question order: %w", err)
			}
			question.Order = next
		}
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
}

// CreateBatch creates multiple questions in a single transaction, preserving
// their slice order as display order.
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextOrder(tx, questions[0].QuizID)
		if err != nil {
			return fmt.Errorf("failed to determine question order: %w", err)
		}
		for i, question := range questions {
			question.Order = next + i
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// Delete removes a question
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

// GetByQuiz retrieves all questions of a quiz ordered by position
func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("\"order\" ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByQuiz counts the questions of a quiz
func (q *QuestionPostgreSQL) CountByQuiz(ctx context.Context, quizID uint) (int, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return int(count), err
}

// Reorder rewrites the display order of a quiz's questions. orderedIDs must
// contain exactly the quiz's question IDs.
func (q *QuestionPostgreSQL) Reorder(ctx context.Context, quizID uint, orderedIDs []uint) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(orderedIDs) {
			return fmt.Errorf("reorder list has %d entries, quiz has %d questions", len(orderedIDs), count)
		}

		for i, id := range orderedIDs {
			result := tx.Model(&models.Question{}).
				Where("id = ? AND quiz_id = ?", id, quizID).
				Update("order", i+1)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder question %d: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %d does not belong to quiz %d", id, quizID)
			}
		}
		return nil
	})
}

// GetNextOrder returns the next free order position for a quiz
func (q *QuestionPostgreSQL) GetNextOrder(ctx context.Context, quizID uint) (int, error) {
	return nextOrder(q.db.WithContext(ctx), quizID)
}

func nextOrder(tx *gorm.DB, quizID uint) (int, error) {
	var maxOrder int
	err := tx.Model(&models.Question{}).
		Select("COALESCE(MAX(\"order\"), 0)").
		Where("quiz_id = ?", quizID).
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}
