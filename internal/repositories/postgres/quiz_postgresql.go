package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// Create creates a new quiz in draft status
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.Status = models.QuizStatusDraft
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID retrieves a quiz by ID
func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Preload("Subject").
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetByIDWithQuestions retrieves a quiz with its questions ordered by position
func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Preload("Subject").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}

	q.calculateComputedFields(&quiz)
	return &quiz, nil
}

// Update updates a quiz
func (q *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Quiz
		if err := tx.First(&current, quiz.ID).Error; err != nil {
			return fmt.Errorf("quiz not found: %w", err)
		}

		if quiz.Title != current.Title {
			exists, err := q.ExistsByTitle(ctx, quiz.Title, quiz.CreatedBy, &quiz.ID)
			if err != nil {
				return fmt.Errorf("failed to check title uniqueness: %w", err)
			}
			if exists {
				return fmt.Errorf("quiz with title '%s' already exists for this creator", quiz.Title)
			}
		}

		quiz.UpdatedAt = time.Now()
		if err := tx.Save(quiz).Error; err != nil {
			return fmt.Errorf("failed to update quiz: %w", err)
		}
		return nil
	})
}

// Delete soft deletes a quiz
func (q *QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

// List retrieves quizzes with filters and pagination
func (q *QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	query := q.applyFilters(q.db.WithContext(ctx).Model(&models.Quiz{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.applyPaginationAndSort(query, filters)

	var quizzes []*models.Quiz
	if err := query.Preload("Subject").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// GetBySubject retrieves quizzes for a subject
func (q *QuizPostgreSQL) GetBySubject(ctx context.Context, subjectID uint, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	filters.SubjectID = &subjectID
	return q.List(ctx, filters)
}

// GetByCreator retrieves quizzes created by a specific user
func (q *QuizPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	filters.CreatedBy = &creatorID
	return q.List(ctx, filters)
}

// UpdateStatus updates the status of a quiz
func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error {
	return q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// IsOwner checks if a user is the owner of a quiz
func (q *QuizPostgreSQL) IsOwner(ctx context.Context, quizID uint, userID string) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ? AND created_by = ?", quizID, userID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByTitle checks if a quiz with the same title exists for a creator
func (q *QuizPostgreSQL) ExistsByTitle(ctx context.Context, title string, creatorID string, excludeID *uint) (bool, error) {
	query := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("title = ? AND created_by = ?", title, creatorID)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// HasResults checks if a quiz has any submitted results
func (q *QuizPostgreSQL) HasResults(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// GetStats retrieves attempt statistics for a quiz
func (q *QuizPostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error) {
	stats := &repositories.QuizStats{QuizID: id}

	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Select("id", "passing_score").First(&quiz, id).Error; err != nil {
		return nil, err
	}

	var gradedAttempts, practiceAttempts int64
	q.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ? AND is_practice = ?", id, false).
		Count(&gradedAttempts)
	q.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ? AND is_practice = ?", id, true).
		Count(&practiceAttempts)

	if gradedAttempts > 0 {
		var avgScore, bestScore float64
		var passedAttempts int64
		q.db.WithContext(ctx).
			Model(&models.Result{}).
			Select("AVG(score), MAX(score), SUM(CASE WHEN passed THEN 1 ELSE 0 END)").
			Where("quiz_id = ? AND is_practice = ?", id, false).
			Row().
			Scan(&avgScore, &bestScore, &passedAttempts)

		stats.AverageScore = avgScore
		stats.BestScore = bestScore
		stats.PassRate = float64(passedAttempts) / float64(gradedAttempts) * 100
	}

	var questionCount int64
	var totalPoints float64
	q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("COUNT(*), COALESCE(SUM(points), 0)").
		Where("quiz_id = ?", id).
		Row().
		Scan(&questionCount, &totalPoints)

	stats.AttemptCount = int(gradedAttempts)
	stats.PracticeCount = int(practiceAttempts)
	stats.QuestionCount = int(questionCount)
	stats.TotalPoints = totalPoints

	return stats, nil
}

// Helper methods

func (q *QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}

func (q *QuizPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	sortBy := filters.SortBy
	if sortBy != "created_at" && sortBy != "title" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

func (q *QuizPostgreSQL) calculateComputedFields(quiz *models.Quiz) {
	quiz.QuestionsCount = len(quiz.Questions)

	totalPoints := 0.0
	for _, question := range quiz.Questions {
		totalPoints += question.Points
	}
	quiz.TotalPoints = totalPoints
}
