package postgres

import (
	"context"
	"fmt"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// CreateGraded inserts a graded result. The partial unique index on
// (user_id, quiz_id) WHERE is_practice = false makes the duplicate check part
// of the insert itself, so two concurrent submissions cannot both succeed.
func (r *ResultPostgreSQL) CreateGraded(ctx context.Context, result *models.Result) error {
	result.IsPractice = false

	insert := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
			Where: clause.Where{
				Exprs: []clause.Expression{clause.Eq{Column: "is_practice", Value: false}},
			},
			DoNothing: true,
		}).
		Create(result)

	if insert.Error != nil {
		return fmt.Errorf("failed to create result: %w", insert.Error)
	}
	if insert.RowsAffected == 0 {
		return repositories.ErrDuplicateResult
	}
	return nil
}

// CreatePractice inserts a practice result
func (r *ResultPostgreSQL) CreatePractice(ctx context.Context, result *models.Result) error {
	result.IsPractice = true
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create practice result: %w", err)
	}
	return nil
}

// GetByID retrieves a result by ID
func (r *ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByUserAndQuiz retrieves the graded attempt of a user for a quiz
func (r *ResultPostgreSQL) GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.Result, error) {
	var result models.Result
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		Where("user_id = ? AND quiz_id = ? AND is_practice = ?", userID, quizID, false).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HasNonPracticeResult checks whether a graded attempt exists
func (r *ResultPostgreSQL) HasNonPracticeResult(ctx context.Context, userID string, quizID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ? AND quiz_id = ? AND is_practice = ?", userID, quizID, false).
		Count(&count).Error
	return count > 0, err
}

// GetByUser retrieves a user's results
func (r *ResultPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	filters.UserID = &userID
	return r.List(ctx, filters)
}

// GetByQuiz retrieves results for a quiz
func (r *ResultPostgreSQL) GetByQuiz(ctx context.Context, quizID uint, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	filters.QuizID = &quizID
	return r.List(ctx, filters)
}

// List retrieves results with filters and pagination
func (r *ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Result{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var results []*models.Result
	err := query.
		Preload("Quiz").
		Preload("User").
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// GetQuizStats aggregates graded attempt statistics for a quiz
func (r *ResultPostgreSQL) GetQuizStats(ctx context.Context, quizID uint) (*repositories.QuizStats, error) {
	stats := &repositories.QuizStats{QuizID: quizID}

	var gradedAttempts, practiceAttempts int64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ? AND is_practice = ?", quizID, false).
		Count(&gradedAttempts).Error; err != nil {
		return nil, err
	}
	r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ? AND is_practice = ?", quizID, true).
		Count(&practiceAttempts)

	if gradedAttempts > 0 {
		var avgScore, bestScore float64
		var passedAttempts int64
		r.db.WithContext(ctx).
			Model(&models.Result{}).
			Select("AVG(score), MAX(score), SUM(CASE WHEN passed THEN 1 ELSE 0 END)").
			Where("quiz_id = ? AND is_practice = ?", quizID, false).
			Row().
			Scan(&avgScore, &bestScore, &passedAttempts)

		stats.AverageScore = avgScore
		stats.BestScore = bestScore
		stats.PassRate = float64(passedAttempts) / float64(gradedAttempts) * 100
	}

	stats.AttemptCount = int(gradedAttempts)
	stats.PracticeCount = int(practiceAttempts)
	return stats, nil
}

// GetSubjectStats aggregates graded attempt statistics across a subject
func (r *ResultPostgreSQL) GetSubjectStats(ctx context.Context, subjectID uint) (*repositories.SubjectStats, error) {
	stats := &repositories.SubjectStats{SubjectID: subjectID}

	var quizCount int64
	if err := r.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("subject_id = ?", subjectID).
		Count(&quizCount).Error; err != nil {
		return nil, err
	}
	stats.QuizCount = int(quizCount)

	var attemptCount int64
	r.db.WithContext(ctx).
		Table("results r").
		Joins("JOIN quizzes q ON r.quiz_id = q.id").
		Where("q.subject_id = ? AND r.is_practice = ?", subjectID, false).
		Count(&attemptCount)
	stats.AttemptCount = int(attemptCount)

	if attemptCount > 0 {
		var avgScore float64
		var passedAttempts int64
		r.db.WithContext(ctx).
			Table("results r").
			Joins("JOIN quizzes q ON r.quiz_id = q.id").
			Select("AVG(r.score), SUM(CASE WHEN r.passed THEN 1 ELSE 0 END)").
			Where("q.subject_id = ? AND r.is_practice = ?", subjectID, false).
			Row().
			Scan(&avgScore, &passedAttempts)

		stats.AverageScore = avgScore
		stats.PassRate = float64(passedAttempts) / float64(attemptCount) * 100
	}

	return stats, nil
}

// GetPlatformStats aggregates platform-wide counters
func (r *ResultPostgreSQL) GetPlatformStats(ctx context.Context) (*repositories.PlatformStats, error) {
	stats := &repositories.PlatformStats{}

	var totalUsers, totalQuizzes, totalSubjects, totalAttempts int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return nil, err
	}
	r.db.WithContext(ctx).Model(&models.Quiz{}).Count(&totalQuizzes)
	r.db.WithContext(ctx).Model(&models.Subject{}).Count(&totalSubjects)
	r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("is_practice = ?", false).
		Count(&totalAttempts)

	if totalAttempts > 0 {
		var avgScore float64
		r.db.WithContext(ctx).
			Model(&models.Result{}).
			Select("AVG(score)").
			Where("is_practice = ?", false).
			Row().
			Scan(&avgScore)
		stats.AverageScore = avgScore
	}

	stats.TotalUsers = int(totalUsers)
	stats.TotalQuizzes = int(totalQuizzes)
	stats.TotalSubjects = int(totalSubjects)
	stats.TotalAttempts = int(totalAttempts)
	return stats, nil
}

func (r *ResultPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.IsPractice != nil {
		query = query.Where("is_practice = ?", *filters.IsPractice)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
