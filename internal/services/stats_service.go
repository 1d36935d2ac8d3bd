package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// StatsService aggregates attempt statistics and produces the XLSX result
// export teachers download for a quiz.
type StatsService interface {
	GetQuizStats(ctx context.Context, quizID uint, userID string, role models.UserRole) (*repositories.QuizStats, error)
	GetSubjectStats(ctx context.Context, subjectID uint, userID string, role models.UserRole) (*repositories.SubjectStats, error)
	GetPlatformStats(ctx context.Context, userID string, role models.UserRole) (*repositories.PlatformStats, error)

	// ExportQuizResults renders every graded result of a quiz into an XLSX
	// workbook and returns the serialized file.
	ExportQuizResults(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, string, error)
}

type statsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewStatsService(repo repositories.Repository, logger *slog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger,
	}
}

func (s *statsService) GetQuizStats(ctx context.Context, quizID uint, userID string, role models.UserRole) (*repositories.QuizStats, error) {
	if _, err := s.ownedQuiz(ctx, quizID, userID, role, "view stats for"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Quiz().GetStats(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) GetSubjectStats(ctx context.Context, subjectID uint, userID string, role models.UserRole) (*repositories.SubjectStats, error) {
	if role != models.RoleAdmin && role != models.RoleTeacher {
		return nil, NewPermissionError(userID, subjectID, "subject", "view stats for", "teacher or admin role required")
	}

	if _, err := s.repo.Subject().GetByID(ctx, subjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	stats, err := s.repo.Result().GetSubjectStats(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) GetPlatformStats(ctx context.Context, userID string, role models.UserRole) (*repositories.PlatformStats, error) {
	if role != models.RoleAdmin {
		return nil, NewPermissionError(userID, 0, "platform", "view stats for", "admin role required")
	}

	stats, err := s.repo.Result().GetPlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	return stats, nil
}

const exportSheet = "Results"

func (s *statsService) ExportQuizResults(ctx context.Context, quizID uint, userID string, role models.UserRole) ([]byte, string, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, userID, role, "export results for")
	if err != nil {
		return nil, "", err
	}

	practice := false
	results, _, err := s.repo.Result().GetByQuiz(ctx, quizID, repositories.ResultFilters{
		IsPractice: &practice,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load results: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(exportSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	file.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Student Name", "Score", "Correct Answers", "Total Questions", "Points", "Max Points", "Passed", "Submitted At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := file.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, result := range results {
		values := []interface{}{
			result.UserID,
			result.User.FullName,
			result.Score,
			result.CorrectAnswers,
			result.TotalQuestions,
			result.TotalPoints,
			result.MaxPossiblePoints,
			result.Passed,
			result.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build cell: %w", err)
			}
			if err := file.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write result row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("quiz-%d-results.xlsx", quizID)
	s.logger.Info("Exported quiz results", "quiz_id", quizID, "rows", len(results), "title", quiz.Title)

	return buf.Bytes(), filename, nil
}

func (s *statsService) ownedQuiz(ctx context.Context, quizID uint, userID string, role models.UserRole, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if role != models.RoleAdmin && quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, quizID, "quiz", action, "not the quiz owner")
	}
	return quiz, nil
}
