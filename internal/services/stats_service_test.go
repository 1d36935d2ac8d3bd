package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newStatsFixture(t *testing.T) (*MockRepository, StatsService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := NewMockRepository()
	return repo, NewStatsService(repo, logger)
}

func TestStatsService_GetQuizStats(t *testing.T) {
	ctx := context.Background()

	t.Run("owner reads quiz stats", func(t *testing.T) {
		repo, service := newStatsFixture(t)

		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)
		repo.QuizRepo.On("GetStats", ctx, uint(10)).Return(&repositories.QuizStats{
			QuizID:       10,
			AttemptCount: 3,
			AverageScore: 6.5,
			PassRate:     0.66,
		}, nil)

		stats, err := service.GetQuizStats(ctx, 10, "teacher-1", models.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.AttemptCount)
	})

	t.Run("non-owner teacher is denied", func(t *testing.T) {
		repo, service := newStatsFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)

		_, err := service.GetQuizStats(ctx, 10, "teacher-2", models.RoleTeacher)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})
}

func TestStatsService_GetPlatformStats(t *testing.T) {
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		_, service := newStatsFixture(t)

		_, err := service.GetPlatformStats(ctx, "teacher-1", models.RoleTeacher)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("returns platform counters", func(t *testing.T) {
		repo, service := newStatsFixture(t)

		repo.ResultRepo.On("GetPlatformStats", ctx).Return(&repositories.PlatformStats{
			TotalUsers:   5,
			TotalQuizzes: 2,
		}, nil)

		stats, err := service.GetPlatformStats(ctx, "admin-1", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.TotalUsers)
	})
}

func TestStatsService_ExportQuizResults(t *testing.T) {
	ctx := context.Background()

	t.Run("exports graded results as a workbook", func(t *testing.T) {
		repo, service := newStatsFixture(t)

		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)
		repo.ResultRepo.On("GetByQuiz", ctx, uint(10), mock.MatchedBy(func(f repositories.ResultFilters) bool {
			return f.IsPractice != nil && !*f.IsPractice
		})).Return([]*models.Result{
			{
				UserID:            "student-1",
				QuizID:            10,
				Score:             7.5,
				CorrectAnswers:    3,
				TotalQuestions:    4,
				TotalPoints:       6,
				MaxPossiblePoints: 8,
				Passed:            true,
				CreatedAt:         time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				User:              models.User{ID: "student-1", FullName: "Ada Lovelace"},
			},
		}, int64(1), nil)

		data, filename, err := service.ExportQuizResults(ctx, 10, "teacher-1", models.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, "quiz-10-results.xlsx", filename)
		require.NotEmpty(t, data)

		// The payload must be a readable workbook with the expected cells
		file, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer file.Close()

		name, err := file.GetCellValue("Results", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", name)

		score, err := file.GetCellValue("Results", "C2")
		require.NoError(t, err)
		assert.Equal(t, "7.5", score)
	})

	t.Run("student cannot export", func(t *testing.T) {
		repo, service := newStatsFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)

		_, _, err := service.ExportQuizResults(ctx, 10, "student-1", models.RoleStudent)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})
}
