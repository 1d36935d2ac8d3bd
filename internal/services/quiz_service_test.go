package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/events"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQuizFixture(t *testing.T) (*MockRepository, *events.MockEventPublisher, QuizService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	questionCache := cache.NewQuestionCache(newMemoryCache(), logger)

	service := NewQuizService(repo, logger, validator.New(), questionCache, publisher)
	return repo, publisher, service
}

func validQuestionRequest() QuestionRequest {
	return QuestionRequest{
		Type:           models.SingleChoice,
		Text:           "2 + 2 = ?",
		Options:        []string{"3", "4", "5"},
		CorrectAnswers: []string{"4"},
		Points:         2,
	}
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates quiz with questions", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(1)).Return(&models.Subject{ID: 1, Name: "Math"}, nil)
		repo.QuizRepo.On("ExistsByTitle", ctx, "Algebra basics", "teacher-1", (*uint)(nil)).Return(false, nil)
		repo.QuizRepo.On("Create", ctx, mock.AnythingOfType("*models.Quiz")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Quiz).ID = 10
			}).Return(nil)
		repo.QuestionRepo.On("CreateBatch", ctx, mock.AnythingOfType("[]*models.Question")).Return(nil)

		// The final read-back after the transaction
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(&models.Quiz{
			ID: 10, Title: "Algebra basics", SubjectID: 1,
			Status: models.QuizStatusDraft, CreatedBy: "teacher-1",
		}, nil)
		repo.QuestionRepo.On("GetByQuiz", ctx, uint(10)).Return(sampleQuestions(t, 10), nil)

		resp, err := service.Create(ctx, &CreateQuizRequest{
			Title:     "Algebra basics",
			SubjectID: 1,
			Questions: []QuestionRequest{validQuestionRequest()},
		}, "teacher-1")

		require.NoError(t, err)
		assert.Equal(t, uint(10), resp.ID)
		assert.Equal(t, models.QuizStatusDraft, resp.Status)
		assert.Len(t, resp.QuestionList, 2)
		assert.Equal(t, 4.0, resp.TotalPoints)

		repo.AssertExpectations(t)
	})

	t.Run("duplicate title per creator is rejected", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(1)).Return(&models.Subject{ID: 1}, nil)
		repo.QuizRepo.On("ExistsByTitle", ctx, "Algebra basics", "teacher-1", (*uint)(nil)).Return(true, nil)

		_, err := service.Create(ctx, &CreateQuizRequest{Title: "Algebra basics", SubjectID: 1}, "teacher-1")
		assert.ErrorIs(t, err, ErrQuizDuplicateTitle)
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(9)).Return(nil, errRecordNotFound())

		_, err := service.Create(ctx, &CreateQuizRequest{Title: "Algebra basics", SubjectID: 9}, "teacher-1")
		assert.ErrorIs(t, err, ErrSubjectNotFound)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		_, _, service := newQuizFixture(t)

		_, err := service.Create(ctx, &CreateQuizRequest{SubjectID: 1}, "teacher-1")

		var validationErrors ValidationErrors
		assert.ErrorAs(t, err, &validationErrors)
	})

	t.Run("single choice question with two correct answers is rejected", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(1)).Return(&models.Subject{ID: 1}, nil)
		repo.QuizRepo.On("ExistsByTitle", ctx, "Algebra basics", "teacher-1", (*uint)(nil)).Return(false, nil)
		repo.QuizRepo.On("Create", ctx, mock.AnythingOfType("*models.Quiz")).Return(nil)

		bad := validQuestionRequest()
		bad.CorrectAnswers = []string{"3", "4"}

		_, err := service.Create(ctx, &CreateQuizRequest{
			Title:     "Algebra basics",
			SubjectID: 1,
			Questions: []QuestionRequest{bad},
		}, "teacher-1")

		var businessErr *BusinessRuleError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, "question_answer_key", businessErr.Rule)
	})
}

func TestQuizService_Visibility(t *testing.T) {
	ctx := context.Background()

	draftQuiz := func() *models.Quiz {
		return &models.Quiz{ID: 10, Title: "Algebra basics", Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
	}

	t.Run("student cannot read a draft quiz", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(draftQuiz(), nil)

		_, err := service.GetByID(ctx, 10, "student-1", models.RoleStudent)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("owner reads draft with answer keys", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(draftQuiz(), nil)
		repo.QuestionRepo.On("GetByQuiz", ctx, uint(10)).Return(sampleQuestions(t, 10), nil)

		resp, err := service.GetByIDWithQuestions(ctx, 10, "teacher-1", models.RoleTeacher)
		require.NoError(t, err)
		require.Len(t, resp.QuestionList, 2)
		assert.Equal(t, []string{"4"}, resp.QuestionList[0].CorrectAnswers)
	})

	t.Run("student reads active quiz without answer keys", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)
		repo.QuestionRepo.On("GetByQuiz", ctx, uint(10)).Return(sampleQuestions(t, 10), nil)

		resp, err := service.GetByIDWithQuestions(ctx, 10, "student-1", models.RoleStudent)
		require.NoError(t, err)
		require.Len(t, resp.QuestionList, 2)
		assert.Empty(t, resp.QuestionList[0].CorrectAnswers)
		assert.Equal(t, []string{"3", "4", "5"}, resp.QuestionList[0].Options)
	})

	t.Run("student list is forced to active quizzes", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.QuizRepo.On("List", ctx, mock.MatchedBy(func(f repositories.QuizFilters) bool {
			return f.Status != nil && *f.Status == models.QuizStatusActive
		})).Return([]*models.Quiz{}, int64(0), nil)

		_, err := service.List(ctx, repositories.QuizFilters{}, "student-1", models.RoleStudent)
		require.NoError(t, err)
		repo.QuizRepo.AssertExpectations(t)
	})
}

func TestQuizService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes draft with questions and emits event", func(t *testing.T) {
		repo, publisher, service := newQuizFixture(t)

		quiz := &models.Quiz{ID: 10, Title: "Algebra basics", SubjectID: 1, Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(quiz, nil)
		repo.QuestionRepo.On("CountByQuiz", ctx, uint(10)).Return(2, nil)
		repo.QuizRepo.On("UpdateStatus", ctx, uint(10), models.QuizStatusActive).Return(nil)

		err := service.Publish(ctx, 10, "teacher-1", models.RoleTeacher)
		require.NoError(t, err)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventQuizPublished, published[0].Type)
	})

	t.Run("empty quiz cannot be published", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		quiz := &models.Quiz{ID: 10, Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(quiz, nil)
		repo.QuestionRepo.On("CountByQuiz", ctx, uint(10)).Return(0, nil)

		err := service.Publish(ctx, 10, "teacher-1", models.RoleTeacher)
		assert.ErrorIs(t, err, ErrQuizEmpty)
	})

	t.Run("active quiz cannot be published again", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)

		err := service.Publish(ctx, 10, "teacher-1", models.RoleTeacher)
		assert.ErrorIs(t, err, ErrQuizInvalidStatus)
	})

	t.Run("non-owner cannot publish", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		quiz := &models.Quiz{ID: 10, Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(quiz, nil)

		err := service.Publish(ctx, 10, "teacher-2", models.RoleTeacher)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})
}

func TestQuizService_QuestionMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("question cannot be added to a published quiz", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)

		req := validQuestionRequest()
		_, err := service.AddQuestion(ctx, 10, &req, "teacher-1", models.RoleTeacher)
		assert.ErrorIs(t, err, ErrQuestionQuizPublished)
	})

	t.Run("adds question to a draft quiz", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		quiz := &models.Quiz{ID: 10, Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(quiz, nil)
		repo.QuestionRepo.On("Create", ctx, mock.AnythingOfType("*models.Question")).Return(nil)

		req := validQuestionRequest()
		resp, err := service.AddQuestion(ctx, 10, &req, "teacher-1", models.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, []string{"4"}, resp.CorrectAnswers)
	})

	t.Run("question from another quiz cannot be updated", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		quiz := &models.Quiz{ID: 10, Status: models.QuizStatusDraft, CreatedBy: "teacher-1"}
		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(quiz, nil)
		repo.QuestionRepo.On("GetByID", ctx, uint(5)).Return(&models.Question{ID: 5, QuizID: 99}, nil)

		req := validQuestionRequest()
		_, err := service.UpdateQuestion(ctx, 10, 5, &req, "teacher-1", models.RoleTeacher)
		assert.ErrorIs(t, err, ErrQuestionNotInQuiz)
	})
}

func TestQuizService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("quiz with recorded results cannot be deleted", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)
		repo.QuizRepo.On("HasResults", ctx, uint(10)).Return(true, nil)

		err := service.Delete(ctx, 10, "teacher-1", models.RoleTeacher)
		assert.ErrorIs(t, err, ErrQuizNotDeletable)
	})

	t.Run("deletes quiz without results", func(t *testing.T) {
		repo, _, service := newQuizFixture(t)

		repo.QuizRepo.On("GetByID", ctx, uint(10)).Return(activeQuiz(10), nil)
		repo.QuizRepo.On("HasResults", ctx, uint(10)).Return(false, nil)
		repo.QuizRepo.On("Delete", ctx, uint(10)).Return(nil)

		err := service.Delete(ctx, 10, "teacher-1", models.RoleTeacher)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
