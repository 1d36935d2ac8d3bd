package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSubjectFixture(t *testing.T) (*MockRepository, SubjectService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := NewMockRepository()
	return repo, NewSubjectService(repo, logger, validator.New())
}

func TestSubjectService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates a subject", func(t *testing.T) {
		repo, service := newSubjectFixture(t)

		repo.SubjectRepo.On("ExistsByName", ctx, "Mathematics", (*uint)(nil)).Return(false, nil)
		repo.SubjectRepo.On("Create", ctx, mock.AnythingOfType("*models.Subject")).Return(nil)

		subject, err := service.Create(ctx, &CreateSubjectRequest{Name: "Mathematics"}, "admin-1", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "Mathematics", subject.Name)
		assert.Equal(t, "admin-1", subject.CreatedBy)
	})

	t.Run("teacher cannot create subjects", func(t *testing.T) {
		_, service := newSubjectFixture(t)

		_, err := service.Create(ctx, &CreateSubjectRequest{Name: "Mathematics"}, "teacher-1", models.RoleTeacher)

		var permissionErr *PermissionError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		repo, service := newSubjectFixture(t)

		repo.SubjectRepo.On("ExistsByName", ctx, "Mathematics", (*uint)(nil)).Return(true, nil)

		_, err := service.Create(ctx, &CreateSubjectRequest{Name: "Mathematics"}, "admin-1", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrSubjectDuplicateName)
	})
}

func TestSubjectService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("subject with quizzes cannot be deleted", func(t *testing.T) {
		repo, service := newSubjectFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(1)).Return(&models.Subject{ID: 1, Name: "Mathematics"}, nil)
		repo.SubjectRepo.On("HasQuizzes", ctx, uint(1)).Return(true, nil)

		err := service.Delete(ctx, 1, "admin-1", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrSubjectNotDeletable)
	})

	t.Run("empty subject is deleted", func(t *testing.T) {
		repo, service := newSubjectFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(1)).Return(&models.Subject{ID: 1, Name: "Mathematics"}, nil)
		repo.SubjectRepo.On("HasQuizzes", ctx, uint(1)).Return(false, nil)
		repo.SubjectRepo.On("Delete", ctx, uint(1)).Return(nil)

		err := service.Delete(ctx, 1, "admin-1", models.RoleAdmin)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing subject reports not found", func(t *testing.T) {
		repo, service := newSubjectFixture(t)

		repo.SubjectRepo.On("GetByID", ctx, uint(9)).Return(nil, errRecordNotFound())

		err := service.Delete(ctx, 9, "admin-1", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrSubjectNotFound)
	})
}
