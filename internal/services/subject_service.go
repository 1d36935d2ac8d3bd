package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/validator"
)

// SubjectService manages the subject catalog. Mutations are admin-only;
// reads are open to every authenticated user.
type SubjectService interface {
	Create(ctx context.Context, req *CreateSubjectRequest, userID string, role models.UserRole) (*models.Subject, error)
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	Update(ctx context.Context, id uint, req *UpdateSubjectRequest, userID string, role models.UserRole) (*models.Subject, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error
	List(ctx context.Context, limit, offset int) (*SubjectListResponse, error)
}

type CreateSubjectRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateSubjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type SubjectListResponse struct {
	Subjects []*models.Subject `json:"subjects"`
	Total    int64             `json:"total"`
}

type subjectService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *subjectService) Create(ctx context.Context, req *CreateSubjectRequest, userID string, role models.UserRole) (*models.Subject, error) {
	if role != models.RoleAdmin {
		return nil, NewPermissionError(userID, 0, "subject", "create", "admin role required")
	}

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	exists, err := s.repo.Subject().ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject name: %w", err)
	}
	if exists {
		return nil, ErrSubjectDuplicateName
	}

	subject := &models.Subject{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}

	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "name", subject.Name)
	return subject, nil
}

func (s *subjectService) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req *UpdateSubjectRequest, userID string, role models.UserRole) (*models.Subject, error) {
	if role != models.RoleAdmin {
		return nil, NewPermissionError(userID, id, "subject", "update", "admin role required")
	}

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		exists, err := s.repo.Subject().ExistsByName(ctx, *req.Name, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject name: %w", err)
		}
		if exists {
			return nil, ErrSubjectDuplicateName
		}
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = req.Description
	}

	if err := s.repo.Subject().Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}

	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	if role != models.RoleAdmin {
		return NewPermissionError(userID, id, "subject", "delete", "admin role required")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	hasQuizzes, err := s.repo.Subject().HasQuizzes(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check subject quizzes: %w", err)
	}
	if hasQuizzes {
		return ErrSubjectNotDeletable
	}

	if err := s.repo.Subject().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.logger.Info("Subject deleted", "subject_id", id)
	return nil
}

func (s *subjectService) List(ctx context.Context, limit, offset int) (*SubjectListResponse, error) {
	subjects, total, err := s.repo.Subject().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return &SubjectListResponse{Subjects: subjects, Total: total}, nil
}
