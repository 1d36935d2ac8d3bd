package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/validator"
)

// UserService keeps the local user table in sync with the identity provider
// and exposes the admin management surface.
type UserService interface {
	// SyncUser upserts the local record from verified token claims and is
	// called on every authenticated request path that needs the user row.
	SyncUser(ctx context.Context, claims *UserClaims) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters, userID string, role models.UserRole) (*UserListResponse, error)
	UpdateRole(ctx context.Context, targetID string, newRole models.UserRole, userID string, role models.UserRole) error
	SetActive(ctx context.Context, targetID string, active bool, userID string, role models.UserRole) error
}

// UserClaims are the identity fields extracted from a verified access token
type UserClaims struct {
	UserID   string          `json:"user_id" validate:"required"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email" validate:"required,email"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *userService) SyncUser(ctx context.Context, claims *UserClaims) (*models.User, error) {
	if err := s.validator.ValidateStruct(claims); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	now := time.Now()

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		role := claims.Role
		if role == "" {
			role = models.RoleStudent
		}
		user = &models.User{
			ID:          claims.UserID,
			FullName:    claims.FullName,
			Email:       claims.Email,
			Role:        role,
			IsActive:    true,
			LastLoginAt: &now,
		}
		if err := s.repo.User().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		s.logger.Info("User provisioned", "user_id", user.ID, "role", user.Role)
		return user, nil
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Role changes come through the admin API, not token claims
	user.FullName = claims.FullName
	user.Email = claims.Email
	user.LastLoginAt = &now
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, userID string, role models.UserRole) (*UserListResponse, error) {
	if role != models.RoleAdmin {
		return nil, NewPermissionError(userID, 0, "user", "list", "admin role required")
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users:  users,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *userService) UpdateRole(ctx context.Context, targetID string, newRole models.UserRole, userID string, role models.UserRole) error {
	if role != models.RoleAdmin {
		return NewPermissionError(userID, 0, "user", "update role", "admin role required")
	}

	switch newRole {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
	default:
		return ErrInvalidRole
	}

	if err := s.repo.User().UpdateRole(ctx, targetID, newRole); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("User role updated", "target_id", targetID, "role", newRole, "by", userID)
	return nil
}

func (s *userService) SetActive(ctx context.Context, targetID string, active bool, userID string, role models.UserRole) error {
	if role != models.RoleAdmin {
		return NewPermissionError(userID, 0, "user", "activate/deactivate", "admin role required")
	}
	if targetID == userID && !active {
		return NewBusinessRuleError("self_deactivation", "admins cannot deactivate their own account", nil)
	}

	if err := s.repo.User().SetActive(ctx, targetID, active); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User active flag updated", "target_id", targetID, "active", active, "by", userID)
	return nil
}
