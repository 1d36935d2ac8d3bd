package repositories

import (
	"context"

	"github.com/quizforge/quiz-service/internal/models"
)

// UserRepository interface for user operations (minimal for the quiz service;
// identity itself lives in Casdoor).
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int64, error)
}

// SubjectRepository interface for the subject catalog.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, limit, offset int) ([]*models.Subject, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID *uint) (bool, error)
	HasQuizzes(ctx context.Context, id uint) (bool, error)
}
