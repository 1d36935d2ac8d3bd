package repositories

import (
	"context"

	"github.com/quizforge/quiz-service/internal/models"
)

// QuizRepository interface for quiz-specific operations
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) // Questions ordered by "order"
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetBySubject(ctx context.Context, subjectID uint, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetByCreator(ctx context.Context, creatorID string, filters QuizFilters) ([]*models.Quiz, int64, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error

	// Permission checks
	IsOwner(ctx context.Context, quizID uint, userID string) (bool, error)

	// Validation helpers
	ExistsByTitle(ctx context.Context, title string, creatorID string, excludeID *uint) (bool, error)
	HasResults(ctx context.Context, id uint) (bool, error)

	// Statistics
	GetStats(ctx context.Context, id uint) (*QuizStats, error)
}

// QuestionRepository interface for question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) // Ordered by "order"
	CountByQuiz(ctx context.Context, quizID uint) (int, error)

	// Ordering
	Reorder(ctx context.Context, quizID uint, orderedIDs []uint) error
	GetNextOrder(ctx context.Context, quizID uint) (int, error)
}
