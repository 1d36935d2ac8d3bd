package repositories

import (
	"context"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
)

// ResultRepository interface for scored submission records. Results are
// append-only: there is no update or delete.
type ResultRepository interface {
	// CreateGraded inserts a non-practice result. The insert is conditional
	// and atomic: if a graded result already exists for (UserID, QuizID) it
	// returns ErrDuplicateResult and writes nothing.
	CreateGraded(ctx context.Context, result *models.Result) error

	// CreatePractice inserts a practice result; practice attempts are
	// unlimited and never conflict.
	CreatePractice(ctx context.Context, result *models.Result) error

	// Query operations
	GetByID(ctx context.Context, id uint) (*models.Result, error)
	GetByUserAndQuiz(ctx context.Context, userID string, quizID uint) (*models.Result, error) // Graded attempt only
	HasNonPracticeResult(ctx context.Context, userID string, quizID uint) (bool, error)
	GetByUser(ctx context.Context, userID string, filters ResultFilters) ([]*models.Result, int64, error)
	GetByQuiz(ctx context.Context, quizID uint, filters ResultFilters) ([]*models.Result, int64, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.Result, int64, error)

	// Statistics
	GetQuizStats(ctx context.Context, quizID uint) (*QuizStats, error)
	GetSubjectStats(ctx context.Context, subjectID uint) (*SubjectStats, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

// ErrorLogRepository interface for the batched error log sink.
type ErrorLogRepository interface {
	CreateBatch(ctx context.Context, entries []*models.ErrorLog) error
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.ErrorLog, error)
}
