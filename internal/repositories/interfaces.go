package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates all data access used by the services. Implementations
// are safe for concurrent use.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Result() ResultRepository
	Subject() SubjectRepository
	User() UserRepository
	ErrorLog() ErrorLogRepository

	// WithTransaction runs fn against a transactional Repository view and
	// commits iff fn returns nil.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// ErrDuplicateResult is returned by ResultRepository.CreateGraded when a
// non-practice result already exists for the (user, quiz) pair. The unique
// partial index makes the check-and-insert atomic.
var ErrDuplicateResult = errors.New("graded result already exists for this user and quiz")

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	SubjectID *uint              `json:"subject_id"`
	CreatedBy *string            `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	UserID     *string    `json:"user_id"`
	QuizID     *uint      `json:"quiz_id"`
	IsPractice *bool      `json:"is_practice"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

type UserFilters struct {
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type QuizStats struct {
	QuizID        uint    `json:"quiz_id"`
	AttemptCount  int     `json:"attempt_count"`
	PracticeCount int     `json:"practice_count"`
	AverageScore  float64 `json:"average_score"`
	BestScore     float64 `json:"best_score"`
	PassRate      float64 `json:"pass_rate"`
	QuestionCount int     `json:"question_count"`
	TotalPoints   float64 `json:"total_points"`
}

type SubjectStats struct {
	SubjectID    uint    `json:"subject_id"`
	QuizCount    int     `json:"quiz_count"`
	AttemptCount int     `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
	PassRate     float64 `json:"pass_rate"`
}

type PlatformStats struct {
	TotalUsers    int     `json:"total_users"`
	TotalQuizzes  int     `json:"total_quizzes"`
	TotalSubjects int     `json:"total_subjects"`
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}
