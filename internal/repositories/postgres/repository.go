package postgres

import (
	"context"
	"fmt"

	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the GORM-backed implementation of repositories.Repository.
type Repository struct {
	db *gorm.DB

	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	result   repositories.ResultRepository
	subject  repositories.SubjectRepository
	user     repositories.UserRepository
	errorLog repositories.ErrorLogRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
		subject:  NewSubjectPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
		errorLog: NewErrorLogPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Result() repositories.ResultRepository     { return r.result }
func (r *Repository) Subject() repositories.SubjectRepository   { return r.subject }
func (r *Repository) User() repositories.UserRepository         { return r.user }
func (r *Repository) ErrorLog() repositories.ErrorLogRepository { return r.errorLog }

// WithTransaction runs fn against a Repository bound to a single transaction.
// The transaction commits iff fn returns nil.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
