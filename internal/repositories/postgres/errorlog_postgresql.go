package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ErrorLogPostgreSQL struct {
	db *gorm.DB
}

func NewErrorLogPostgreSQL(db *gorm.DB) repositories.ErrorLogRepository {
	return &ErrorLogPostgreSQL{db: db}
}

// CreateBatch writes a batch of error log entries in one insert
func (e *ErrorLogPostgreSQL) CreateBatch(ctx context.Context, entries []*models.ErrorLog) error {
	if len(entries) == 0 {
		return nil
	}
	if err := e.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to write error log batch: %w", err)
	}
	return nil
}

// ListRecent retrieves error log entries newer than since, newest first
func (e *ErrorLogPostgreSQL) ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.ErrorLog, error) {
	var entries []*models.ErrorLog
	query := e.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
