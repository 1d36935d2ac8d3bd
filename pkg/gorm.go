package pkg

import (
	"fmt"

	"github.com/quizforge/quiz-service/internal/config"
	"github.com/quizforge/quiz-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all persisted models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Quiz{},
		&models.Question{},
		&models.Result{},
		&models.ErrorLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Partial unique index backing the one-graded-attempt rule. AutoMigrate
	// cannot express the WHERE clause, so it is created explicitly.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_results_graded_attempt
		ON results (user_id, quiz_id) WHERE is_practice = false`).Error
}
