package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
)

const (
	quizQuestionsKeyPrefix = "quiz:questions:"
	questionCacheTTL       = 10 * time.Minute
)

// QuestionCache caches the question sets of active quizzes so submissions do
// not hit the database for every attempt. Entries are invalidated on any quiz
// or question mutation.
type QuestionCache struct {
	cache  CacheService
	logger *slog.Logger
}

func NewQuestionCache(cache CacheService, logger *slog.Logger) *QuestionCache {
	return &QuestionCache{
		cache:  cache,
		logger: logger,
	}
}

// GetQuestions returns the cached question set for a quiz, or nil on a miss.
// Cache errors are logged and treated as misses.
func (c *QuestionCache) GetQuestions(ctx context.Context, quizID uint) []*models.Question {
	var questions []*models.Question
	err := c.cache.Get(ctx, quizQuestionsKey(quizID), &questions)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Question cache read failed", "quiz_id", quizID, "error", err)
		}
		return nil
	}
	return questions
}

// SetQuestions caches the question set for a quiz
func (c *QuestionCache) SetQuestions(ctx context.Context, quizID uint, questions []*models.Question) {
	if err := c.cache.Set(ctx, quizQuestionsKey(quizID), questions, questionCacheTTL); err != nil {
		c.logger.Warn("Question cache write failed", "quiz_id", quizID, "error", err)
	}
}

// Invalidate drops the cached question set for a quiz
func (c *QuestionCache) Invalidate(ctx context.Context, quizID uint) {
	if err := c.cache.Delete(ctx, quizQuestionsKey(quizID)); err != nil {
		c.logger.Warn("Question cache invalidation failed", "quiz_id", quizID, "error", err)
	}
}

func quizQuestionsKey(quizID uint) string {
	return fmt.Sprintf("%s%d", quizQuestionsKeyPrefix, quizID)
}
