package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/events"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/scoring"
	"gorm.io/datatypes"
)

// SubmissionService scores quiz submissions and records results. Scoring
// itself is delegated to the deterministic engine; this service owns intake
// validation, the one-graded-attempt rule and result persistence.
type SubmissionService interface {
	Submit(ctx context.Context, quizID uint, req *SubmitRequest, userID string) (*ResultResponse, error)

	GetResult(ctx context.Context, resultID uint, userID string, role models.UserRole) (*ResultResponse, error)
	GetQuizResult(ctx context.Context, quizID uint, userID string) (*ResultResponse, error)
	ListUserResults(ctx context.Context, userID string, filters repositories.ResultFilters) (*ResultListResponse, error)
	ListQuizResults(ctx context.Context, quizID uint, filters repositories.ResultFilters, userID string, role models.UserRole) (*ResultListResponse, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type SubmitRequest struct {
	Answers  []models.SubmittedAnswer `json:"answers" validate:"required,dive"`
	Practice bool                     `json:"practice"`
}

type ResultResponse struct {
	*models.Result
	// BreakdownList is the decoded per-question outcome list.
	BreakdownList []scoring.QuestionOutcome `json:"breakdown_list,omitempty"`
}

type ResultListResponse struct {
	Results []*models.Result `json:"results"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ===== IMPLEMENTATION =====

type submissionService struct {
	repo          repositories.Repository
	logger        *slog.Logger
	ops           *ServiceLogger
	engine        *scoring.Engine
	questionCache *cache.QuestionCache
	publisher     events.EventPublisher
}

func NewSubmissionService(
	repo repositories.Repository,
	logger *slog.Logger,
	engine *scoring.Engine,
	questionCache *cache.QuestionCache,
	publisher events.EventPublisher,
) SubmissionService {
	return &submissionService{
		repo:          repo,
		logger:        logger,
		ops:           NewServiceLogger(logger, "submission"),
		engine:        engine,
		questionCache: questionCache,
		publisher:     publisher,
	}
}

func (s *submissionService) Submit(ctx context.Context, quizID uint, req *SubmitRequest, userID string) (*ResultResponse, error) {
	start := time.Now()
	response, err := s.submit(ctx, quizID, req, userID)
	s.ops.LogOperation(ctx, "submit_quiz", userID, quizID, "quiz", time.Since(start), err)
	return response, err
}

func (s *submissionService) submit(ctx context.Context, quizID uint, req *SubmitRequest, userID string) (*ResultResponse, error) {
	s.logger.Info("Scoring submission", "quiz_id", quizID, "user_id", userID, "practice", req.Practice)

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Status != models.QuizStatusActive {
		return nil, ErrQuizNotActive
	}

	// Refuse early when the graded attempt already exists. The atomic insert
	// below still guards the race, this just gives a clean answer for the
	// common case.
	if !req.Practice {
		taken, err := s.repo.Result().HasNonPracticeResult(ctx, userID, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing result: %w", err)
		}
		if taken {
			return nil, ErrQuizAlreadyTaken
		}
	}

	questions, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrQuizEmpty
	}

	scoringQuestions, byID, err := toScoringQuestions(questions)
	if err != nil {
		return nil, NewBusinessRuleError("quiz_misconfigured", err.Error(), map[string]interface{}{
			"quiz_id": quizID,
		})
	}

	answers, err := s.buildAnswers(req.Answers, byID)
	if err != nil {
		return nil, err
	}

	scored, err := s.engine.Score(scoringQuestions, answers)
	if err != nil {
		var confErr *scoring.ConfigurationError
		if errors.As(err, &confErr) {
			s.logger.Error("Quiz has an unscorable question", "quiz_id", quizID, "question_id", confErr.QuestionID, "error", err)
			return nil, NewBusinessRuleError("quiz_misconfigured", confErr.Error(), map[string]interface{}{
				"quiz_id":     quizID,
				"question_id": confErr.QuestionID,
			})
		}
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	breakdown, err := json.Marshal(scored.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	result := &models.Result{
		UserID:            userID,
		QuizID:            quizID,
		Score:             scored.Score,
		CorrectAnswers:    scored.CorrectAnswers,
		TotalQuestions:    scored.TotalQuestions,
		TotalPoints:       scored.TotalPoints,
		MaxPossiblePoints: scored.MaxPossiblePoints,
		Passed:            scored.Score >= quiz.PassingScore,
		IsPractice:        req.Practice,
		Breakdown:         datatypes.JSON(breakdown),
	}

	if req.Practice {
		err = s.repo.Result().CreatePractice(ctx, result)
	} else {
		err = s.repo.Result().CreateGraded(ctx, result)
		if errors.Is(err, repositories.ErrDuplicateResult) {
			return nil, ErrQuizAlreadyTaken
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	s.logger.Info("Submission scored",
		"result_id", result.ID,
		"quiz_id", quizID,
		"user_id", userID,
		"score", result.Score,
		"passed", result.Passed)

	event := events.NewResultRecordedEvent(
		result.ID, quizID, quiz.Title, userID,
		result.Score, result.CorrectAnswers, result.TotalQuestions,
		result.Passed, result.IsPractice,
	)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish result event", "result_id", result.ID, "error", err)
	}

	return &ResultResponse{Result: result, BreakdownList: scored.Breakdown}, nil
}

func (s *submissionService) GetResult(ctx context.Context, resultID uint, userID string, role models.UserRole) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	// Visible to the submitting student, the quiz owner and admins
	if role != models.RoleAdmin && result.UserID != userID && result.Quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, resultID, "result", "read", "not the result owner")
	}

	return buildResultResponse(result)
}

func (s *submissionService) GetQuizResult(ctx context.Context, quizID uint, userID string) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return buildResultResponse(result)
}

func (s *submissionService) ListUserResults(ctx context.Context, userID string, filters repositories.ResultFilters) (*ResultListResponse, error) {
	results, total, err := s.repo.Result().GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return &ResultListResponse{
		Results: results,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *submissionService) ListQuizResults(ctx context.Context, quizID uint, filters repositories.ResultFilters, userID string, role models.UserRole) (*ResultListResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if role != models.RoleAdmin && quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, quizID, "quiz", "list results", "not the quiz owner")
	}

	results, total, err := s.repo.Result().GetByQuiz(ctx, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return &ResultListResponse{
		Results: results,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ===== HELPERS =====

// loadQuestions fetches a quiz's questions through the cache
func (s *submissionService) loadQuestions(ctx context.Context, quizID uint) ([]*models.Question, error) {
	if cached := s.questionCache.GetQuestions(ctx, quizID); cached != nil {
		return cached, nil
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	if len(questions) > 0 {
		s.questionCache.SetQuestions(ctx, quizID, questions)
	}
	return questions, nil
}

// buildAnswers validates intake rules and converts to the engine's answer
// union: each answer must reference a known question and no question may be
// answered twice.
func (s *submissionService) buildAnswers(submitted []models.SubmittedAnswer, byID map[uint]*models.Question) ([]scoring.Answer, error) {
	answers := make([]scoring.Answer, 0, len(submitted))
	seen := make(map[uint]bool, len(submitted))

	for i := range submitted {
		ans := &submitted[i]

		question, ok := byID[ans.QuestionID]
		if !ok {
			return nil, NewBusinessRuleError("unknown_question", ErrUnknownQuestion.Error(), map[string]interface{}{
				"question_id": ans.QuestionID,
			})
		}
		if seen[ans.QuestionID] {
			return nil, NewBusinessRuleError("duplicate_answer", ErrDuplicateAnswer.Error(), map[string]interface{}{
				"question_id": ans.QuestionID,
			})
		}
		seen[ans.QuestionID] = true

		answers = append(answers, ans.ToScoring(question.Type))
	}

	return answers, nil
}

func toScoringQuestions(questions []*models.Question) ([]scoring.Question, map[uint]*models.Question, error) {
	scoringQuestions := make([]scoring.Question, 0, len(questions))
	byID := make(map[uint]*models.Question, len(questions))

	for _, question := range questions {
		sq, err := question.ToScoring()
		if err != nil {
			return nil, nil, err
		}
		scoringQuestions = append(scoringQuestions, sq)
		byID[question.ID] = question
	}

	return scoringQuestions, byID, nil
}

func buildResultResponse(result *models.Result) (*ResultResponse, error) {
	response := &ResultResponse{Result: result}

	if len(result.Breakdown) > 0 {
		if err := json.Unmarshal(result.Breakdown, &response.BreakdownList); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown for result %d: %w", result.ID, err)
		}
	}

	return response, nil
}
