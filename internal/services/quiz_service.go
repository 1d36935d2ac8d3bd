package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/events"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/validator"
)

// QuizService manages the quiz catalog and its questions. Students only ever
// see active quizzes with the answer key stripped; teachers manage their own
// quizzes and admins everything.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error)
	GetByID(ctx context.Context, id uint, userID string, role models.UserRole) (*QuizResponse, error)
	GetByIDWithQuestions(ctx context.Context, id uint, userID string, role models.UserRole) (*QuizResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string, role models.UserRole) (*QuizResponse, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error
	List(ctx context.Context, filters repositories.QuizFilters, userID string, role models.UserRole) (*QuizListResponse, error)

	Publish(ctx context.Context, id uint, userID string, role models.UserRole) error
	Archive(ctx context.Context, id uint, userID string, role models.UserRole) error

	AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest, userID string, role models.UserRole) (*QuestionResponse, error)
	UpdateQuestion(ctx context.Context, quizID, questionID uint, req *QuestionRequest, userID string, role models.UserRole) (*QuestionResponse, error)
	DeleteQuestion(ctx context.Context, quizID, questionID uint, userID string, role models.UserRole) error
	ReorderQuestions(ctx context.Context, quizID uint, orderedIDs []uint, userID string, role models.UserRole) error
}

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuizRequest struct {
	Title        string            `json:"title" validate:"required,min=1,max=200"`
	Description  *string           `json:"description" validate:"omitempty,max=1000"`
	SubjectID    uint              `json:"subject_id" validate:"required"`
	PassingScore *float64          `json:"passing_score" validate:"omitempty,min=0,max=10"`
	Questions    []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateQuizRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=1000"`
	SubjectID    *uint    `json:"subject_id"`
	PassingScore *float64 `json:"passing_score" validate:"omitempty,min=0,max=10"`
}

type QuestionRequest struct {
	Type           models.QuestionType `json:"type" validate:"required,question_type"`
	Text           string              `json:"text" validate:"required,min=1"`
	Options        []string            `json:"options" validate:"required,min=1"`
	CorrectAnswers []string            `json:"correct_answers" validate:"required,min=1"`
	Points         float64             `json:"points" validate:"required,gt=0"`
	Order          int                 `json:"order" validate:"omitempty,min=0"`
}

type QuestionResponse struct {
	ID   uint                `json:"id"`
	Type models.QuestionType `json:"type"`
	Text string              `json:"text"`

	Options []string `json:"options"`
	// CorrectAnswers is only populated for the quiz owner and admins.
	CorrectAnswers []string `json:"correct_answers,omitempty"`

	Points float64 `json:"points"`
	Order  int     `json:"order"`
}

type QuizResponse struct {
	*models.Quiz
	QuestionList []QuestionResponse `json:"question_list,omitempty"`
}

type QuizListResponse struct {
	Quizzes []*models.Quiz `json:"quizzes"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// ===== IMPLEMENTATION =====

type quizService struct {
	repo          repositories.Repository
	logger        *slog.Logger
	ops           *ServiceLogger
	validator     *validator.Validator
	questionCache *cache.QuestionCache
	publisher     events.EventPublisher
}

func NewQuizService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	questionCache *cache.QuestionCache,
	publisher events.EventPublisher,
) QuizService {
	return &quizService{
		repo:          repo,
		logger:        logger,
		ops:           NewServiceLogger(logger, "quiz"),
		validator:     v,
		questionCache: questionCache,
		publisher:     publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*QuizResponse, error) {
	s.logger.Info("Creating quiz", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	if _, err := s.repo.Subject().GetByID(ctx, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to check subject: %w", err)
	}

	exists, err := s.repo.Quiz().ExistsByTitle(ctx, req.Title, creatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrQuizDuplicateTitle
	}

	quiz := &models.Quiz{
		Title:        req.Title,
		Description:  req.Description,
		SubjectID:    req.SubjectID,
		Status:       models.QuizStatusDraft,
		PassingScore: 5,
		CreatedBy:    creatorID,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Quiz().Create(ctx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}

		if len(req.Questions) > 0 {
			questions, err := s.buildQuestions(quiz.ID, req.Questions)
			if err != nil {
				return err
			}
			if err := tx.Question().CreateBatch(ctx, questions); err != nil {
				return fmt.Errorf("failed to create questions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)

	return s.GetByIDWithQuestions(ctx, quiz.ID, creatorID, models.RoleTeacher)
}

func (s *quizService) GetByID(ctx context.Context, id uint, userID string, role models.UserRole) (*QuizResponse, error) {
	quiz, err := s.getAccessibleQuiz(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}
	return &QuizResponse{Quiz: quiz}, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint, userID string, role models.UserRole) (*QuizResponse, error) {
	quiz, err := s.getAccessibleQuiz(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	includeAnswers := role == models.RoleAdmin || quiz.CreatedBy == userID

	response := &QuizResponse{Quiz: quiz}
	response.QuestionsCount = len(questions)
	for _, question := range questions {
		qr, err := buildQuestionResponse(question, includeAnswers)
		if err != nil {
			return nil, err
		}
		response.QuestionList = append(response.QuestionList, qr)
		response.TotalPoints += question.Points
	}

	return response, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string, role models.UserRole) (*QuizResponse, error) {
	s.logger.Info("Updating quiz", "quiz_id", id, "user_id", userID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	quiz, err := s.getOwnedQuiz(ctx, id, userID, role, "update")
	if err != nil {
		return nil, err
	}

	if req.SubjectID != nil {
		if _, err := s.repo.Subject().GetByID(ctx, *req.SubjectID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSubjectNotFound
			}
			return nil, fmt.Errorf("failed to check subject: %w", err)
		}
		quiz.SubjectID = *req.SubjectID
	}
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return s.GetByIDWithQuestions(ctx, id, userID, role)
}

func (s *quizService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", userID)

	if _, err := s.getOwnedQuiz(ctx, id, userID, role, "delete"); err != nil {
		return err
	}

	hasResults, err := s.repo.Quiz().HasResults(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check results: %w", err)
	}
	if hasResults {
		return ErrQuizNotDeletable
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.questionCache.Invalidate(ctx, id)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters, userID string, role models.UserRole) (*QuizListResponse, error) {
	// Students only see active quizzes; teachers see their own plus any
	// explicitly filtered active ones.
	switch role {
	case models.RoleStudent:
		active := models.QuizStatusActive
		filters.Status = &active
	case models.RoleTeacher:
		if filters.CreatedBy == nil && filters.Status == nil {
			filters.CreatedBy = &userID
		}
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	return &QuizListResponse{
		Quizzes: quizzes,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ===== STATUS TRANSITIONS =====

func (s *quizService) Publish(ctx context.Context, id uint, userID string, role models.UserRole) error {
	start := time.Now()
	err := s.publish(ctx, id, userID, role)
	s.ops.LogOperation(ctx, "publish_quiz", userID, id, "quiz", time.Since(start), err)
	return err
}

func (s *quizService) publish(ctx context.Context, id uint, userID string, role models.UserRole) error {
	quiz, err := s.getOwnedQuiz(ctx, id, userID, role, "publish")
	if err != nil {
		return err
	}

	if quiz.Status != models.QuizStatusDraft {
		return ErrQuizInvalidStatus
	}

	count, err := s.repo.Question().CountByQuiz(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count == 0 {
		return ErrQuizEmpty
	}

	if err := s.repo.Quiz().UpdateStatus(ctx, id, models.QuizStatusActive); err != nil {
		return fmt.Errorf("failed to publish quiz: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewQuizPublishedEvent(quiz.ID, quiz.Title, quiz.SubjectID, quiz.CreatedBy)); err != nil {
		s.logger.Warn("Failed to publish quiz event", "quiz_id", id, "error", err)
	}

	return nil
}

func (s *quizService) Archive(ctx context.Context, id uint, userID string, role models.UserRole) error {
	s.logger.Info("Archiving quiz", "quiz_id", id, "user_id", userID)

	quiz, err := s.getOwnedQuiz(ctx, id, userID, role, "archive")
	if err != nil {
		return err
	}

	if quiz.Status != models.QuizStatusActive {
		return ErrQuizInvalidStatus
	}

	if err := s.repo.Quiz().UpdateStatus(ctx, id, models.QuizStatusArchived); err != nil {
		return fmt.Errorf("failed to archive quiz: %w", err)
	}

	s.questionCache.Invalidate(ctx, id)
	return nil
}

// ===== QUESTION MANAGEMENT =====

func (s *quizService) AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest, userID string, role models.UserRole) (*QuestionResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, quizID, userID, role, "add question to")
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizStatusDraft {
		return nil, ErrQuestionQuizPublished
	}

	question, err := s.buildQuestion(quizID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.questionCache.Invalidate(ctx, quizID)

	qr, err := buildQuestionResponse(question, true)
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, quizID, questionID uint, req *QuestionRequest, userID string, role models.UserRole) (*QuestionResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, quizID, userID, role, "update question in")
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizStatusDraft {
		return nil, ErrQuestionQuizPublished
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != quizID {
		return nil, ErrQuestionNotInQuiz
	}

	updated, err := s.buildQuestion(quizID, req)
	if err != nil {
		return nil, err
	}
	updated.ID = question.ID
	updated.Order = question.Order
	if req.Order > 0 {
		updated.Order = req.Order
	}
	updated.CreatedAt = question.CreatedAt

	if err := s.repo.Question().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.questionCache.Invalidate(ctx, quizID)

	qr, err := buildQuestionResponse(updated, true)
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, quizID, questionID uint, userID string, role models.UserRole) error {
	quiz, err := s.getOwnedQuiz(ctx, quizID, userID, role, "delete question from")
	if err != nil {
		return err
	}
	if quiz.Status != models.QuizStatusDraft {
		return ErrQuestionQuizPublished
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != quizID {
		return ErrQuestionNotInQuiz
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.questionCache.Invalidate(ctx, quizID)
	return nil
}

func (s *quizService) ReorderQuestions(ctx context.Context, quizID uint, orderedIDs []uint, userID string, role models.UserRole) error {
	if _, err := s.getOwnedQuiz(ctx, quizID, userID, role, "reorder questions in"); err != nil {
		return err
	}

	if err := s.repo.Question().Reorder(ctx, quizID, orderedIDs); err != nil {
		return NewBusinessRuleError("question_reorder", err.Error(), map[string]interface{}{
			"quiz_id": quizID,
		})
	}

	s.questionCache.Invalidate(ctx, quizID)
	return nil
}

// ===== HELPERS =====

// getAccessibleQuiz loads a quiz and checks read access for the caller
func (s *quizService) getAccessibleQuiz(ctx context.Context, id uint, userID string, role models.UserRole) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if role == models.RoleAdmin || quiz.CreatedBy == userID {
		return quiz, nil
	}
	if quiz.Status != models.QuizStatusActive {
		return nil, NewPermissionError(userID, id, "quiz", "read", "quiz is not active")
	}
	return quiz, nil
}

// getOwnedQuiz loads a quiz and checks the caller may modify it
func (s *quizService) getOwnedQuiz(ctx context.Context, id uint, userID string, role models.UserRole, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if role != models.RoleAdmin && quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "quiz", action, "not the quiz owner")
	}
	return quiz, nil
}

func (s *quizService) buildQuestion(quizID uint, req *QuestionRequest) (*models.Question, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}
	if err := s.validator.Question().ValidateAnswerKey(req.Type, req.Options, req.CorrectAnswers); err != nil {
		return nil, NewBusinessRuleError("question_answer_key", err.Error(), map[string]interface{}{
			"question_type": req.Type,
		})
	}

	options, err := models.EncodeStringList(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	correct, err := models.EncodeStringList(req.CorrectAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode correct answers: %w", err)
	}

	return &models.Question{
		QuizID:         quizID,
		Type:           req.Type,
		Text:           req.Text,
		Options:        options,
		CorrectAnswers: correct,
		Points:         req.Points,
		Order:          req.Order,
	}, nil
}

func (s *quizService) buildQuestions(quizID uint, reqs []QuestionRequest) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(reqs))
	for i := range reqs {
		question, err := s.buildQuestion(quizID, &reqs[i])
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if question.Order == 0 {
			question.Order = i + 1
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func buildQuestionResponse(question *models.Question, includeAnswers bool) (QuestionResponse, error) {
	options, err := question.OptionList()
	if err != nil {
		return QuestionResponse{}, fmt.Errorf("question %d: %w", question.ID, err)
	}

	qr := QuestionResponse{
		ID:      question.ID,
		Type:    question.Type,
		Text:    question.Text,
		Options: options,
		Points:  question.Points,
		Order:   question.Order,
	}

	if includeAnswers {
		correct, err := question.CorrectAnswerList()
		if err != nil {
			return QuestionResponse{}, fmt.Errorf("question %d: %w", question.ID, err)
		}
		qr.CorrectAnswers = correct
	}

	return qr, nil
}
