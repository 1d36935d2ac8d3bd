package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// SubmitQuiz scores a submission and records the result. Non-practice
// submissions are limited to one graded attempt per user and quiz.
// @Summary Submit quiz answers
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param submission body services.SubmitRequest true "Submitted answers"
// @Success 201 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/submissions [post]
func (h *SubmissionHandler) SubmitQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz", "quiz_id", quizID, "answers", len(req.Answers), "practice", req.Practice)

	result, err := h.submissionService.Submit(c.Request.Context(), quizID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResult returns one result with its per-question breakdown
// @Summary Get result
// @Tags submissions
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *SubmissionHandler) GetResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.submissionService.GetResult(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyQuizResult returns the caller's graded attempt for a quiz
// @Summary Get own quiz result
// @Tags submissions
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.ResultResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *SubmissionHandler) GetMyQuizResult(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.submissionService.GetQuizResult(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMyResults lists the caller's results, newest first
// @Summary List own results
// @Tags submissions
// @Produce json
// @Success 200 {object} services.ResultListResponse
// @Router /results [get]
func (h *SubmissionHandler) ListMyResults(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.ResultFilters
	filters.Limit, filters.Offset = parsePagination(c)

	if raw := c.Query("practice"); raw != "" {
		practice := raw == "true"
		filters.IsPractice = &practice
	}

	results, err := h.submissionService.ListUserResults(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ListQuizResults lists all results of a quiz for its owner
// @Summary List quiz results
// @Tags submissions
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.ResultListResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/results [get]
func (h *SubmissionHandler) ListQuizResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.ResultFilters
	filters.Limit, filters.Offset = parsePagination(c)

	if raw := c.Query("practice"); raw != "" {
		practice := raw == "true"
		filters.IsPractice = &practice
	}

	results, err := h.submissionService.ListQuizResults(c.Request.Context(), quizID, filters, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
