package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

// AdminHandler covers subject management, user administration and the
// statistics surface.
type AdminHandler struct {
	BaseHandler
	subjectService services.SubjectService
	userService    services.UserService
	statsService   services.StatsService
}

func NewAdminHandler(
	subjectService services.SubjectService,
	userService services.UserService,
	statsService services.StatsService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
		userService:    userService,
		statsService:   statsService,
	}
}

// ===== SUBJECTS =====

// CreateSubject creates a subject (admin only)
// @Summary Create subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} models.Subject
// @Router /subjects [post]
func (h *AdminHandler) CreateSubject(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating subject", "name", req.Name)

	subject, err := h.subjectService.Create(c.Request.Context(), &req, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// GetSubject returns one subject
// @Summary Get subject
// @Tags subjects
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} models.Subject
// @Router /subjects/{id} [get]
func (h *AdminHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	subject, err := h.subjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// ListSubjects lists the subject catalog
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Success 200 {object} services.SubjectListResponse
// @Router /subjects [get]
func (h *AdminHandler) ListSubjects(c *gin.Context) {
	limit, offset := parsePagination(c)

	subjects, err := h.subjectService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// UpdateSubject updates a subject (admin only)
// @Summary Update subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param id path uint true "Subject ID"
// @Param subject body services.UpdateSubjectRequest true "Subject data"
// @Success 200 {object} models.Subject
// @Router /subjects/{id} [put]
func (h *AdminHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), id, &req, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// DeleteSubject deletes a subject without quizzes (admin only)
// @Summary Delete subject
// @Tags subjects
// @Param id path uint true "Subject ID"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /subjects/{id} [delete]
func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting subject", "subject_id", id)

	if err := h.subjectService.Delete(c.Request.Context(), id, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== USERS =====

// ListUsers lists users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role"
// @Success 200 {object} services.UserListResponse
// @Router /users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.UserFilters
	filters.Limit, filters.Offset = parsePagination(c)

	if raw := c.Query("role"); raw != "" {
		userRole := models.UserRole(raw)
		filters.Role = &userRole
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filters.IsActive = &active
	}

	users, err := h.userService.List(c.Request.Context(), filters, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

// UpdateUserRole changes a user's role (admin only)
// @Summary Update user role
// @Tags users
// @Accept json
// @Param id path string true "User ID"
// @Param role body UpdateUserRoleRequest true "New role"
// @Success 200 {object} SuccessResponse
// @Router /users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	targetID := ParseStringIDParam(c, "id")
	if targetID == "" {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating user role", "target_id", targetID, "role", req.Role)

	if err := h.userService.UpdateRole(c.Request.Context(), targetID, req.Role, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Role updated"})
}

type SetUserActiveRequest struct {
	Active bool `json:"active"`
}

// SetUserActive activates or deactivates a user (admin only)
// @Summary Activate or deactivate user
// @Tags users
// @Accept json
// @Param id path string true "User ID"
// @Param active body SetUserActiveRequest true "Active flag"
// @Success 200 {object} SuccessResponse
// @Router /users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	targetID := ParseStringIDParam(c, "id")
	if targetID == "" {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.SetActive(c.Request.Context(), targetID, req.Active, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User updated"})
}

// ===== STATISTICS =====

// GetQuizStats returns attempt statistics for a quiz
// @Summary Quiz statistics
// @Tags statistics
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} repositories.QuizStats
// @Router /quizzes/{id}/stats [get]
func (h *AdminHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetQuizStats(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSubjectStats returns aggregate statistics for a subject
// @Summary Subject statistics
// @Tags statistics
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} repositories.SubjectStats
// @Router /subjects/{id}/stats [get]
func (h *AdminHandler) GetSubjectStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetSubjectStats(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetPlatformStats returns platform-wide counters (admin only)
// @Summary Platform statistics
// @Tags statistics
// @Produce json
// @Success 200 {object} repositories.PlatformStats
// @Router /stats [get]
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetPlatformStats(c.Request.Context(), userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportQuizResults streams the graded results of a quiz as an XLSX file
// @Summary Export quiz results
// @Tags statistics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Quiz ID"
// @Success 200 {file} binary
// @Router /quizzes/{id}/results/export [get]
func (h *AdminHandler) ExportQuizResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)

	data, filename, err := h.statsService.ExportQuizResults(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
