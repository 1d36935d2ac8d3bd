package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/middleware"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler       *QuizHandler
	submissionHandler *SubmissionHandler
	adminHandler      *AdminHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	submissionService services.SubmissionService,
	subjectService services.SubjectService,
	userService services.UserService,
	statsService services.StatsService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:       NewQuizHandler(quizService, logger),
		submissionHandler: NewSubmissionHandler(submissionService, logger),
		adminHandler:      NewAdminHandler(subjectService, userService, statsService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(auth)
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/questions", hm.quizHandler.GetQuizWithQuestions)

			// Authoring requires a teacher or admin account
			authoring := quizzes.Group("")
			authoring.Use(middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
			{
				authoring.POST("", hm.quizHandler.CreateQuiz)
				authoring.PUT("/:id", hm.quizHandler.UpdateQuiz)
				authoring.DELETE("/:id", hm.quizHandler.DeleteQuiz)
				authoring.POST("/:id/publish", hm.quizHandler.PublishQuiz)
				authoring.POST("/:id/archive", hm.quizHandler.ArchiveQuiz)

				authoring.POST("/:id/questions", hm.quizHandler.AddQuestion)
				authoring.PUT("/:id/questions/reorder", hm.quizHandler.ReorderQuestions)
				authoring.PUT("/:id/questions/:question_id", hm.quizHandler.UpdateQuestion)
				authoring.DELETE("/:id/questions/:question_id", hm.quizHandler.DeleteQuestion)

				authoring.GET("/:id/results", hm.submissionHandler.ListQuizResults)
				authoring.GET("/:id/results/export", hm.adminHandler.ExportQuizResults)
				authoring.GET("/:id/stats", hm.adminHandler.GetQuizStats)
			}

			quizzes.POST("/:id/submissions", hm.submissionHandler.SubmitQuiz)
			quizzes.GET("/:id/result", hm.submissionHandler.GetMyQuizResult)
		}

		results := v1.Group("/results")
		{
			results.GET("", hm.submissionHandler.ListMyResults)
			results.GET("/:id", hm.submissionHandler.GetResult)
		}

		subjects := v1.Group("/subjects")
		{
			subjects.GET("", hm.adminHandler.ListSubjects)
			subjects.GET("/:id", hm.adminHandler.GetSubject)

			subjects.GET("/:id/stats",
				middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
				hm.adminHandler.GetSubjectStats)

			adminOnly := subjects.Group("")
			adminOnly.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminOnly.POST("", hm.adminHandler.CreateSubject)
				adminOnly.PUT("/:id", hm.adminHandler.UpdateSubject)
				adminOnly.DELETE("/:id", hm.adminHandler.DeleteSubject)
			}
		}

		users := v1.Group("/users")
		users.Use(middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", hm.adminHandler.ListUsers)
			users.PUT("/:id/role", hm.adminHandler.UpdateUserRole)
			users.PUT("/:id/active", hm.adminHandler.SetUserActive)
		}

		v1.GET("/stats",
			middleware.RequireRole(models.RoleAdmin),
			hm.adminHandler.GetPlatformStats)
	}
}
