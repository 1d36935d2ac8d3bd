package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/errorlog"
	"github.com/quizforge/quiz-service/internal/utils"
)

// ErrorReporting recovers panics and forwards handler failures to the error
// log batcher. It replaces gin.Recovery so panics are both answered with a
// 500 and recorded.
func ErrorReporting(batcher *errorlog.Batcher, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				logger.Error("Handler panicked", "error", err, "path", c.Request.URL.Path)
				batcher.Report(c.Request.Context(), reportSource(c), err, string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			}
		}()

		c.Next()

		for _, ginErr := range c.Errors {
			batcher.Report(c.Request.Context(), reportSource(c), ginErr.Err, "")
		}
	}
}

// reportSource identifies the failing route. FullPath keeps the parameter
// placeholders so the same route dedupes across different IDs.
func reportSource(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return c.Request.Method + " " + path
	}
	return c.Request.Method + " " + c.Request.URL.Path
}
