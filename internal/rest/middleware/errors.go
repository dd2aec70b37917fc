package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/orderly-com/wish-insights/internal/errors"
	"github.com/orderly-com/wish-insights/internal/logger"
)

// ErrorMiddleware converts errors attached to the gin context into a JSON
// response, mapping the error marker to an HTTP status
func ErrorMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := statusForError(err)

		body := gin.H{"error": err.Error()}
		if hint := ierr.Hint(err); hint != "" {
			body["hint"] = hint
		}

		if status >= http.StatusInternalServerError {
			log.Errorw("request failed", "status", status, "error", err)
		}
		c.JSON(status, body)
	}
}

func statusForError(err error) int {
	switch {
	case ierr.IsValidation(err):
		return http.StatusBadRequest
	case ierr.IsNotFound(err):
		return http.StatusNotFound
	case ierr.IsAlreadyExists(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
