package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/constants"
	apierrors "github.com/yukikurage/taskpad/internal/errors"
	"github.com/yukikurage/taskpad/internal/services"
	"github.com/yukikurage/taskpad/internal/views"
)

// RequireTask resolves the :id parameter against the active task list.
// Must run after RequireSession.
func RequireTask(store *services.TaskStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			apierrors.BadRequest(c, "", "Invalid task ID")
			c.Abort()
			return
		}

		task, ok := views.FindTask(store.State().Tasks, taskID)
		if !ok {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}
