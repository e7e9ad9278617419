package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

const (
	HeaderWorkspaceID   = "X-Workspace-ID"
	QueryWorkspaceID    = "workspace"
	ContextKeyWorkspace = "clauselens.workspace"
)

// Workspace resolves the caller's workspace from the X-Workspace-ID header,
// then the "workspace" query parameter, falling back to the default
// workspace. Malformed IDs are rejected with 400.
func Workspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderWorkspaceID)
		if raw == "" {
			raw = c.Query(QueryWorkspaceID)
		}
		id, err := analysis.NormalizeWorkspaceID(raw)
		if err != nil {
			msg := errors.DefaultMessageForCode(errors.ErrCodeValidation)
			var appErr *errors.AppError
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    errors.ErrCodeValidation,
				"message": msg,
			})
			return
		}
		c.Set(ContextKeyWorkspace, id)
		c.Writer.Header().Set(HeaderWorkspaceID, id)
		c.Next()
	}
}

// WorkspaceID returns the workspace resolved by Workspace, or the default
// workspace when the middleware did not run.
func WorkspaceID(c *gin.Context) string {
	if id := c.GetString(ContextKeyWorkspace); id != "" {
		return id
	}
	return analysis.DefaultWorkspaceID
}
