package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// workspaceID extracts the workspace set by the workspace middleware.
func workspaceID(c *gin.Context) string {
	return middleware.WorkspaceID(c)
}

// writeError maps an error to its HTTP status. Server-side failures are
// masked; client errors and backend failures keep their message since the
// dashboard shows them inline.
func writeError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{
		Code:      string(code),
		RequestID: logging.RequestIDFromContext(c.Request.Context()),
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), logger).Error("request failed",
			logging.String("path", c.FullPath()), logging.Err(err))
		resp.Code = string(errors.ErrCodeInternal)
		resp.Message = "internal server error"
		resp.Detail = ""
	}
	if resp.Message == "" {
		resp.Message = errors.DefaultMessageForCode(code)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body, answering 400 on failure.
func bindJSON(c *gin.Context, logger logging.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, logger, errors.New(errors.ErrCodeValidation, "invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

// attachment writes data as a download.
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func errInvalid(message string) error {
	return errors.New(errors.ErrCodeValidation, message)
}
