package respond

import (
	"github.com/gin-gonic/gin"

	"docmind-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object. Detail is the
// human-readable message; Code is the machine-readable category.
type ErrorBody struct {
	Detail string      `json:"detail"`
	Code   string      `json:"code"`
	Fields interface{} `json:"fields,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, detail string, fields interface{}) {
	logFields := map[string]any{
		"status":     status,
		"code":       code,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		logFields["user_id"] = userID
	}
	telemetry.Error("http.error", logFields)

	c.AbortWithStatusJSON(status, ErrorBody{
		Detail: detail,
		Code:   code,
		Fields: fields,
	})
}
