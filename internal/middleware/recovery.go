package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard-api/internal/response"
)

// Recovery turns a panic in a handler into a 500 envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("error_type", fmt.Sprintf("%T", err)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.Stack("stacktrace"),
				}
				if userID, ok := c.Get(ContextUserID); ok {
					fields = append(fields, zap.Any("user_id", userID))
				}
				if connID := c.GetString(ContextConnectionID); connID != "" {
					fields = append(fields, zap.String("connection_id", connID))
				}
				logger.Error("Panic recovered", fields...)

				if !c.Writer.Written() {
					response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
