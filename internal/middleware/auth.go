package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard-api/internal/response"
)

// Context keys set by AuthWithValidator and ConnectionID
const (
	ContextUserID       = "user_id"
	ContextToken        = "jwtToken"
	ContextConnectionID = "connectionId"
)

// ConnectionIDHeader carries the realtime connection id of the caller so that
// the fan-out can skip the connection that caused a change
const ConnectionIDHeader = "X-Connection-ID"

// TokenValidator resolves a bearer token to a user id
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

// AuthWithValidator returns a middleware that rejects requests without a
// valid bearer token and stores the caller's user id in the context
func AuthWithValidator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}
		tokenString := strings.TrimSpace(parts[1])

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userID, err := validator.ValidateToken(ctx, tokenString)
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, tokenString)

		c.Next()
	}
}

// ConnectionID copies the X-Connection-ID header into the context
func ConnectionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(ConnectionIDHeader)); id != "" {
			c.Set(ContextConnectionID, id)
		}
		c.Next()
	}
}
