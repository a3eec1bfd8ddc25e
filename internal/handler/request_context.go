package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard-api/internal/middleware"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/response"
)

// callerID extracts the authenticated user id set by the auth middleware.
// It writes a 401 and returns false when the id is missing.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

// requestContext returns the request context carrying the caller's realtime
// connection id, so the update published by the mutation skips that socket
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if connID, ok := c.Get(middleware.ContextConnectionID); ok {
		if id, ok := connID.(string); ok {
			ctx = realtime.WithOrigin(ctx, id)
		}
	}
	return ctx
}

// pathUUID parses a path parameter. label is used in the 400 message,
// e.g. "board" gives "Invalid board ID".
func pathUUID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
