package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/response"
)

// handleServiceError maps service layer errors to HTTP responses. Error
// details are logged and never sent to the client.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Resource not found")
		return
	}

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		statusCode := mapErrorCodeToHTTPStatus(appErr.Code)
		fields := []zap.Field{
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.String("details", appErr.Details),
			zap.String("path", c.FullPath()),
		}
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Service error", fields...)
			response.SendError(c, statusCode, appErr.Code, "Internal server error")
			return
		}
		logger.Debug("Request rejected", fields...)
		response.SendError(c, statusCode, appErr.Code, appErr.Message)
		return
	}

	logger.Error("Unhandled service error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeValidation:
		return http.StatusBadRequest
	case response.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case response.ErrCodeForbidden:
		return http.StatusForbidden
	case response.ErrCodeAlreadyExists,
		response.ErrCodeAlreadyMember,
		response.ErrCodePendingRequestExists,
		response.ErrCodeInvalidState:
		return http.StatusConflict
	case response.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
