package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request to create an account
// @Description Request body for signing up. The email is stored lower-cased.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" example:"kim@example.com"`
	Name     string `json:"name" binding:"required,min=1,max=100" example:"Kim Minji"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"s3cret-passw0rd"`
}

// LoginRequest represents the request to obtain an access token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"kim@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-passw0rd"`
}

// UserFilters represents the query parameters of the user listing
// @Description q matches email or name case-insensitively as a substring.
type UserFilters struct {
	Query string `form:"q" example:"kim"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
}

// UserResponse represents a user account
type UserResponse struct {
	UserID    uuid.UUID `json:"userId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Email     string    `json:"email" example:"kim@example.com"`
	Name      string    `json:"name" example:"Kim Minji"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
}

// TokenResponse represents an issued access token
// @Description Bearer token to send in the Authorization header and as the
// @Description token query parameter of the websocket endpoint
type TokenResponse struct {
	AccessToken string       `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresAt   time.Time    `json:"expiresAt" example:"2024-01-16T10:30:00Z"`
	User        UserResponse `json:"user"`
}
