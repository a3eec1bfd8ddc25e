package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateBoardRequest represents the request to create a new board
// @Description Request body for creating a board. The caller becomes its owner.
type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255" example:"Sprint 12"`
	Description string `json:"description" binding:"max=2000" example:"Work planned for the second sprint of Q1"`
}

// UpdateBoardRequest represents the request to update a board
// @Description Request body for updating a board. All fields are optional.
type UpdateBoardRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255" example:"Sprint 12 (extended)"`
	Description *string `json:"description" binding:"omitempty,max=2000" example:"Updated description"`
}

// BoardFilters represents the query parameters of the board listing
// @Description name matches case-insensitively as a substring.
// @Description scope selects owned boards, boards shared with the caller, or both (default).
type BoardFilters struct {
	Name  string `form:"name" example:"sprint"`
	Scope string `form:"scope" binding:"omitempty,oneof=owned shared all" example:"owned"`
}

// BoardResponse represents the board response
type BoardResponse struct {
	BoardID     uuid.UUID   `json:"boardId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	OwnerID     uuid.UUID   `json:"ownerId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Name        string      `json:"name" example:"Sprint 12"`
	Description string      `json:"description" example:"Work planned for the second sprint of Q1"`
	CardsCount  int         `json:"cardsCount" example:"3"`
	MemberIDs   []uuid.UUID `json:"memberIds"`
	IsOwner     bool        `json:"isOwner" example:"true"`
	CreatedAt   time.Time   `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time   `json:"updatedAt" example:"2024-01-15T14:20:00Z"`
}

// BoardMemberResponse represents one user with access to a board
// @Description role is "owner" for the board owner and "member" otherwise.
// @Description joinedAt is omitted for the owner.
type BoardMemberResponse struct {
	UserID   uuid.UUID  `json:"userId"`
	Email    string     `json:"email,omitempty"`
	Name     string     `json:"name,omitempty"`
	Role     string     `json:"role" example:"member"`
	JoinedAt *time.Time `json:"joinedAt,omitempty"`
}

// Member roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
