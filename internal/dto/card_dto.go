package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCardRequest represents the request to append a card to a board
type CreateCardRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255" example:"In Progress"`
	Description string `json:"description" binding:"max=2000" example:"Tasks someone is working on"`
}

// UpdateCardRequest represents the request to update a card. Position is
// changed through the reorder endpoint only.
type UpdateCardRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255" example:"Doing"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ReorderRequest represents a single-level reorder among siblings
// @Description sourceId is moved to the position currently held by targetId.
// @Description Both must belong to the parent in the path.
type ReorderRequest struct {
	SourceID string `json:"sourceId" binding:"required" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	TargetID string `json:"targetId" binding:"required" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
}

// CardResponse represents the card response
type CardResponse struct {
	CardID      uuid.UUID `json:"cardId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	BoardID     uuid.UUID `json:"boardId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	CreatorID   uuid.UUID `json:"creatorId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Name        string    `json:"name" example:"In Progress"`
	Description string    `json:"description"`
	BoardIndex  int       `json:"boardIndex" example:"1"`
	TasksCount  int       `json:"tasksCount" example:"4"`
	CreatedAt   time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2024-01-15T14:20:00Z"`
}

// ReorderCardsResponse is the board's card list after a reorder.
// Changed is false when the request was a no-op.
type ReorderCardsResponse struct {
	Changed bool            `json:"changed" example:"true"`
	Cards   []*CardResponse `json:"cards"`
}
