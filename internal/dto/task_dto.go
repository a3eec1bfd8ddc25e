package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request to append a task to a card
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255" example:"Write release notes"`
	Description string `json:"description" binding:"max=5000" example:"Cover the API changes"`
	Status      string `json:"status" binding:"omitempty,oneof=new wip reject complete" example:"new"`
}

// UpdateTaskRequest represents the request to update a task. All fields are
// optional; position is changed through reorder and move only.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255" example:"Write release notes v2"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Status      *string `json:"status" binding:"omitempty,oneof=new wip reject complete" example:"wip"`
}

// AssignTaskRequest represents the request to assign a board member to a task
type AssignTaskRequest struct {
	MemberID uuid.UUID `json:"memberId" binding:"required" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
}

// MoveTaskRequest represents a task move between cards of the same board
// @Description targetId is the destination sibling whose position the task takes,
// @Description or "-1" to place the task first in the destination card.
type MoveTaskRequest struct {
	SourceID          string    `json:"sourceId" binding:"required" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	TargetID          string    `json:"targetId" binding:"required" example:"-1"`
	DestinationCardID uuid.UUID `json:"destinationCardId" binding:"required" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
}

// TaskResponse represents the task response
type TaskResponse struct {
	TaskID          uuid.UUID   `json:"taskId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	CardID          uuid.UUID   `json:"cardId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	BoardID         uuid.UUID   `json:"boardId" example:"c3d4e5f6-a7b8-9012-cdef-123456789012"`
	OwnerID         uuid.UUID   `json:"ownerId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Title           string      `json:"title" example:"Write release notes"`
	Description     string      `json:"description"`
	Status          string      `json:"status" example:"wip"`
	AssignedUserIDs []uuid.UUID `json:"assignedUserIds"`
	CardIndex       int         `json:"cardIndex" example:"0"`
	CreatedAt       time.Time   `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt       time.Time   `json:"updatedAt" example:"2024-01-15T14:20:00Z"`
}

// ReorderTasksResponse is the card's task list after a reorder.
// Changed is false when the request was a no-op.
type ReorderTasksResponse struct {
	Changed bool            `json:"changed" example:"true"`
	Tasks   []*TaskResponse `json:"tasks"`
}

// MoveTaskResponse returns both affected task lists after a move. For a move
// within one card Source and Destination hold the same list.
type MoveTaskResponse struct {
	Changed     bool            `json:"changed" example:"true"`
	Task        *TaskResponse   `json:"task"`
	Source      []*TaskResponse `json:"source"`
	Destination []*TaskResponse `json:"destination"`
}
