package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateInvitationRequest represents the request to invite a user to a board
// @Description Either memberId or email identifies the invitee. memberId wins when both are set.
type CreateInvitationRequest struct {
	MemberID *uuid.UUID `json:"memberId,omitempty" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Email    string     `json:"email,omitempty" binding:"omitempty,email" example:"lee@example.com"`
}

// RespondInvitationRequest represents the invitee's answer
type RespondInvitationRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted declined" example:"accepted"`
}

// InvitationFilters represents the query parameters of the invitation listing
type InvitationFilters struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted declined" example:"pending"`
}

// InvitationResponse represents an invitation
type InvitationResponse struct {
	InviteID     uuid.UUID `json:"inviteId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	BoardID      uuid.UUID `json:"boardId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	BoardOwnerID uuid.UUID `json:"boardOwnerId" example:"c3d4e5f6-a7b8-9012-cdef-123456789012"`
	MemberID     uuid.UUID `json:"memberId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Email        string    `json:"email,omitempty" example:"lee@example.com"`
	Status       string    `json:"status" example:"pending"`
	CreatedAt    time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updatedAt" example:"2024-01-15T14:20:00Z"`
}

// MyInvitationsResponse splits the caller's invitations by direction
type MyInvitationsResponse struct {
	Sent     []*InvitationResponse `json:"sent"`
	Received []*InvitationResponse `json:"received"`
}
