package domain

import "github.com/google/uuid"

// InvitationStatus represents the state of a board invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation offers board membership to a user. Only pending invitations may
// change state.
type Invitation struct {
	BaseModel
	BoardID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_invitations_board_member,priority:1" json:"board_id"`
	BoardOwnerID uuid.UUID        `gorm:"type:uuid;not null;index:idx_invitations_owner_id" json:"board_owner_id"`
	MemberID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_invitations_board_member,priority:2;index:idx_invitations_member_id" json:"member_id"`
	Email        string           `gorm:"type:varchar(255)" json:"email_member,omitempty"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_invitations_status" json:"status"`
}

// TableName specifies the table name for Invitation
func (Invitation) TableName() string {
	return "invitations"
}

// IsPending reports whether the invitation can still be answered
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}
