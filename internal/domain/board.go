package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board is the top-level container. Boards are not ordered; they are read
// newest first.
type Board struct {
	BaseModel
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_boards_owner_id" json:"owner_id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	CardsCount  int           `gorm:"not null;default:0" json:"cards_count"`
	Members     []BoardMember `gorm:"foreignKey:BoardID" json:"members,omitempty"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// IsOwner reports whether userID owns the board
func (b *Board) IsOwner(userID uuid.UUID) bool {
	return b.OwnerID == userID
}

// BoardMember is one entry of a board's member set. The owner is implicitly a
// member and is not stored here.
type BoardMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index:idx_board_members_board_id;uniqueIndex:uq_board_members_board_user" json:"board_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_board_members_user_id;uniqueIndex:uq_board_members_board_user" json:"user_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for BoardMember
func (BoardMember) TableName() string {
	return "board_members"
}

// BeforeCreate assigns an id and join time when missing
func (m *BoardMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}
