package domain

import "github.com/google/uuid"

// Card is a column on a board. BoardIndex is contiguous (0..n-1) per board.
type Card struct {
	BaseModel
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index:idx_cards_board_index,priority:1" json:"board_id"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	BoardIndex  int       `gorm:"not null;index:idx_cards_board_index,priority:2" json:"board_index"`
	TasksCount  int       `gorm:"not null;default:0" json:"tasks_count"`
}

// TableName specifies the table name for Card
func (Card) TableName() string {
	return "cards"
}
