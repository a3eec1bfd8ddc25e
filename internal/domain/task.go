package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskStatusUnset    TaskStatus = ""
	TaskStatusNew      TaskStatus = "new"
	TaskStatusWIP      TaskStatus = "wip"
	TaskStatusReject   TaskStatus = "reject"
	TaskStatusComplete TaskStatus = "complete"
)

// Valid reports whether s is a known status (the empty status is allowed)
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusUnset, TaskStatusNew, TaskStatusWIP, TaskStatusReject, TaskStatusComplete:
		return true
	}
	return false
}

// Task lives in a card. CardIndex is contiguous (0..n-1) per card; BoardID is
// denormalized so cascades and board-wide queries need no join.
type Task struct {
	BaseModel
	CardID          uuid.UUID                      `gorm:"type:uuid;not null;index:idx_tasks_card_index,priority:1" json:"card_id"`
	BoardID         uuid.UUID                      `gorm:"type:uuid;not null;index:idx_tasks_board_id" json:"board_id"`
	OwnerID         uuid.UUID                      `gorm:"type:uuid;not null" json:"owner_id"`
	Title           string                         `gorm:"type:varchar(255);not null" json:"title"`
	Description     string                         `gorm:"type:text" json:"description"`
	Status          TaskStatus                     `gorm:"type:varchar(20);not null;default:''" json:"status"`
	AssignedUserIDs datatypes.JSONSlice[uuid.UUID] `json:"assigned_user_ids"`
	CardIndex       int                            `gorm:"not null;index:idx_tasks_card_index,priority:2" json:"card_index"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// IsAssigned reports whether userID is in the assignee set
func (t *Task) IsAssigned(userID uuid.UUID) bool {
	for _, id := range t.AssignedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
