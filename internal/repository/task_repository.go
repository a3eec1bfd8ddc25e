package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/ordering"
)

// TaskMove describes a persisted cross-card move. Source holds the index
// writes for the remaining siblings of FromCardID; Destination holds the
// writes for ToCardID including the moved task itself.
type TaskMove struct {
	TaskID      uuid.UUID
	FromCardID  uuid.UUID
	ToCardID    uuid.UUID
	ToBoardID   uuid.UUID
	Source      []ordering.Placement[uuid.UUID]
	Destination []ordering.Placement[uuid.UUID]
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Append(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListOrdered(ctx context.Context, cardID uuid.UUID) ([]*domain.Task, error)
	ListIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, task *domain.Task) error
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)
	RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)
	Remove(ctx context.Context, task *domain.Task) error
	ApplyOrder(ctx context.Context, cardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error
	ApplyMove(ctx context.Context, move TaskMove) error
	Count(ctx context.Context) (int64, error)
}

type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// Append inserts the task at index = current sibling count and bumps the
// card's tasks_count
func (r *taskRepositoryImpl) Append(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Task{}).Where("card_id = ?", task.CardID).Count(&count).Error; err != nil {
			return err
		}
		task.CardIndex = int(count)
		if task.AssignedUserIDs == nil {
			task.AssignedUserIDs = []uuid.UUID{}
		}
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Card{}).
			Where("id = ?", task.CardID).
			UpdateColumn("tasks_count", gorm.Expr("tasks_count + ?", 1)).Error
	})
}

func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepositoryImpl) ListOrdered(ctx context.Context, cardID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("card_index ASC").
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListIDs returns sibling ids in index order
func (r *taskRepositoryImpl) ListIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("card_id = ?", cardID).
		Order("card_index ASC").
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update writes the editable fields only. Assignees are changed through
// AddAssignee and RemoveAssignee so a stale copy never overwrites them.
func (r *taskRepositoryImpl) Update(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).Model(task).
		Select("Title", "Description", "Status").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddAssignee adds userID to the task's assignee set under a row lock and
// returns the task as stored
func (r *taskRepositoryImpl) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	return r.editAssignees(ctx, taskID, func(task *domain.Task) bool {
		if task.IsAssigned(userID) {
			return false
		}
		task.AssignedUserIDs = append(task.AssignedUserIDs, userID)
		return true
	})
}

// RemoveAssignee drops userID from the task's assignee set under a row lock
func (r *taskRepositoryImpl) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	return r.editAssignees(ctx, taskID, func(task *domain.Task) bool {
		if !task.IsAssigned(userID) {
			return false
		}
		kept := make([]uuid.UUID, 0, len(task.AssignedUserIDs)-1)
		for _, id := range task.AssignedUserIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		task.AssignedUserIDs = kept
		return true
	})
}

func (r *taskRepositoryImpl) editAssignees(ctx context.Context, taskID uuid.UUID, edit func(task *domain.Task) bool) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}
		if !edit(&task) {
			return nil
		}
		return tx.Model(&domain.Task{}).
			Where("id = ?", taskID).
			UpdateColumn("assigned_user_ids", task.AssignedUserIDs).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Remove deletes the task, closes the gap and decrements the card's count
func (r *taskRepositoryImpl) Remove(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", task.ID).Delete(&domain.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&domain.Task{}).
			Where("card_id = ? AND card_index > ?", task.CardID, task.CardIndex).
			UpdateColumn("card_index", gorm.Expr("card_index - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Card{}).
			Where("id = ? AND tasks_count > 0", task.CardID).
			UpdateColumn("tasks_count", gorm.Expr("tasks_count - 1")).Error
	})
}

func (r *taskRepositoryImpl) ApplyOrder(ctx context.Context, cardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error {
	if len(placements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyTaskPlacements(tx, cardID, placements)
	})
}

// ApplyMove commits the source renumbering, the moved task's reassignment and
// the destination renumbering together
func (r *taskRepositoryImpl) ApplyMove(ctx context.Context, move TaskMove) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyTaskPlacements(tx, move.FromCardID, move.Source); err != nil {
			return err
		}

		var shifted []ordering.Placement[uuid.UUID]
		for _, p := range move.Destination {
			if p.ID != move.TaskID {
				shifted = append(shifted, p)
				continue
			}
			result := tx.Model(&domain.Task{}).
				Where("id = ? AND card_id = ?", move.TaskID, move.FromCardID).
				UpdateColumns(map[string]interface{}{
					"card_id":    move.ToCardID,
					"board_id":   move.ToBoardID,
					"card_index": p.Index,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if err := applyTaskPlacements(tx, move.ToCardID, shifted); err != nil {
			return err
		}

		if move.FromCardID == move.ToCardID {
			return nil
		}
		if err := tx.Model(&domain.Card{}).
			Where("id = ? AND tasks_count > 0", move.FromCardID).
			UpdateColumn("tasks_count", gorm.Expr("tasks_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Card{}).
			Where("id = ?", move.ToCardID).
			UpdateColumn("tasks_count", gorm.Expr("tasks_count + 1")).Error
	})
}

func (r *taskRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Count(&count).Error
	return count, err
}

func applyTaskPlacements(tx *gorm.DB, cardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error {
	for _, p := range placements {
		result := tx.Model(&domain.Task{}).
			Where("id = ? AND card_id = ?", p.ID, cardID).
			UpdateColumn("card_index", p.Index)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
