package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
)

// ReconcileResult counts the repairs made for one board
type ReconcileResult struct {
	CardIndexesFixed int
	TaskIndexesFixed int
	CountsFixed      int
}

// Total returns the number of rows that were rewritten
func (r ReconcileResult) Total() int {
	return r.CardIndexesFixed + r.TaskIndexesFixed + r.CountsFixed
}

// ReconcileRepository re-derives denormalized counts and closes index gaps
type ReconcileRepository interface {
	ListBoardIDs(ctx context.Context) ([]uuid.UUID, error)
	ReconcileBoard(ctx context.Context, boardID uuid.UUID) (ReconcileResult, error)
}

type reconcileRepositoryImpl struct {
	db *gorm.DB
}

// NewReconcileRepository creates a new instance of ReconcileRepository
func NewReconcileRepository(db *gorm.DB) ReconcileRepository {
	return &reconcileRepositoryImpl{db: db}
}

func (r *reconcileRepositoryImpl) ListBoardIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&domain.Board{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReconcileBoard rewrites board_index, card_index, cards_count and
// tasks_count for one board so they match the rows actually present.
// Existing relative order is kept; ties are broken by creation time.
func (r *reconcileRepositoryImpl) ReconcileBoard(ctx context.Context, boardID uuid.UUID) (ReconcileResult, error) {
	var res ReconcileResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board domain.Board
		if err := tx.First(&board, "id = ?", boardID).Error; err != nil {
			return err
		}

		var cards []*domain.Card
		if err := tx.Where("board_id = ?", boardID).
			Order("board_index ASC").Order("created_at ASC").
			Find(&cards).Error; err != nil {
			return err
		}

		for i, card := range cards {
			if card.BoardIndex != i {
				if err := tx.Model(&domain.Card{}).Where("id = ?", card.ID).
					UpdateColumn("board_index", i).Error; err != nil {
					return err
				}
				res.CardIndexesFixed++
			}

			var tasks []*domain.Task
			if err := tx.Where("card_id = ?", card.ID).
				Order("card_index ASC").Order("created_at ASC").
				Find(&tasks).Error; err != nil {
				return err
			}
			for j, task := range tasks {
				if task.CardIndex == j {
					continue
				}
				if err := tx.Model(&domain.Task{}).Where("id = ?", task.ID).
					UpdateColumn("card_index", j).Error; err != nil {
					return err
				}
				res.TaskIndexesFixed++
			}

			if card.TasksCount != len(tasks) {
				if err := tx.Model(&domain.Card{}).Where("id = ?", card.ID).
					UpdateColumn("tasks_count", len(tasks)).Error; err != nil {
					return err
				}
				res.CountsFixed++
			}
		}

		if board.CardsCount != len(cards) {
			if err := tx.Model(&domain.Board{}).Where("id = ?", boardID).
				UpdateColumn("cards_count", len(cards)).Error; err != nil {
				return err
			}
			res.CountsFixed++
		}
		return nil
	})
	return res, err
}
