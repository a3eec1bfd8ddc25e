package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/ordering"
)

// CardRepository defines the interface for card data access. Every write that
// touches board_index or cards_count runs in a single transaction.
type CardRepository interface {
	Append(ctx context.Context, card *domain.Card) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	ListOrdered(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error)
	ListIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, card *domain.Card) error
	Remove(ctx context.Context, card *domain.Card) error
	ApplyOrder(ctx context.Context, boardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error
	Count(ctx context.Context) (int64, error)
}

type cardRepositoryImpl struct {
	db *gorm.DB
}

// NewCardRepository creates a new instance of CardRepository
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepositoryImpl{db: db}
}

// Append inserts the card at index = current sibling count and bumps the
// board's cards_count
func (r *cardRepositoryImpl) Append(ctx context.Context, card *domain.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Card{}).Where("board_id = ?", card.BoardID).Count(&count).Error; err != nil {
			return err
		}
		card.BoardIndex = int(count)
		card.TasksCount = 0
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Board{}).
			Where("id = ?", card.BoardID).
			UpdateColumn("cards_count", gorm.Expr("cards_count + ?", 1)).Error
	})
}

func (r *cardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *cardRepositoryImpl) ListOrdered(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
	var cards []*domain.Card
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("board_index ASC").
		Order("created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListIDs returns sibling ids in index order
func (r *cardRepositoryImpl) ListIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&domain.Card{}).
		Where("board_id = ?", boardID).
		Order("board_index ASC").
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *cardRepositoryImpl) Update(ctx context.Context, card *domain.Card) error {
	result := r.db.WithContext(ctx).Model(card).Select("Name", "Description").Updates(card)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes the card and its tasks, closes the index gap it leaves and
// decrements the board's cards_count
func (r *cardRepositoryImpl) Remove(ctx context.Context, card *domain.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", card.ID).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", card.ID).Delete(&domain.Card{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&domain.Card{}).
			Where("board_id = ? AND board_index > ?", card.BoardID, card.BoardIndex).
			UpdateColumn("board_index", gorm.Expr("board_index - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Board{}).
			Where("id = ? AND cards_count > 0", card.BoardID).
			UpdateColumn("cards_count", gorm.Expr("cards_count - 1")).Error
	})
}

// ApplyOrder writes every placement or none of them
func (r *cardRepositoryImpl) ApplyOrder(ctx context.Context, boardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error {
	if len(placements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range placements {
			result := tx.Model(&domain.Card{}).
				Where("id = ? AND board_id = ?", p.ID, boardID).
				UpdateColumn("board_index", p.Index)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

func (r *cardRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Card{}).Count(&count).Error
	return count, err
}
