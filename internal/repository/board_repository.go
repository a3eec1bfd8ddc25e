package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard-api/internal/domain"
)

// BoardScope narrows a board listing by the caller's relation to the board
type BoardScope string

const (
	BoardScopeAll    BoardScope = "all"
	BoardScopeOwned  BoardScope = "owned"
	BoardScopeShared BoardScope = "shared"
)

// BoardFilter holds the list criteria for boards visible to UserID
type BoardFilter struct {
	UserID uuid.UUID
	Name   string
	Scope  BoardScope
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	List(ctx context.Context, filter BoardFilter) ([]*domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, boardID, userID uuid.UUID) error
	ListMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	Count(ctx context.Context) (int64, error)
}

type boardRepositoryImpl struct {
	db *gorm.DB
}

// NewBoardRepository creates a new instance of BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepositoryImpl{db: db}
}

func (r *boardRepositoryImpl) Create(ctx context.Context, board *domain.Board) error {
	board.CardsCount = 0
	return r.db.WithContext(ctx).Omit("Members").Create(board).Error
}

func (r *boardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		First(&board, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// List returns boards newest first
func (r *boardRepositoryImpl) List(ctx context.Context, filter BoardFilter) ([]*domain.Board, error) {
	memberOf := r.db.Model(&domain.BoardMember{}).Select("board_id").Where("user_id = ?", filter.UserID)

	query := r.db.WithContext(ctx).Model(&domain.Board{})
	switch filter.Scope {
	case BoardScopeOwned:
		query = query.Where("owner_id = ?", filter.UserID)
	case BoardScopeShared:
		query = query.Where("id IN (?) AND owner_id <> ?", memberOf, filter.UserID)
	default:
		query = query.Where("owner_id = ? OR id IN (?)", filter.UserID, memberOf)
	}

	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var boards []*domain.Board
	if err := query.Preload("Members").Order("created_at DESC").Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *boardRepositoryImpl) Update(ctx context.Context, board *domain.Board) error {
	result := r.db.WithContext(ctx).Model(board).Select("Name", "Description").Updates(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes the board with its tasks, cards, members and
// invitations in one transaction
func (r *boardRepositoryImpl) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&domain.Card{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&domain.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Board{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *boardRepositoryImpl) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember is a set-union: adding an existing member is a no-op
func (r *boardRepositoryImpl) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return addMember(r.db.WithContext(ctx), boardID, userID)
}

func (r *boardRepositoryImpl) ListMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&domain.BoardMember{}).
		Where("board_id = ?", boardID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *boardRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Board{}).Count(&count).Error
	return count, err
}

func addMember(tx *gorm.DB, boardID, userID uuid.UUID) error {
	member := &domain.BoardMember{BoardID: boardID, UserID: userID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "board_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}
