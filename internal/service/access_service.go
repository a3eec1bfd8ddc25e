package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// AccessService gates every board-scoped operation
type AccessService interface {
	// AuthorizeBoardAccess returns nil when userID owns or is a member of the
	// board. A missing board is reported before a missing permission.
	AuthorizeBoardAccess(ctx context.Context, userID, boardID uuid.UUID) error
	// LoadBoard is AuthorizeBoardAccess that also returns the board
	LoadBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.Board, error)
}

type accessServiceImpl struct {
	boardRepo repository.BoardRepository
	logger    *zap.Logger
}

// NewAccessService creates a new instance of AccessService
func NewAccessService(boardRepo repository.BoardRepository, logger *zap.Logger) AccessService {
	return &accessServiceImpl{boardRepo: boardRepo, logger: logger}
}

func (s *accessServiceImpl) AuthorizeBoardAccess(ctx context.Context, userID, boardID uuid.UUID) error {
	_, err := s.LoadBoard(ctx, userID, boardID)
	return err
}

func (s *accessServiceImpl) LoadBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.Board, error) {
	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, repoError(err, "Board not found", "Failed to load board")
	}
	if board.IsOwner(userID) {
		return board, nil
	}

	member, err := s.boardRepo.IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check board membership", err.Error())
	}
	if !member {
		s.logger.Debug("Board access denied",
			zap.String("board_id", boardID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, response.NewAppError(response.ErrCodeForbidden, "You do not have access to this board", "")
	}
	return board, nil
}
