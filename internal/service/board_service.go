package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// BoardService defines the interface for board business logic
type BoardService interface {
	CreateBoard(ctx context.Context, callerID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	ListBoards(ctx context.Context, callerID uuid.UUID, filters *dto.BoardFilters) ([]*dto.BoardResponse, error)
	GetBoard(ctx context.Context, callerID, boardID uuid.UUID) (*dto.BoardResponse, error)
	UpdateBoard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error)
	DeleteBoard(ctx context.Context, callerID, boardID uuid.UUID) error
	ListMembers(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.BoardMemberResponse, error)
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	boardRepo repository.BoardRepository
	userRepo  repository.UserRepository
	access    AccessService
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	access AccessService,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) BoardService {
	return &boardServiceImpl{
		boardRepo: boardRepo,
		userRepo:  userRepo,
		access:    access,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func memberIDsOf(board *domain.Board) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(board.Members))
	for _, m := range board.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// CreateBoard creates a board owned by the caller
func (s *boardServiceImpl) CreateBoard(ctx context.Context, callerID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Board name is required", "")
	}

	board := &domain.Board{
		OwnerID:     callerID,
		Name:        name,
		Description: req.Description,
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		s.logger.Error("Failed to create board", zap.String("owner_id", callerID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create board", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementBoardCreated()
	}
	s.logger.Info("Board created",
		zap.String("board_id", board.ID.String()),
		zap.String("owner_id", callerID.String()),
	)
	return toBoardResponse(board, nil, callerID), nil
}

// ListBoards returns the boards the caller owns or was invited to, newest first
func (s *boardServiceImpl) ListBoards(ctx context.Context, callerID uuid.UUID, filters *dto.BoardFilters) ([]*dto.BoardResponse, error) {
	filter := repository.BoardFilter{UserID: callerID, Scope: repository.BoardScopeAll}
	if filters != nil {
		filter.Name = filters.Name
		switch repository.BoardScope(filters.Scope) {
		case repository.BoardScopeOwned, repository.BoardScopeShared:
			filter.Scope = repository.BoardScope(filters.Scope)
		case "", repository.BoardScopeAll:
		default:
			return nil, response.NewAppError(response.ErrCodeValidation, "Invalid scope", filters.Scope)
		}
	}

	boards, err := s.boardRepo.List(ctx, filter)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list boards", err.Error())
	}

	out := make([]*dto.BoardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, toBoardResponse(b, memberIDsOf(b), callerID))
	}
	return out, nil
}

// GetBoard returns one board the caller can access
func (s *boardServiceImpl) GetBoard(ctx context.Context, callerID, boardID uuid.UUID) (*dto.BoardResponse, error) {
	board, err := s.access.LoadBoard(ctx, callerID, boardID)
	if err != nil {
		return nil, err
	}
	return toBoardResponse(board, memberIDsOf(board), callerID), nil
}

// UpdateBoard changes the board's name or description. Members may edit; only
// deletion is reserved to the owner.
func (s *boardServiceImpl) UpdateBoard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
	board, err := s.access.LoadBoard(ctx, callerID, boardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewAppError(response.ErrCodeValidation, "Board name cannot be empty", "")
		}
		board.Name = name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, repoError(err, "Board not found", "Failed to update board")
	}

	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagBoardUpdated))
	return toBoardResponse(board, memberIDsOf(board), callerID), nil
}

// DeleteBoard removes the board with its cards, tasks, members and invitations
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, callerID, boardID uuid.UUID) error {
	board, err := s.access.LoadBoard(ctx, callerID, boardID)
	if err != nil {
		return err
	}
	if !board.IsOwner(callerID) {
		return response.NewAppError(response.ErrCodeForbidden, "Only the board owner can delete the board", "")
	}

	if err := s.boardRepo.DeleteCascade(ctx, boardID); err != nil {
		s.logger.Error("Failed to delete board", zap.String("board_id", boardID.String()), zap.Error(err))
		return repoError(err, "Board not found", "Failed to delete board")
	}

	s.logger.Info("Board deleted", zap.String("board_id", boardID.String()))
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagBoardDeleted))
	return nil
}

// ListMembers returns the owner followed by the members in join order
func (s *boardServiceImpl) ListMembers(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.BoardMemberResponse, error) {
	board, err := s.access.LoadBoard(ctx, callerID, boardID)
	if err != nil {
		return nil, err
	}

	ids := append([]uuid.UUID{board.OwnerID}, memberIDsOf(board)...)
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load members", err.Error())
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]*dto.BoardMemberResponse, 0, len(ids))
	owner := &dto.BoardMemberResponse{UserID: board.OwnerID, Role: dto.RoleOwner}
	if u, ok := byID[board.OwnerID]; ok {
		owner.Email, owner.Name = u.Email, u.Name
	}
	out = append(out, owner)

	for _, m := range board.Members {
		joined := m.JoinedAt
		member := &dto.BoardMemberResponse{UserID: m.UserID, Role: dto.RoleMember, JoinedAt: &joined}
		if u, ok := byID[m.UserID]; ok {
			member.Email, member.Name = u.Email, u.Name
		}
		out = append(out, member)
	}
	return out, nil
}
