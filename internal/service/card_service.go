package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/ordering"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// CardService defines the interface for card business logic
type CardService interface {
	CreateCard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	ListCards(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.CardResponse, error)
	GetCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*dto.CardResponse, error)
	UpdateCard(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.UpdateCardRequest) (*dto.CardResponse, error)
	DeleteCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) error
	ReorderCards(ctx context.Context, callerID, boardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderCardsResponse, error)
}

type cardServiceImpl struct {
	cardRepo  repository.CardRepository
	access    AccessService
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCardService creates a new instance of CardService
func NewCardService(
	cardRepo repository.CardRepository,
	access AccessService,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) CardService {
	return &cardServiceImpl{
		cardRepo:  cardRepo,
		access:    access,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// CreateCard appends a card at the end of the board
func (s *cardServiceImpl) CreateCard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	if err := s.access.AuthorizeBoardAccess(ctx, callerID, boardID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Card name is required", "")
	}

	card := &domain.Card{
		BoardID:     boardID,
		CreatorID:   callerID,
		Name:        name,
		Description: req.Description,
	}
	if err := s.cardRepo.Append(ctx, card); err != nil {
		s.logger.Error("Failed to create card", zap.String("board_id", boardID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create card", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementCardCreated()
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagCardCreated))
	return toCardResponse(card), nil
}

// ListCards returns the board's cards by board index
func (s *cardServiceImpl) ListCards(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.CardResponse, error) {
	if err := s.access.AuthorizeBoardAccess(ctx, callerID, boardID); err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.ListOrdered(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list cards", err.Error())
	}
	return toCardResponses(cards), nil
}

func (s *cardServiceImpl) GetCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*dto.CardResponse, error) {
	card, err := s.loadCard(ctx, callerID, boardID, cardID)
	if err != nil {
		return nil, err
	}
	return toCardResponse(card), nil
}

func (s *cardServiceImpl) UpdateCard(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.UpdateCardRequest) (*dto.CardResponse, error) {
	card, err := s.loadCard(ctx, callerID, boardID, cardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewAppError(response.ErrCodeValidation, "Card name cannot be empty", "")
		}
		card.Name = name
	}
	if req.Description != nil {
		card.Description = *req.Description
	}

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, repoError(err, "Card not found", "Failed to update card")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagCardUpdated))
	return toCardResponse(card), nil
}

// DeleteCard removes the card and its tasks and closes the gap it leaves
func (s *cardServiceImpl) DeleteCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) error {
	card, err := s.loadCard(ctx, callerID, boardID, cardID)
	if err != nil {
		return err
	}
	if err := s.cardRepo.Remove(ctx, card); err != nil {
		s.logger.Error("Failed to delete card", zap.String("card_id", cardID.String()), zap.Error(err))
		return repoError(err, "Card not found", "Failed to delete card")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagCardDeleted))
	return nil
}

// ReorderCards moves the source card to the target card's position and
// renumbers the board. Only the cards whose index changed are written.
func (s *cardServiceImpl) ReorderCards(ctx context.Context, callerID, boardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderCardsResponse, error) {
	if err := s.access.AuthorizeBoardAccess(ctx, callerID, boardID); err != nil {
		return nil, err
	}
	sourceID, err := parseID(req.SourceID, "sourceId")
	if err != nil {
		return nil, err
	}
	targetID, err := parseID(req.TargetID, "targetId")
	if err != nil {
		return nil, err
	}

	ids, err := s.cardRepo.ListIDs(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load cards", err.Error())
	}

	after, changed, err := ordering.Move(ids, sourceID, targetID)
	if err != nil {
		if errors.Is(err, ordering.ErrNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Card not found on this board", err.Error())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to reorder cards", err.Error())
	}

	if changed {
		if err := s.cardRepo.ApplyOrder(ctx, boardID, ordering.Changed(ids, after)); err != nil {
			s.recordReorder(metrics.OutcomeFailed)
			s.logger.Error("Failed to persist card order", zap.String("board_id", boardID.String()), zap.Error(err))
			return nil, repoError(err, "Card not found on this board", "Failed to reorder cards")
		}
		s.recordReorder(metrics.OutcomeApplied)
		publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagCardsReordered))
	} else {
		s.recordReorder(metrics.OutcomeNoop)
	}

	cards, err := s.cardRepo.ListOrdered(ctx, boardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list cards", err.Error())
	}
	return &dto.ReorderCardsResponse{Changed: changed, Cards: toCardResponses(cards)}, nil
}

func (s *cardServiceImpl) recordReorder(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordReorder("card", outcome)
	}
}

// loadCard checks board access and that the card sits on that board
func (s *cardServiceImpl) loadCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*domain.Card, error) {
	if err := s.access.AuthorizeBoardAccess(ctx, callerID, boardID); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, repoError(err, "Card not found", "Failed to load card")
	}
	if card.BoardID != boardID {
		return nil, response.NewAppError(response.ErrCodeValidation, "Card does not belong to this board", "")
	}
	return card, nil
}
