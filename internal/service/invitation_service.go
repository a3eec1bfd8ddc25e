package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// InvitationService defines the interface for board invitations
type InvitationService interface {
	CreateInvitation(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error)
	RespondInvitation(ctx context.Context, callerID, inviteID uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error)
	ListMyInvitations(ctx context.Context, callerID uuid.UUID, filters *dto.InvitationFilters) (*dto.MyInvitationsResponse, error)
}

type invitationServiceImpl struct {
	invitationRepo repository.InvitationRepository
	boardRepo      repository.BoardRepository
	userRepo       repository.UserRepository
	publisher      realtime.Publisher
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewInvitationService creates a new instance of InvitationService
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) InvitationService {
	return &invitationServiceImpl{
		invitationRepo: invitationRepo,
		boardRepo:      boardRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
	}
}

// CreateInvitation invites a user to the caller's board
func (s *invitationServiceImpl) CreateInvitation(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, repoError(err, "Board not found", "Failed to load board")
	}
	if !board.IsOwner(callerID) {
		return nil, response.NewAppError(response.ErrCodeForbidden, "Only the board owner can invite members", "")
	}

	invitee, err := s.resolveInvitee(ctx, req)
	if err != nil {
		return nil, err
	}
	if invitee.ID == board.OwnerID {
		return nil, response.NewAppError(response.ErrCodeValidation, "The board owner cannot be invited", "")
	}

	member, err := s.boardRepo.IsMember(ctx, boardID, invitee.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check board membership", err.Error())
	}
	if member {
		return nil, response.NewAppError(response.ErrCodeAlreadyMember, "User is already a member of this board", "")
	}

	if _, err := s.invitationRepo.FindPending(ctx, boardID, invitee.ID); err == nil {
		return nil, response.NewAppError(response.ErrCodePendingRequestExists, "A pending invitation already exists for this user", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check invitations", err.Error())
	}

	invitation := &domain.Invitation{
		BoardID:      boardID,
		BoardOwnerID: board.OwnerID,
		MemberID:     invitee.ID,
		Email:        invitee.Email,
		Status:       domain.InvitationPending,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		s.logger.Error("Failed to create invitation", zap.String("board_id", boardID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create invitation", err.Error())
	}

	s.recordInvitation(domain.InvitationPending)
	s.logger.Info("Invitation created",
		zap.String("invite_id", invitation.ID.String()),
		zap.String("board_id", boardID.String()),
		zap.String("member_id", invitee.ID.String()),
	)
	return toInvitationResponse(invitation), nil
}

func (s *invitationServiceImpl) resolveInvitee(ctx context.Context, req *dto.CreateInvitationRequest) (*domain.User, error) {
	switch {
	case req.MemberID != nil && *req.MemberID != uuid.Nil:
		user, err := s.userRepo.FindByID(ctx, *req.MemberID)
		if err != nil {
			return nil, repoError(err, "User not found", "Failed to load user")
		}
		return user, nil
	case req.Email != "":
		user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
		if err != nil {
			return nil, repoError(err, "User not found", "Failed to load user")
		}
		return user, nil
	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "memberId or email is required", "")
	}
}

// RespondInvitation accepts or declines an invitation addressed to the
// caller. Accepting an already accepted invitation succeeds without change.
func (s *invitationServiceImpl) RespondInvitation(ctx context.Context, callerID, inviteID uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error) {
	status := domain.InvitationStatus(req.Status)
	if status != domain.InvitationAccepted && status != domain.InvitationDeclined {
		return nil, response.NewAppError(response.ErrCodeValidation, "Status must be accepted or declined", req.Status)
	}

	invitation, err := s.invitationRepo.FindByID(ctx, inviteID)
	if err != nil {
		return nil, repoError(err, "Invitation not found", "Failed to load invitation")
	}
	if invitation.MemberID != callerID {
		return nil, response.NewAppError(response.ErrCodeForbidden, "This invitation is not addressed to you", "")
	}
	if !invitation.IsPending() {
		return s.settled(invitation, status)
	}

	if err := s.invitationRepo.Respond(ctx, invitation, status); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			// answered concurrently
			current, findErr := s.invitationRepo.FindByID(ctx, inviteID)
			if findErr != nil {
				return nil, repoError(findErr, "Invitation not found", "Failed to load invitation")
			}
			return s.settled(current, status)
		}
		s.logger.Error("Failed to respond to invitation", zap.String("invite_id", inviteID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to respond to invitation", err.Error())
	}

	s.recordInvitation(status)
	if status == domain.InvitationAccepted {
		publish(ctx, s.publisher, s.logger, boardUpdate(invitation.BoardID, callerID, realtime.TagMembersChanged))
	}
	return toInvitationResponse(invitation), nil
}

func (s *invitationServiceImpl) settled(invitation *domain.Invitation, requested domain.InvitationStatus) (*dto.InvitationResponse, error) {
	if invitation.Status == domain.InvitationAccepted && requested == domain.InvitationAccepted {
		return toInvitationResponse(invitation), nil
	}
	return nil, response.NewAppError(response.ErrCodeInvalidState, "Invitation was already answered", string(invitation.Status))
}

// ListMyInvitations returns invitations the caller sent and received, newest first
func (s *invitationServiceImpl) ListMyInvitations(ctx context.Context, callerID uuid.UUID, filters *dto.InvitationFilters) (*dto.MyInvitationsResponse, error) {
	var status domain.InvitationStatus
	if filters != nil {
		status = domain.InvitationStatus(filters.Status)
	}

	sent, err := s.invitationRepo.ListSent(ctx, callerID, status)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list invitations", err.Error())
	}
	received, err := s.invitationRepo.ListReceived(ctx, callerID, status)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list invitations", err.Error())
	}

	resp := &dto.MyInvitationsResponse{
		Sent:     make([]*dto.InvitationResponse, 0, len(sent)),
		Received: make([]*dto.InvitationResponse, 0, len(received)),
	}
	for _, inv := range sent {
		resp.Sent = append(resp.Sent, toInvitationResponse(inv))
	}
	for _, inv := range received {
		resp.Received = append(resp.Received, toInvitationResponse(inv))
	}
	return resp, nil
}

func (s *invitationServiceImpl) recordInvitation(status domain.InvitationStatus) {
	if s.metrics != nil {
		s.metrics.RecordInvitation(string(status))
	}
}
