package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
)

// ErrInvitationNotPending is returned by Respond when the invitation already
// left the pending state
var ErrInvitationNotPending = errors.New("invitation is not pending")

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	FindPending(ctx context.Context, boardID, memberID uuid.UUID) (*domain.Invitation, error)
	ListSent(ctx context.Context, ownerID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error)
	ListReceived(ctx context.Context, memberID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error)
	Respond(ctx context.Context, invitation *domain.Invitation, status domain.InvitationStatus) error
}

type invitationRepositoryImpl struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new instance of InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepositoryImpl{db: db}
}

func (r *invitationRepositoryImpl) Create(ctx context.Context, invitation *domain.Invitation) error {
	invitation.Status = domain.InvitationPending
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepositoryImpl) FindPending(ctx context.Context, boardID, memberID uuid.UUID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND member_id = ? AND status = ?", boardID, memberID, domain.InvitationPending).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepositoryImpl) ListSent(ctx context.Context, ownerID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	return r.list(ctx, "board_owner_id = ?", ownerID, status)
}

func (r *invitationRepositoryImpl) ListReceived(ctx context.Context, memberID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	return r.list(ctx, "member_id = ?", memberID, status)
}

func (r *invitationRepositoryImpl) list(ctx context.Context, cond string, userID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	query := r.db.WithContext(ctx).Where(cond, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var invitations []*domain.Invitation
	if err := query.Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Respond moves a pending invitation to status. Acceptance adds the member to
// the board in the same transaction.
func (r *invitationRepositoryImpl) Respond(ctx context.Context, invitation *domain.Invitation, status domain.InvitationStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, domain.InvitationPending).
			Updates(map[string]interface{}{"status": status})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationNotPending
		}
		if status == domain.InvitationAccepted {
			if err := addMember(tx, invitation.BoardID, invitation.MemberID); err != nil {
				return err
			}
		}
		invitation.Status = status
		return nil
	})
}
