package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/response"
)

// publish hands a committed change to the realtime fan-out. The mutation has
// already succeeded, so a publish failure is logged and swallowed.
func publish(ctx context.Context, pub realtime.Publisher, logger *zap.Logger, u realtime.Update) {
	if pub == nil {
		return
	}
	u.Origin = realtime.OriginFrom(ctx)
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}
	if err := pub.Publish(ctx, u); err != nil {
		logger.Warn("Failed to publish board update",
			zap.String("board_id", u.BoardID),
			zap.String("tag", u.Tag),
			zap.Error(err),
		)
	}
}

func boardUpdate(boardID, actorID uuid.UUID, tag string, cardIDs ...uuid.UUID) realtime.Update {
	u := realtime.Update{
		BoardID: boardID.String(),
		Tag:     tag,
		ActorID: actorID.String(),
	}
	for _, id := range cardIDs {
		u.CardIDs = append(u.CardIDs, id.String())
	}
	return u
}

// repoError maps a repository error to an AppError
func repoError(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewAppError(response.ErrCodeNotFound, notFoundMsg, "")
	}
	return response.NewAppError(response.ErrCodeInternal, internalMsg, err.Error())
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, response.NewAppError(response.ErrCodeValidation, "Invalid "+field, err.Error())
	}
	return id, nil
}

func toBoardResponse(board *domain.Board, memberIDs []uuid.UUID, callerID uuid.UUID) *dto.BoardResponse {
	if memberIDs == nil {
		memberIDs = []uuid.UUID{}
	}
	return &dto.BoardResponse{
		BoardID:     board.ID,
		OwnerID:     board.OwnerID,
		Name:        board.Name,
		Description: board.Description,
		CardsCount:  board.CardsCount,
		MemberIDs:   memberIDs,
		IsOwner:     board.IsOwner(callerID),
		CreatedAt:   board.CreatedAt,
		UpdatedAt:   board.UpdatedAt,
	}
}

func toCardResponse(card *domain.Card) *dto.CardResponse {
	return &dto.CardResponse{
		CardID:      card.ID,
		BoardID:     card.BoardID,
		CreatorID:   card.CreatorID,
		Name:        card.Name,
		Description: card.Description,
		BoardIndex:  card.BoardIndex,
		TasksCount:  card.TasksCount,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   card.UpdatedAt,
	}
}

func toCardResponses(cards []*domain.Card) []*dto.CardResponse {
	out := make([]*dto.CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	return out
}

func toTaskResponse(task *domain.Task) *dto.TaskResponse {
	assigned := make([]uuid.UUID, 0, len(task.AssignedUserIDs))
	assigned = append(assigned, task.AssignedUserIDs...)
	return &dto.TaskResponse{
		TaskID:          task.ID,
		CardID:          task.CardID,
		BoardID:         task.BoardID,
		OwnerID:         task.OwnerID,
		Title:           task.Title,
		Description:     task.Description,
		Status:          string(task.Status),
		AssignedUserIDs: assigned,
		CardIndex:       task.CardIndex,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []*dto.TaskResponse {
	out := make([]*dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toInvitationResponse(inv *domain.Invitation) *dto.InvitationResponse {
	return &dto.InvitationResponse{
		InviteID:     inv.ID,
		BoardID:      inv.BoardID,
		BoardOwnerID: inv.BoardOwnerID,
		MemberID:     inv.MemberID,
		Email:        inv.Email,
		Status:       string(inv.Status),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
