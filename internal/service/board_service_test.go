package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/response"
)

func TestBoardService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")

	mine := env.board(t, owner, "Sprint 12")
	theirs := env.board(t, other, "Roadmap")
	_ = env.board(t, other, "Private")

	// other invites owner to Roadmap
	inv, err := env.invitations.CreateInvitation(ctx, other, theirs, &dto.CreateInvitationRequest{Email: "owner@example.com"})
	require.NoError(t, err)
	_, err = env.invitations.RespondInvitation(ctx, owner, inv.InviteID, &dto.RespondInvitationRequest{Status: "accepted"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		filters  *dto.BoardFilters
		expected []uuid.UUID
	}{
		{"전체 범위는 최신순", nil, []uuid.UUID{theirs, mine}},
		{"소유 보드만", &dto.BoardFilters{Scope: "owned"}, []uuid.UUID{mine}},
		{"공유 보드만", &dto.BoardFilters{Scope: "shared"}, []uuid.UUID{theirs}},
		{"이름 부분 일치", &dto.BoardFilters{Name: "sprint"}, []uuid.UUID{mine}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boards, err := env.boards.ListBoards(ctx, owner, tt.filters)
			require.NoError(t, err)
			got := make([]uuid.UUID, len(boards))
			for i, b := range boards {
				got[i] = b.BoardID
			}
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err = env.boards.ListBoards(ctx, owner, &dto.BoardFilters{Scope: "public"})
	assert.Equal(t, response.ErrCodeValidation, appErrorCode(err))

	board, err := env.boards.GetBoard(ctx, owner, theirs)
	require.NoError(t, err)
	assert.False(t, board.IsOwner)
	assert.Equal(t, []uuid.UUID{owner}, board.MemberIDs)
}

func TestBoardService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.boards.CreateBoard(context.Background(), uuid.New(), &dto.CreateBoardRequest{Name: "   "})
	assert.Equal(t, response.ErrCodeValidation, appErrorCode(err))
}

// Scenario 4 and 5: access before and after an accepted invitation
func TestBoardService_AccessFollowsInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1@example.com")
	guest := env.user(t, "u2@example.com")
	boardID := env.board(t, owner, "B")

	_, err := env.boards.GetBoard(ctx, guest, boardID)
	assert.Equal(t, response.ErrCodeForbidden, appErrorCode(err))
	_, err = env.cards.ListCards(ctx, guest, boardID)
	assert.Equal(t, response.ErrCodeForbidden, appErrorCode(err))

	inv, err := env.invitations.CreateInvitation(ctx, owner, boardID, &dto.CreateInvitationRequest{MemberID: &guest})
	require.NoError(t, err)

	// pending is not enough
	_, err = env.boards.GetBoard(ctx, guest, boardID)
	assert.Equal(t, response.ErrCodeForbidden, appErrorCode(err))

	_, err = env.invitations.RespondInvitation(ctx, guest, inv.InviteID, &dto.RespondInvitationRequest{Status: "accepted"})
	require.NoError(t, err)

	_, err = env.boards.GetBoard(ctx, guest, boardID)
	assert.NoError(t, err)
	_, err = env.cards.ListCards(ctx, guest, boardID)
	assert.NoError(t, err)

	_, err = env.boards.GetBoard(ctx, guest, uuid.New())
	assert.Equal(t, response.ErrCodeNotFound, appErrorCode(err), "missing board is reported before permission")
}

func TestBoardService_UpdateByMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := realtime.WithOrigin(context.Background(), "conn-7")
	owner := env.user(t, "owner@example.com")
	boardID := env.board(t, owner, "Old")
	member := env.invite(t, owner, boardID, "member@example.com")

	name := "New"
	updated, err := env.boards.UpdateBoard(ctx, member, boardID, &dto.UpdateBoardRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	last := env.publisher.last()
	assert.Equal(t, realtime.TagBoardUpdated, last.Tag)
	assert.Equal(t, "conn-7", last.Origin)
	assert.Equal(t, member.String(), last.ActorID)

	empty := " "
	_, err = env.boards.UpdateBoard(ctx, member, boardID, &dto.UpdateBoardRequest{Name: &empty})
	assert.Equal(t, response.ErrCodeValidation, appErrorCode(err))
}

// Scenario 6: deleting a board removes everything under it
func TestBoardService_DeleteCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	boardID := env.board(t, owner, "Doomed")
	member := env.invite(t, owner, boardID, "member@example.com")
	c1 := env.card(t, owner, boardID, "C1")
	c2 := env.card(t, owner, boardID, "C2")
	env.task(t, owner, boardID, c1, "T1")
	env.task(t, owner, boardID, c2, "T2")

	err := env.boards.DeleteBoard(ctx, member, boardID)
	assert.Equal(t, response.ErrCodeForbidden, appErrorCode(err), "only the owner may delete")

	require.NoError(t, env.boards.DeleteBoard(ctx, owner, boardID))
	assert.Equal(t, realtime.TagBoardDeleted, env.publisher.last().Tag)

	_, err = env.boards.GetBoard(ctx, owner, boardID)
	assert.Equal(t, response.ErrCodeNotFound, appErrorCode(err))

	var cards, tasks, members int64
	env.db.Model(&domain.Card{}).Where("board_id = ?", boardID).Count(&cards)
	env.db.Model(&domain.Task{}).Where("board_id = ?", boardID).Count(&tasks)
	env.db.Model(&domain.BoardMember{}).Where("board_id = ?", boardID).Count(&members)
	assert.Zero(t, cards)
	assert.Zero(t, tasks)
	assert.Zero(t, members)
}

func TestBoardService_ListMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	boardID := env.board(t, owner, "Team")
	member := env.invite(t, owner, boardID, "member@example.com")

	members, err := env.boards.ListMembers(ctx, member, boardID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, owner, members[0].UserID)
	assert.Equal(t, dto.RoleOwner, members[0].Role)
	assert.Nil(t, members[0].JoinedAt)
	assert.Equal(t, member, members[1].UserID)
	assert.Equal(t, dto.RoleMember, members[1].Role)
	assert.Equal(t, "member@example.com", members[1].Email)
	assert.NotNil(t, members[1].JoinedAt)
}

func TestBoardService_PublishFailureDoesNotFailMutation(t *testing.T) {
	ownerID := uuid.New()
	board := &domain.Board{BaseModel: domain.BaseModel{ID: uuid.New()}, OwnerID: ownerID, Name: "B"}
	repo := &MockBoardRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) { return board, nil },
	}
	pub := &recordingPublisher{err: errors.New("redis unavailable")}
	svc := NewBoardService(repo, &MockUserRepository{}, NewAccessService(repo, zap.NewNop()), pub, nil, zap.NewNop())

	desc := "still saved"
	resp, err := svc.UpdateBoard(context.Background(), ownerID, board.ID, &dto.UpdateBoardRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "still saved", resp.Description)
	assert.Equal(t, []string{realtime.TagBoardUpdated}, pub.tags())
}
