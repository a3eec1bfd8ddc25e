package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/response"
)

func TestAccessService_AuthorizeBoardAccess(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	strangerID := uuid.New()
	boardID := uuid.New()

	tests := []struct {
		name          string
		userID        uuid.UUID
		findErr       error
		isMemberErr   error
		expectedCode  string
		expectMemberQ bool
	}{
		{name: "소유자는 허용", userID: ownerID},
		{name: "멤버는 허용", userID: memberID, expectMemberQ: true},
		{name: "비멤버는 Forbidden", userID: strangerID, expectedCode: response.ErrCodeForbidden, expectMemberQ: true},
		{name: "없는 보드는 NotFound", userID: strangerID, findErr: gorm.ErrRecordNotFound, expectedCode: response.ErrCodeNotFound},
		{name: "조회 실패는 Internal", userID: ownerID, findErr: errors.New("connection reset"), expectedCode: response.ErrCodeInternal},
		{name: "멤버 조회 실패는 Internal", userID: memberID, isMemberErr: errors.New("timeout"), expectedCode: response.ErrCodeInternal, expectMemberQ: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memberQueried := false
			repo := &MockBoardRepository{
				FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
					if tt.findErr != nil {
						return nil, tt.findErr
					}
					return &domain.Board{BaseModel: domain.BaseModel{ID: id}, OwnerID: ownerID}, nil
				},
				IsMemberFunc: func(ctx context.Context, bID, uID uuid.UUID) (bool, error) {
					memberQueried = true
					if tt.isMemberErr != nil {
						return false, tt.isMemberErr
					}
					return uID == memberID, nil
				},
			}
			svc := NewAccessService(repo, zap.NewNop())

			err := svc.AuthorizeBoardAccess(context.Background(), tt.userID, boardID)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, appErrorCode(err))
			}
			assert.Equal(t, tt.expectMemberQ, memberQueried)
		})
	}
}

func TestAccessService_LoadBoardReturnsBoard(t *testing.T) {
	ownerID := uuid.New()
	board := &domain.Board{BaseModel: domain.BaseModel{ID: uuid.New()}, OwnerID: ownerID, Name: "Sprint"}
	svc := NewAccessService(&MockBoardRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) { return board, nil },
	}, zap.NewNop())

	got, err := svc.LoadBoard(context.Background(), ownerID, board.ID)
	require.NoError(t, err)
	assert.Same(t, board, got)
}
