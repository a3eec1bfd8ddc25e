package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
)

func TestInvitationHandler_CreateInvitation(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()
	memberID := uuid.New()

	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{"성공: memberId로 초대", `{"memberId":"` + memberID.String() + `"}`, nil, http.StatusCreated},
		{"성공: email로 초대", `{"email":"lee@example.com"}`, nil, http.StatusCreated},
		{"실패: 잘못된 email", `{"email":"lee"}`, nil, http.StatusBadRequest},
		{"실패: 소유자가 아님", `{"memberId":"` + memberID.String() + `"}`, response.NewAppError(response.ErrCodeForbidden, "Only the board owner can invite", ""), http.StatusForbidden},
		{"실패: 이미 멤버", `{"memberId":"` + memberID.String() + `"}`, response.NewAppError(response.ErrCodeAlreadyMember, "User is already a member of this board", ""), http.StatusConflict},
		{"실패: 대기 중인 초대", `{"memberId":"` + memberID.String() + `"}`, response.NewAppError(response.ErrCodePendingRequestExists, "An invitation is already pending", ""), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockInvitationService{
				CreateInvitationFunc: func(ctx context.Context, callerID, id uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &dto.InvitationResponse{InviteID: uuid.New(), BoardID: id, BoardOwnerID: callerID, Status: "pending"}, nil
				},
			}
			handler := NewInvitationHandler(mockService, zap.NewNop())
			router := setupTestRouter(&userID)
			router.POST("/api/invitations/:id", handler.CreateInvitation)

			w := performRequest(router, http.MethodPost, "/api/invitations/"+boardID.String(), tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInvitationHandler_RespondInvitation(t *testing.T) {
	userID := uuid.New()
	inviteID := uuid.New()

	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{"성공: 수락", `{"status":"accepted"}`, nil, http.StatusOK},
		{"성공: 거절", `{"status":"declined"}`, nil, http.StatusOK},
		{"실패: pending으로 응답", `{"status":"pending"}`, nil, http.StatusBadRequest},
		{"실패: 본인 초대가 아님", `{"status":"accepted"}`, response.NewAppError(response.ErrCodeForbidden, "This invitation is not addressed to you", ""), http.StatusForbidden},
		{"실패: 이미 거절된 초대", `{"status":"accepted"}`, response.NewAppError(response.ErrCodeInvalidState, "Invitation already declined", ""), http.StatusConflict},
		{"실패: 초대 없음", `{"status":"accepted"}`, response.NewAppError(response.ErrCodeNotFound, "Invitation not found", ""), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockInvitationService{
				RespondInvitationFunc: func(ctx context.Context, callerID, id uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &dto.InvitationResponse{InviteID: id, MemberID: callerID, Status: req.Status}, nil
				},
			}
			handler := NewInvitationHandler(mockService, zap.NewNop())
			router := setupTestRouter(&userID)
			router.POST("/api/invitations/:id/respond", handler.RespondInvitation)

			w := performRequest(router, http.MethodPost, "/api/invitations/"+inviteID.String()+"/respond", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInvitationHandler_ListMyInvitations(t *testing.T) {
	userID := uuid.New()
	var status string
	mockService := &MockInvitationService{
		ListMyInvitationsFunc: func(ctx context.Context, callerID uuid.UUID, filters *dto.InvitationFilters) (*dto.MyInvitationsResponse, error) {
			status = filters.Status
			return &dto.MyInvitationsResponse{
				Sent:     []*dto.InvitationResponse{},
				Received: []*dto.InvitationResponse{{MemberID: callerID, Status: "pending"}},
			}, nil
		},
	}
	handler := NewInvitationHandler(mockService, zap.NewNop())
	router := setupTestRouter(&userID)
	router.GET("/api/invitations", handler.ListMyInvitations)

	w := performRequest(router, http.MethodGet, "/api/invitations?status=pending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", status)

	var result dto.MyInvitationsResponse
	decodeData(t, w, &result)
	assert.Empty(t, result.Sent)
	require.Len(t, result.Received, 1)

	w = performRequest(router, http.MethodGet, "/api/invitations?status=expired", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
