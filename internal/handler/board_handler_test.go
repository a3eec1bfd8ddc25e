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
	"taskboard-api/internal/middleware"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/response"
)

func TestBoardHandler_CreateBoard(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()

	tests := []struct {
		name           string
		body           string
		withUser       bool
		mockService    func(*MockBoardService)
		expectedStatus int
	}{
		{
			name:     "성공: Board 생성",
			body:     `{"name":"Sprint 12","description":"two weeks"}`,
			withUser: true,
			mockService: func(m *MockBoardService) {
				m.CreateBoardFunc = func(ctx context.Context, callerID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
					return &dto.BoardResponse{BoardID: boardID, OwnerID: callerID, Name: req.Name, IsOwner: true}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "실패: 이름 누락",
			body:           `{"description":"no name"}`,
			withUser:       true,
			mockService:    func(m *MockBoardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "실패: 잘못된 요청 본문",
			body:           `invalid json`,
			withUser:       true,
			mockService:    func(m *MockBoardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "실패: 인증 정보 없음",
			body:           `{"name":"Sprint 12"}`,
			withUser:       false,
			mockService:    func(m *MockBoardService) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBoardService{}
			tt.mockService(mockService)
			handler := NewBoardHandler(mockService, zap.NewNop())

			var user *uuid.UUID
			if tt.withUser {
				user = &userID
			}
			router := setupTestRouter(user)
			router.POST("/api/boards", handler.CreateBoard)

			w := performRequest(router, http.MethodPost, "/api/boards", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var board dto.BoardResponse
				decodeData(t, w, &board)
				assert.Equal(t, boardID, board.BoardID)
				assert.Equal(t, userID, board.OwnerID)
			}
		})
	}
}

func TestBoardHandler_ListBoards(t *testing.T) {
	userID := uuid.New()
	var captured *dto.BoardFilters
	mockService := &MockBoardService{
		ListBoardsFunc: func(ctx context.Context, callerID uuid.UUID, filters *dto.BoardFilters) ([]*dto.BoardResponse, error) {
			captured = filters
			return []*dto.BoardResponse{{Name: "Sprint 12"}}, nil
		},
	}
	handler := NewBoardHandler(mockService, zap.NewNop())
	router := setupTestRouter(&userID)
	router.GET("/api/boards", handler.ListBoards)

	w := performRequest(router, http.MethodGet, "/api/boards?name=sprint&scope=owned", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "sprint", captured.Name)
	assert.Equal(t, "owned", captured.Scope)

	w = performRequest(router, http.MethodGet, "/api/boards?scope=public", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandler_GetBoard(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()

	tests := []struct {
		name           string
		boardID        string
		err            error
		expectedStatus int
	}{
		{"성공: Board 조회", boardID.String(), nil, http.StatusOK},
		{"실패: 잘못된 UUID", "invalid-uuid", nil, http.StatusBadRequest},
		{"실패: 권한 없음", boardID.String(), response.NewAppError(response.ErrCodeForbidden, "You do not have access to this board", ""), http.StatusForbidden},
		{"실패: Board가 존재하지 않음", boardID.String(), response.NewAppError(response.ErrCodeNotFound, "Board not found", ""), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBoardService{
				GetBoardFunc: func(ctx context.Context, callerID, id uuid.UUID) (*dto.BoardResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &dto.BoardResponse{BoardID: id}, nil
				},
			}
			handler := NewBoardHandler(mockService, zap.NewNop())
			router := setupTestRouter(&userID)
			router.GET("/api/boards/:boardId", handler.GetBoard)

			w := performRequest(router, http.MethodGet, "/api/boards/"+tt.boardID, "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBoardHandler_UpdateBoardCarriesConnectionID(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()
	var origin string
	mockService := &MockBoardService{
		UpdateBoardFunc: func(ctx context.Context, callerID, id uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
			origin = realtime.OriginFrom(ctx)
			return &dto.BoardResponse{BoardID: id, Name: *req.Name}, nil
		},
	}
	handler := NewBoardHandler(mockService, zap.NewNop())
	router := setupTestRouter(&userID)
	router.PUT("/api/boards/:boardId", handler.UpdateBoard)

	w := performRequest(router, http.MethodPut, "/api/boards/"+boardID.String(), `{"name":"Renamed"}`,
		map[string]string{middleware.ConnectionIDHeader: "conn-42"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "conn-42", origin)
}

func TestBoardHandler_DeleteBoard(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()

	t.Run("성공: Board 삭제", func(t *testing.T) {
		handler := NewBoardHandler(&MockBoardService{}, zap.NewNop())
		router := setupTestRouter(&userID)
		router.DELETE("/api/boards/:boardId", handler.DeleteBoard)

		w := performRequest(router, http.MethodDelete, "/api/boards/"+boardID.String(), "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("실패: 소유자가 아님", func(t *testing.T) {
		mockService := &MockBoardService{
			DeleteBoardFunc: func(ctx context.Context, callerID, id uuid.UUID) error {
				return response.NewAppError(response.ErrCodeForbidden, "Only the board owner can delete the board", "")
			},
		}
		handler := NewBoardHandler(mockService, zap.NewNop())
		router := setupTestRouter(&userID)
		router.DELETE("/api/boards/:boardId", handler.DeleteBoard)

		w := performRequest(router, http.MethodDelete, "/api/boards/"+boardID.String(), "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBoardHandler_ListMembers(t *testing.T) {
	userID := uuid.New()
	boardID := uuid.New()
	mockService := &MockBoardService{
		ListMembersFunc: func(ctx context.Context, callerID, id uuid.UUID) ([]*dto.BoardMemberResponse, error) {
			return []*dto.BoardMemberResponse{
				{UserID: callerID, Role: dto.RoleOwner},
			}, nil
		},
	}
	handler := NewBoardHandler(mockService, zap.NewNop())
	router := setupTestRouter(&userID)
	router.GET("/api/boards/:boardId/members", handler.ListMembers)

	w := performRequest(router, http.MethodGet, "/api/boards/"+boardID.String()+"/members", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var members []dto.BoardMemberResponse
	decodeData(t, w, &members)
	require.Len(t, members, 1)
	assert.Equal(t, dto.RoleOwner, members[0].Role)
}
