package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/middleware"
)

type MockAuthService struct {
	RegisterFunc  func(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	LoginFunc     func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	MeFunc        func(ctx context.Context, callerID uuid.UUID) (*dto.UserResponse, error)
	ListUsersFunc func(ctx context.Context, filters *dto.UserFilters) ([]*dto.UserResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return &dto.TokenResponse{}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &dto.TokenResponse{}, nil
}

func (m *MockAuthService) Me(ctx context.Context, callerID uuid.UUID) (*dto.UserResponse, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, callerID)
	}
	return &dto.UserResponse{UserID: callerID}, nil
}

func (m *MockAuthService) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]*dto.UserResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, filters)
	}
	return []*dto.UserResponse{}, nil
}

type MockBoardService struct {
	CreateBoardFunc func(ctx context.Context, callerID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	ListBoardsFunc  func(ctx context.Context, callerID uuid.UUID, filters *dto.BoardFilters) ([]*dto.BoardResponse, error)
	GetBoardFunc    func(ctx context.Context, callerID, boardID uuid.UUID) (*dto.BoardResponse, error)
	UpdateBoardFunc func(ctx context.Context, callerID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error)
	DeleteBoardFunc func(ctx context.Context, callerID, boardID uuid.UUID) error
	ListMembersFunc func(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.BoardMemberResponse, error)
}

func (m *MockBoardService) CreateBoard(ctx context.Context, callerID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(ctx, callerID, req)
	}
	return &dto.BoardResponse{}, nil
}

func (m *MockBoardService) ListBoards(ctx context.Context, callerID uuid.UUID, filters *dto.BoardFilters) ([]*dto.BoardResponse, error) {
	if m.ListBoardsFunc != nil {
		return m.ListBoardsFunc(ctx, callerID, filters)
	}
	return []*dto.BoardResponse{}, nil
}

func (m *MockBoardService) GetBoard(ctx context.Context, callerID, boardID uuid.UUID) (*dto.BoardResponse, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, callerID, boardID)
	}
	return &dto.BoardResponse{BoardID: boardID}, nil
}

func (m *MockBoardService) UpdateBoard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
	if m.UpdateBoardFunc != nil {
		return m.UpdateBoardFunc(ctx, callerID, boardID, req)
	}
	return &dto.BoardResponse{BoardID: boardID}, nil
}

func (m *MockBoardService) DeleteBoard(ctx context.Context, callerID, boardID uuid.UUID) error {
	if m.DeleteBoardFunc != nil {
		return m.DeleteBoardFunc(ctx, callerID, boardID)
	}
	return nil
}

func (m *MockBoardService) ListMembers(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.BoardMemberResponse, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, callerID, boardID)
	}
	return []*dto.BoardMemberResponse{}, nil
}

type MockCardService struct {
	CreateCardFunc   func(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	ListCardsFunc    func(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.CardResponse, error)
	GetCardFunc      func(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*dto.CardResponse, error)
	UpdateCardFunc   func(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.UpdateCardRequest) (*dto.CardResponse, error)
	DeleteCardFunc   func(ctx context.Context, callerID, boardID, cardID uuid.UUID) error
	ReorderCardsFunc func(ctx context.Context, callerID, boardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderCardsResponse, error)
}

func (m *MockCardService) CreateCard(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	if m.CreateCardFunc != nil {
		return m.CreateCardFunc(ctx, callerID, boardID, req)
	}
	return &dto.CardResponse{BoardID: boardID}, nil
}

func (m *MockCardService) ListCards(ctx context.Context, callerID, boardID uuid.UUID) ([]*dto.CardResponse, error) {
	if m.ListCardsFunc != nil {
		return m.ListCardsFunc(ctx, callerID, boardID)
	}
	return []*dto.CardResponse{}, nil
}

func (m *MockCardService) GetCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*dto.CardResponse, error) {
	if m.GetCardFunc != nil {
		return m.GetCardFunc(ctx, callerID, boardID, cardID)
	}
	return &dto.CardResponse{CardID: cardID, BoardID: boardID}, nil
}

func (m *MockCardService) UpdateCard(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.UpdateCardRequest) (*dto.CardResponse, error) {
	if m.UpdateCardFunc != nil {
		return m.UpdateCardFunc(ctx, callerID, boardID, cardID, req)
	}
	return &dto.CardResponse{CardID: cardID, BoardID: boardID}, nil
}

func (m *MockCardService) DeleteCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) error {
	if m.DeleteCardFunc != nil {
		return m.DeleteCardFunc(ctx, callerID, boardID, cardID)
	}
	return nil
}

func (m *MockCardService) ReorderCards(ctx context.Context, callerID, boardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderCardsResponse, error) {
	if m.ReorderCardsFunc != nil {
		return m.ReorderCardsFunc(ctx, callerID, boardID, req)
	}
	return &dto.ReorderCardsResponse{Cards: []*dto.CardResponse{}}, nil
}

type MockTaskService struct {
	CreateTaskFunc   func(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	ListTasksFunc    func(ctx context.Context, callerID, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error)
	GetTaskFunc      func(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) (*dto.TaskResponse, error)
	UpdateTaskFunc   func(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTaskFunc   func(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) error
	AssignTaskFunc   func(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error)
	UnassignTaskFunc func(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error)
	ReorderTasksFunc func(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderTasksResponse, error)
	MoveTaskFunc     func(ctx context.Context, callerID, boardID uuid.UUID, req *dto.MoveTaskRequest) (*dto.MoveTaskResponse, error)
}

func (m *MockTaskService) CreateTask(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, callerID, boardID, cardID, req)
	}
	return &dto.TaskResponse{CardID: cardID, BoardID: boardID}, nil
}

func (m *MockTaskService) ListTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error) {
	if m.ListTasksFunc != nil {
		return m.ListTasksFunc(ctx, callerID, boardID, cardID)
	}
	return []*dto.TaskResponse{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) (*dto.TaskResponse, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, callerID, boardID, cardID, taskID)
	}
	return &dto.TaskResponse{TaskID: taskID, CardID: cardID, BoardID: boardID}, nil
}

func (m *MockTaskService) UpdateTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, callerID, boardID, cardID, taskID, req)
	}
	return &dto.TaskResponse{TaskID: taskID}, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) error {
	if m.DeleteTaskFunc != nil {
		return m.DeleteTaskFunc(ctx, callerID, boardID, cardID, taskID)
	}
	return nil
}

func (m *MockTaskService) AssignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error) {
	if m.AssignTaskFunc != nil {
		return m.AssignTaskFunc(ctx, callerID, boardID, cardID, taskID, memberID)
	}
	return &dto.TaskResponse{TaskID: taskID, AssignedUserIDs: []uuid.UUID{memberID}}, nil
}

func (m *MockTaskService) UnassignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error) {
	if m.UnassignTaskFunc != nil {
		return m.UnassignTaskFunc(ctx, callerID, boardID, cardID, taskID, memberID)
	}
	return &dto.TaskResponse{TaskID: taskID, AssignedUserIDs: []uuid.UUID{}}, nil
}

func (m *MockTaskService) ReorderTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderTasksResponse, error) {
	if m.ReorderTasksFunc != nil {
		return m.ReorderTasksFunc(ctx, callerID, boardID, cardID, req)
	}
	return &dto.ReorderTasksResponse{Tasks: []*dto.TaskResponse{}}, nil
}

func (m *MockTaskService) MoveTask(ctx context.Context, callerID, boardID uuid.UUID, req *dto.MoveTaskRequest) (*dto.MoveTaskResponse, error) {
	if m.MoveTaskFunc != nil {
		return m.MoveTaskFunc(ctx, callerID, boardID, req)
	}
	return &dto.MoveTaskResponse{}, nil
}

type MockInvitationService struct {
	CreateInvitationFunc  func(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error)
	RespondInvitationFunc func(ctx context.Context, callerID, inviteID uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error)
	ListMyInvitationsFunc func(ctx context.Context, callerID uuid.UUID, filters *dto.InvitationFilters) (*dto.MyInvitationsResponse, error)
}

func (m *MockInvitationService) CreateInvitation(ctx context.Context, callerID, boardID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
	if m.CreateInvitationFunc != nil {
		return m.CreateInvitationFunc(ctx, callerID, boardID, req)
	}
	return &dto.InvitationResponse{BoardID: boardID, BoardOwnerID: callerID}, nil
}

func (m *MockInvitationService) RespondInvitation(ctx context.Context, callerID, inviteID uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error) {
	if m.RespondInvitationFunc != nil {
		return m.RespondInvitationFunc(ctx, callerID, inviteID, req)
	}
	return &dto.InvitationResponse{InviteID: inviteID, Status: req.Status}, nil
}

func (m *MockInvitationService) ListMyInvitations(ctx context.Context, callerID uuid.UUID, filters *dto.InvitationFilters) (*dto.MyInvitationsResponse, error) {
	if m.ListMyInvitationsFunc != nil {
		return m.ListMyInvitationsFunc(ctx, callerID, filters)
	}
	return &dto.MyInvitationsResponse{Sent: []*dto.InvitationResponse{}, Received: []*dto.InvitationResponse{}}, nil
}

// setupTestRouter returns a gin engine in test mode. When userID is not nil
// it is stored in the context the way the auth middleware does.
func setupTestRouter(userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ConnectionID())
	if userID != nil {
		id := *userID
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, id)
			c.Next()
		})
	}
	return router
}

func performRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the "data" field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
