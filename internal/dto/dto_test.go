package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

func TestCreateBoardRequest_Validation(t *testing.T) {
	tests := []struct {
		name        string
		request     CreateBoardRequest
		expectError bool
	}{
		{"정상 요청", CreateBoardRequest{Name: "Sprint 12"}, false},
		{"이름 누락", CreateBoardRequest{Description: "no name"}, true},
		{"이름 255자 초과", CreateBoardRequest{Name: strings.Repeat("a", 256)}, true},
		{"설명 2000자 초과", CreateBoardRequest{Name: "ok", Description: strings.Repeat("d", 2001)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.request)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoardFilters_Scope(t *testing.T) {
	for _, scope := range []string{"", "owned", "shared", "all"} {
		assert.NoError(t, validate(&BoardFilters{Scope: scope}), scope)
	}
	assert.Error(t, validate(&BoardFilters{Scope: "public"}))
}

func TestTaskRequests_Status(t *testing.T) {
	assert.NoError(t, validate(&CreateTaskRequest{Title: "t"}))
	assert.NoError(t, validate(&CreateTaskRequest{Title: "t", Status: "complete"}))
	assert.Error(t, validate(&CreateTaskRequest{Title: "t", Status: "done"}))

	bad := "archived"
	assert.Error(t, validate(&UpdateTaskRequest{Status: &bad}))
	assert.NoError(t, validate(&UpdateTaskRequest{}))
}

func TestMoveTaskRequest_AcceptsSentinelTarget(t *testing.T) {
	body := `{"sourceId":"` + uuid.NewString() + `","targetId":"-1","destinationCardId":"` + uuid.NewString() + `"}`

	var req MoveTaskRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "-1", req.TargetID)
	assert.NoError(t, validate(&req))

	req.TargetID = ""
	assert.Error(t, validate(&req), "targetId is required")
}

func TestReorderRequest_RequiresBothIDs(t *testing.T) {
	assert.Error(t, validate(&ReorderRequest{SourceID: "a"}))
	assert.Error(t, validate(&ReorderRequest{TargetID: "b"}))
	assert.NoError(t, validate(&ReorderRequest{SourceID: "a", TargetID: "b"}))
}

func TestInvitationRequests(t *testing.T) {
	assert.NoError(t, validate(&CreateInvitationRequest{Email: "lee@example.com"}))
	assert.Error(t, validate(&CreateInvitationRequest{Email: "not-an-email"}))

	assert.NoError(t, validate(&RespondInvitationRequest{Status: "accepted"}))
	assert.NoError(t, validate(&RespondInvitationRequest{Status: "declined"}))
	assert.Error(t, validate(&RespondInvitationRequest{Status: "pending"}))
	assert.Error(t, validate(&RespondInvitationRequest{}))
}

func TestRegisterRequest_Validation(t *testing.T) {
	ok := RegisterRequest{Email: "kim@example.com", Name: "Kim", Password: "12345678"}
	assert.NoError(t, validate(&ok))

	short := ok
	short.Password = "1234"
	assert.Error(t, validate(&short))

	noEmail := ok
	noEmail.Email = "kim"
	assert.Error(t, validate(&noEmail))
}

func TestBoardResponse_JSONFieldNames(t *testing.T) {
	resp := BoardResponse{BoardID: uuid.New(), Name: "b", MemberIDs: []uuid.UUID{}}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"boardId", "ownerId", "cardsCount", "memberIds", "isOwner", "createdAt"} {
		assert.Contains(t, raw, key)
	}
}
