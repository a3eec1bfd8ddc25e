package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard-api/internal/response"
)

type mockTokens struct {
	users map[string]uuid.UUID
}

func (m *mockTokens) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	if id, ok := m.users[token]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

type mockAccess struct {
	AuthorizeBoardAccessFunc func(ctx context.Context, userID, boardID uuid.UUID) error
}

func (m *mockAccess) AuthorizeBoardAccess(ctx context.Context, userID, boardID uuid.UUID) error {
	return m.AuthorizeBoardAccessFunc(ctx, userID, boardID)
}

type wsEnv struct {
	srv      *httptest.Server
	hub      *Hub
	observer *countingObserver
	alice    uuid.UUID
	bob      uuid.UUID
	board    uuid.UUID
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &wsEnv{hub: NewHub(), observer: &countingObserver{}, alice: uuid.New(), bob: uuid.New(), board: uuid.New()}
	tokens := &mockTokens{users: map[string]uuid.UUID{"alice": env.alice, "bob": env.bob}}
	access := &mockAccess{AuthorizeBoardAccessFunc: func(_ context.Context, userID, boardID uuid.UUID) error {
		if boardID != env.board {
			return response.NewAppError(response.ErrCodeNotFound, "Board not found", "")
		}
		if userID == env.alice || userID == env.bob {
			return nil
		}
		return response.NewAppError(response.ErrCodeForbidden, "Not a board member", "")
	}}

	server := NewServer(env.hub, NewLocalBroker(env.hub, nil), tokens, access, zap.NewNop(), env.observer, ServerOptions{})
	router := gin.New()
	router.GET("/ws", server.HandleWebSocket)
	env.srv = httptest.NewServer(router)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *wsEnv) dial(t *testing.T, token string) (*websocket.Conn, string) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	hello := readMessage(t, conn)
	require.Equal(t, TypeConnected, hello.Type)
	require.NotEmpty(t, hello.ConnectionID)
	return conn, hello.ConnectionID
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_RejectsBadToken(t *testing.T) {
	env := newWSEnv(t)

	for _, token := range []string{"", "mallory"} {
		url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws?token=" + token
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Zero(t, env.hub.Connections())
}

func TestServer_JoinAndFanOut(t *testing.T) {
	env := newWSEnv(t)
	aliceConn, aliceID := env.dial(t, "alice")
	bobConn, _ := env.dial(t, "bob")

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		require.NoError(t, conn.WriteJSON(Message{Type: TypeJoinBoard, BoardID: env.board.String()}))
		joined := readMessage(t, conn)
		require.Equal(t, TypeJoined, joined.Type)
	}

	require.NoError(t, aliceConn.WriteJSON(Message{Type: TypeBoardUpdated, BoardID: env.board.String(), Tag: TagCardsReordered}))

	got := readMessage(t, bobConn)
	assert.Equal(t, TypeBoardUpdate, got.Type)
	assert.Equal(t, TagCardsReordered, got.Tag)
	require.NotNil(t, got.Update)
	assert.Equal(t, aliceID, got.Update.Origin)
	assert.Equal(t, env.alice.String(), got.Update.ActorID)

	// card scope travels with the notification
	cardID := uuid.NewString()
	require.NoError(t, aliceConn.WriteJSON(Message{Type: TypeBoardUpdated, BoardID: env.board.String(), Tag: TagTasksReordered, CardIDs: []string{cardID}}))
	got = readMessage(t, bobConn)
	require.NotNil(t, got.Update)
	assert.Equal(t, TagTasksReordered, got.Update.Tag)
	assert.Equal(t, []string{cardID}, got.Update.CardIDs)

	// the origin receives nothing
	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := aliceConn.ReadMessage()
	assert.Error(t, err)
}

func TestServer_JoinErrors(t *testing.T) {
	env := newWSEnv(t)
	conn, _ := env.dial(t, "alice")

	tests := []struct {
		name    string
		msg     Message
		wantErr string
	}{
		{"invalid board id", Message{Type: TypeJoinBoard, BoardID: "nope"}, "invalid board id"},
		{"missing board", Message{Type: TypeJoinBoard, BoardID: uuid.NewString()}, response.ErrCodeNotFound},
		{"notify without join", Message{Type: TypeBoardUpdated, BoardID: env.board.String()}, "join the board"},
		{"unknown type", Message{Type: "dance"}, "unknown message type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(tt.msg))
			got := readMessage(t, conn)
			assert.Equal(t, TypeError, got.Type)
			assert.Contains(t, got.Error, tt.wantErr)
		})
	}
}

func TestServer_DisconnectLeavesRooms(t *testing.T) {
	env := newWSEnv(t)
	conn, id := env.dial(t, "alice")

	require.NoError(t, conn.WriteJSON(Message{Type: TypeJoinBoard, BoardID: env.board.String()}))
	readMessage(t, conn)
	assert.Equal(t, []string{id}, env.hub.Members(env.board.String()))

	conn.Close()
	assert.Eventually(t, func() bool {
		return env.hub.Connections() == 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Empty(t, env.hub.Members(env.board.String()))

	assert.Eventually(t, func() bool {
		env.observer.mu.Lock()
		defer env.observer.mu.Unlock()
		return env.observer.opened == 1 && env.observer.closed == 1
	}, 2*time.Second, 20*time.Millisecond)
}
