package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskboard-api/internal/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// TokenValidator resolves the connection token to a user id
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

// BoardAccess decides whether a user may view a board
type BoardAccess interface {
	AuthorizeBoardAccess(ctx context.Context, userID, boardID uuid.UUID) error
}

// ServerOptions tunes the websocket endpoint
type ServerOptions struct {
	SendBufferSize int
	AllowedOrigins []string
}

// Server is the websocket endpoint through which clients join boards and
// receive board-update frames
type Server struct {
	hub        *Hub
	publisher  Publisher
	tokens     TokenValidator
	access     BoardAccess
	logger     *zap.Logger
	observer   Observer
	sendBuffer int
	upgrader   websocket.Upgrader
}

// NewServer creates the websocket endpoint. observer may be nil.
func NewServer(hub *Hub, publisher Publisher, tokens TokenValidator, access BoardAccess, logger *zap.Logger, observer Observer, opts ServerOptions) *Server {
	if observer == nil {
		observer = nopObserver{}
	}
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = 256
	}
	return &Server{
		hub:        hub,
		publisher:  publisher,
		tokens:     tokens,
		access:     access,
		logger:     logger,
		observer:   observer,
		sendBuffer: opts.SendBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

type client struct {
	id     string
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) ID() string { return c.id }

func (c *client) Deliver(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// HandleWebSocket godoc
// @Summary      Realtime board updates
// @Description  Upgrades to a websocket. Send join-board / leave-board / board-updated frames; receive board-update frames for joined boards.
// @Tags         realtime
// @Param        token query string true "Bearer token"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} response.ErrorResponse
// @Router       /ws [get]
func (s *Server) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Token required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	userID, err := s.tokens.ValidateToken(ctx, token)
	cancel()
	if err != nil {
		s.logger.Warn("Rejected websocket connection", zap.Error(err))
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	cl := &client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, s.sendBuffer),
	}
	s.hub.Register(cl)
	s.observer.ConnectionOpened()
	s.logger.Info("Realtime client connected",
		zap.String("connection_id", cl.id),
		zap.String("user_id", userID.String()),
	)

	cl.Deliver(encode(Message{Type: TypeConnected, ConnectionID: cl.id}))

	go s.writePump(cl)
	s.readPump(cl)
}

func (s *Server) readPump(cl *client) {
	defer func() {
		s.hub.Unregister(cl.id)
		cl.close()
		cl.conn.Close()
		s.observer.ConnectionClosed()
		s.logger.Info("Realtime client disconnected", zap.String("connection_id", cl.id))
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("WebSocket error", zap.String("connection_id", cl.id), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(cl, "", "malformed message")
			continue
		}
		s.handleMessage(cl, msg)
	}
}

func (s *Server) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(cl *client, msg Message) {
	switch msg.Type {
	case TypeJoinBoard:
		s.handleJoin(cl, msg.BoardID)
	case TypeLeaveBoard:
		s.hub.Leave(cl.id, msg.BoardID)
		cl.Deliver(encode(Message{Type: TypeLeft, BoardID: msg.BoardID}))
	case TypeBoardUpdated:
		s.handleNotify(cl, msg)
	default:
		s.sendError(cl, msg.BoardID, "unknown message type")
	}
}

func (s *Server) handleJoin(cl *client, rawBoardID string) {
	boardID, err := uuid.Parse(rawBoardID)
	if err != nil {
		s.sendError(cl, rawBoardID, "invalid board id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.access.AuthorizeBoardAccess(ctx, cl.userID, boardID); err != nil {
		s.sendError(cl, rawBoardID, accessMessage(err))
		return
	}

	if err := s.hub.Join(cl.id, boardID.String()); err != nil {
		s.sendError(cl, rawBoardID, err.Error())
		return
	}
	cl.Deliver(encode(Message{Type: TypeJoined, BoardID: boardID.String()}))
}

func (s *Server) handleNotify(cl *client, msg Message) {
	if !s.hub.Joined(cl.id, msg.BoardID) {
		s.sendError(cl, msg.BoardID, "join the board before notifying it")
		return
	}
	tag := msg.Tag
	if tag == "" {
		tag = TagBoardUpdated
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.publisher.Publish(ctx, Update{
		BoardID: msg.BoardID,
		Tag:     tag,
		CardIDs: msg.CardIDs,
		Origin:  cl.id,
		ActorID: cl.userID.String(),
	})
	if err != nil {
		s.logger.Error("Failed to publish client notification",
			zap.String("board_id", msg.BoardID),
			zap.Error(err),
		)
		s.sendError(cl, msg.BoardID, "failed to publish update")
	}
}

func (s *Server) sendError(cl *client, boardID, message string) {
	cl.Deliver(encode(Message{Type: TypeError, BoardID: boardID, Error: message}))
}

func accessMessage(err error) string {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code + ": " + appErr.Message
	}
	return "access check failed"
}
