package projection

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskboard-api/internal/client"
	"taskboard-api/internal/realtime"
)

const handshakeTimeout = 10 * time.Second

// Watcher keeps a Mirror in step with the server by subscribing to the
// board's realtime channel
type Watcher struct {
	wsURL  string
	api    client.BoardAPIClient
	mirror *Mirror
	logger *zap.Logger
	dialer *websocket.Dialer
}

// NewWatcher creates a watcher for the websocket endpoint at wsURL
// (e.g. ws://localhost:8000/api/ws)
func NewWatcher(wsURL string, api client.BoardAPIClient, mirror *Mirror, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		wsURL:  wsURL,
		api:    api,
		mirror: mirror,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// Run connects, joins the mirror's board and applies updates until ctx is
// done, the connection drops, or the board is deleted
func (w *Watcher) Run(ctx context.Context) error {
	u, err := url.Parse(w.wsURL)
	if err != nil {
		return fmt.Errorf("invalid websocket url: %w", err)
	}
	q := u.Query()
	q.Set("token", w.api.Token())
	u.RawQuery = q.Encode()

	conn, _, err := w.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect realtime channel: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	boardID := w.mirror.BoardID().String()
	joined := false
	for {
		var msg realtime.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("realtime channel closed: %w", err)
		}

		switch msg.Type {
		case realtime.TypeConnected:
			w.api.SetConnectionID(msg.ConnectionID)
			if err := conn.WriteJSON(realtime.Message{Type: realtime.TypeJoinBoard, BoardID: boardID}); err != nil {
				return fmt.Errorf("failed to join board: %w", err)
			}

		case realtime.TypeJoined:
			joined = true
			w.logger.Info("Watching board", zap.String("board_id", boardID))
			// catch up on anything missed between the initial load and the join
			if err := w.mirror.Refresh(ctx); err != nil {
				w.logger.Warn("Failed to refresh mirror after join", zap.Error(err))
			}

		case realtime.TypeBoardUpdate:
			if msg.Update == nil {
				continue
			}
			err := w.mirror.HandleUpdate(ctx, *msg.Update)
			if errors.Is(err, ErrBoardDeleted) {
				return err
			}
			if err != nil {
				w.logger.Warn("Failed to apply board update",
					zap.String("tag", msg.Update.Tag),
					zap.Error(err),
				)
			}

		case realtime.TypeError:
			if !joined && msg.BoardID == boardID {
				return fmt.Errorf("join rejected: %s", msg.Error)
			}
			w.logger.Warn("Realtime error frame", zap.String("error", msg.Error))
		}
	}
}
