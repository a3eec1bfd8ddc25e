// Package realtime fans board change notifications out to the websocket
// connections viewing that board. Notifications carry a change tag only;
// receivers re-read the affected lists through the REST API.
package realtime

import (
	"context"
	"encoding/json"
	"time"
)

// Frame types exchanged over the websocket
const (
	// client -> server
	TypeJoinBoard    = "join-board"
	TypeLeaveBoard   = "leave-board"
	TypeBoardUpdated = "board-updated"

	// server -> client
	TypeBoardUpdate = "board-update"
	TypeConnected   = "connected"
	TypeJoined      = "joined"
	TypeLeft        = "left"
	TypeError       = "error"
)

// Change tags published by the REST mutations
const (
	TagBoardUpdated   = "board-updated"
	TagBoardDeleted   = "board-deleted"
	TagMembersChanged = "members-changed"
	TagCardCreated    = "card-created"
	TagCardUpdated    = "card-updated"
	TagCardDeleted    = "card-deleted"
	TagCardsReordered = "cards-reordered"
	TagTaskCreated    = "task-created"
	TagTaskUpdated    = "task-updated"
	TagTaskDeleted    = "task-deleted"
	TagTaskAssigned   = "task-assigned"
	TagTasksReordered = "tasks-reordered"
	TagTaskMoved      = "task-moved"
)

// Update describes one change to a board. CardIDs lists the cards whose task
// lists changed; it is empty for board or card-list level changes.
type Update struct {
	BoardID string    `json:"boardId"`
	Tag     string    `json:"tag"`
	CardIDs []string  `json:"cardIds,omitempty"`
	Origin  string    `json:"origin,omitempty"`
	ActorID string    `json:"actorId,omitempty"`
	At      time.Time `json:"at"`
}

// Message is the websocket frame. CardIDs scopes a client board-updated
// notification the same way Update.CardIDs does.
type Message struct {
	Type         string   `json:"type"`
	BoardID      string   `json:"boardId,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	CardIDs      []string `json:"cardIds,omitempty"`
	ConnectionID string   `json:"connectionId,omitempty"`
	Update       *Update  `json:"update,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func encode(msg Message) []byte {
	// Message has no field json can fail on
	data, _ := json.Marshal(msg)
	return data
}

func updateFrame(u Update) []byte {
	return encode(Message{Type: TypeBoardUpdate, BoardID: u.BoardID, Tag: u.Tag, Update: &u})
}

type originKey struct{}

// WithOrigin records the websocket connection that caused a REST mutation so
// the resulting update skips it
func WithOrigin(ctx context.Context, connectionID string) context.Context {
	if connectionID == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, connectionID)
}

// OriginFrom returns the connection id stored by WithOrigin, or ""
func OriginFrom(ctx context.Context) string {
	id, _ := ctx.Value(originKey{}).(string)
	return id
}
