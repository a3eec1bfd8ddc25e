package realtime

import (
	"errors"
	"sync"
)

// ErrUnknownConnection is returned by Join for a connection that was never
// registered or already went away
var ErrUnknownConnection = errors.New("realtime: unknown connection")

// Subscriber is one live connection. Deliver must not block; it reports
// false when the frame could not be queued.
type Subscriber interface {
	ID() string
	Deliver(frame []byte) bool
}

// Hub tracks which connections are viewing which board
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Subscriber
	rooms map[string]map[string]struct{} // boardID -> connection ids
	joins map[string]map[string]struct{} // connection id -> boardIDs
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Subscriber),
		rooms: make(map[string]map[string]struct{}),
		joins: make(map[string]map[string]struct{}),
	}
}

// Register makes a connection known to the hub
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sub.ID()] = sub
	if h.joins[sub.ID()] == nil {
		h.joins[sub.ID()] = make(map[string]struct{})
	}
}

// Unregister removes the connection from every board and forgets it
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveAllLocked(connID)
	delete(h.conns, connID)
	delete(h.joins, connID)
}

// Join adds the connection to the board's group. Joining twice is a no-op.
func (h *Hub) Join(connID, boardID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connID]; !ok {
		return ErrUnknownConnection
	}
	room := h.rooms[boardID]
	if room == nil {
		room = make(map[string]struct{})
		h.rooms[boardID] = room
	}
	room[connID] = struct{}{}
	h.joins[connID][boardID] = struct{}{}
	return nil
}

// Leave removes the connection from the board's group
func (h *Hub) Leave(connID, boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, boardID)
}

// LeaveAll removes the connection from every group it joined
func (h *Hub) LeaveAll(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveAllLocked(connID)
}

// Joined reports whether the connection is in the board's group
func (h *Hub) Joined(connID, boardID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[boardID][connID]
	return ok
}

// Members returns the connection ids currently viewing the board
func (h *Hub) Members(boardID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms[boardID]))
	for id := range h.rooms[boardID] {
		ids = append(ids, id)
	}
	return ids
}

// Connections returns the number of registered connections
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues frame on every connection in the board's group except
// origin and returns how many connections accepted it
func (h *Hub) Broadcast(boardID, origin string, frame []byte) int {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.rooms[boardID]))
	for id := range h.rooms[boardID] {
		if id == origin {
			continue
		}
		if sub, ok := h.conns[id]; ok {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if sub.Deliver(frame) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) leaveLocked(connID, boardID string) {
	if room, ok := h.rooms[boardID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(h.rooms, boardID)
		}
	}
	if boards, ok := h.joins[connID]; ok {
		delete(boards, boardID)
	}
}

func (h *Hub) leaveAllLocked(connID string) {
	for boardID := range h.joins[connID] {
		h.leaveLocked(connID, boardID)
	}
}
