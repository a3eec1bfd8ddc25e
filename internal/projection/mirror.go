// Package projection keeps a client-side mirror of one board's cards and
// tasks. Drag gestures are applied to the mirror with the same ordering
// algorithm the server uses before the request is sent, so the local view
// changes immediately. A failed request or a realtime update for the same
// scope throws the affected part of the mirror away and re-reads it.
package projection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/client"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/ordering"
	"taskboard-api/internal/realtime"
)

// ErrBoardDeleted is returned by HandleUpdate once the board is gone
var ErrBoardDeleted = errors.New("projection: board was deleted")

// ErrUnknownTask is returned when a move names a task the mirror does not hold
var ErrUnknownTask = errors.New("projection: task not in mirror")

// Mirror is the local copy of one board
type Mirror struct {
	api     client.BoardAPIClient
	boardID uuid.UUID
	logger  *zap.Logger

	mu       sync.RWMutex
	cards    []dto.CardResponse
	tasks    map[uuid.UUID][]dto.TaskResponse
	onChange func()
}

// NewMirror creates an empty mirror; call Load to fill it
func NewMirror(api client.BoardAPIClient, boardID uuid.UUID, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		api:     api,
		boardID: boardID,
		logger:  logger,
		tasks:   make(map[uuid.UUID][]dto.TaskResponse),
	}
}

// BoardID returns the mirrored board
func (m *Mirror) BoardID() uuid.UUID { return m.boardID }

// OnChange registers fn to run after every change to the mirror
func (m *Mirror) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Load replaces the whole mirror with the server's current state
func (m *Mirror) Load(ctx context.Context) error {
	cards, err := m.api.ListCards(ctx, m.boardID)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}

	tasks := make(map[uuid.UUID][]dto.TaskResponse, len(cards))
	for _, card := range cards {
		list, err := m.api.ListTasks(ctx, m.boardID, card.CardID)
		if err != nil {
			return fmt.Errorf("failed to load tasks of card %s: %w", card.CardID, err)
		}
		tasks[card.CardID] = taskValues(list)
	}

	m.mu.Lock()
	m.cards = cardValues(cards)
	m.tasks = tasks
	m.mu.Unlock()

	m.logger.Debug("Mirror loaded",
		zap.String("board_id", m.boardID.String()),
		zap.Int("cards", len(cards)),
	)
	m.changed()
	return nil
}

// Refresh is Load under the name used by the update path
func (m *Mirror) Refresh(ctx context.Context) error {
	return m.Load(ctx)
}

// Cards returns a copy of the card list in board order
func (m *Mirror) Cards() []dto.CardResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dto.CardResponse, len(m.cards))
	copy(out, m.cards)
	return out
}

// Tasks returns a copy of one card's task list in card order
func (m *Mirror) Tasks(cardID uuid.UUID) []dto.TaskResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.tasks[cardID]
	out := make([]dto.TaskResponse, len(list))
	copy(out, list)
	return out
}

// ReorderCards moves source to target's position locally, then asks the
// server to do the same. On failure the card list is re-read.
func (m *Mirror) ReorderCards(ctx context.Context, sourceID, targetID uuid.UUID) error {
	m.mu.Lock()
	ids := make([]uuid.UUID, len(m.cards))
	for i, c := range m.cards {
		ids[i] = c.CardID
	}
	next, changed, err := ordering.Move(ids, sourceID, targetID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if changed {
		m.cards = arrangeCards(m.cards, next)
	}
	m.mu.Unlock()

	if !changed {
		return nil
	}
	m.changed()

	_, err = m.api.ReorderCards(ctx, m.boardID, dto.ReorderRequest{
		SourceID: sourceID.String(),
		TargetID: targetID.String(),
	})
	if err != nil {
		m.rollback(ctx, "reorder cards", func(ctx context.Context) error { return m.refreshCards(ctx) })
		return err
	}
	return nil
}

// ReorderTasks moves source to target's position within one card
func (m *Mirror) ReorderTasks(ctx context.Context, cardID, sourceID, targetID uuid.UUID) error {
	m.mu.Lock()
	list := m.tasks[cardID]
	next, changed, err := ordering.Move(taskIDs(list), sourceID, targetID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if changed {
		m.tasks[cardID] = arrangeTasks(list, next, cardID)
	}
	m.mu.Unlock()

	if !changed {
		return nil
	}
	m.changed()

	_, err = m.api.ReorderTasks(ctx, m.boardID, cardID, dto.ReorderRequest{
		SourceID: sourceID.String(),
		TargetID: targetID.String(),
	})
	if err != nil {
		m.rollback(ctx, "reorder tasks", func(ctx context.Context) error {
			return m.refreshTasks(ctx, []uuid.UUID{cardID})
		})
		return err
	}
	return nil
}

// MoveTask moves a task into destCardID. A nil target puts it first;
// otherwise it takes the target's position. Moving within the task's own
// card behaves as a reorder.
func (m *Mirror) MoveTask(ctx context.Context, taskID, destCardID uuid.UUID, target *uuid.UUID) error {
	m.mu.Lock()
	srcCardID, ok := m.cardOf(taskID)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, ErrUnknownTask)
	}
	if _, ok := m.tasks[destCardID]; !ok && m.cardIndex(destCardID) < 0 {
		m.mu.Unlock()
		return fmt.Errorf("card %s: %w", destCardID, ordering.ErrNotFound)
	}

	changed := true
	if srcCardID == destCardID {
		list := m.tasks[srcCardID]
		ids := taskIDs(list)
		anchor := ids[0]
		if target != nil {
			anchor = *target
		}
		next, moved, err := ordering.Move(ids, taskID, anchor)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		changed = moved
		if moved {
			m.tasks[srcCardID] = arrangeTasks(list, next, srcCardID)
		}
	} else {
		src, dst := m.tasks[srcCardID], m.tasks[destCardID]
		pool := make([]dto.TaskResponse, 0, len(src)+len(dst))
		pool = append(pool, src...)
		pool = append(pool, dst...)

		newSrc, newDst, err := ordering.Transfer(taskIDs(src), taskIDs(dst), taskID, target)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.tasks[srcCardID] = arrangeTasks(pool, newSrc, srcCardID)
		m.tasks[destCardID] = arrangeTasks(pool, newDst, destCardID)
		m.setTasksCount(srcCardID, len(newSrc))
		m.setTasksCount(destCardID, len(newDst))
	}
	m.mu.Unlock()

	if !changed {
		return nil
	}
	m.changed()

	targetID := ordering.EmptyTarget
	if target != nil {
		targetID = target.String()
	}
	_, err := m.api.MoveTask(ctx, m.boardID, dto.MoveTaskRequest{
		SourceID:          taskID.String(),
		TargetID:          targetID,
		DestinationCardID: destCardID,
	})
	if err != nil {
		m.rollback(ctx, "move task", func(ctx context.Context) error {
			if err := m.refreshCards(ctx); err != nil {
				return err
			}
			return m.refreshTasks(ctx, []uuid.UUID{srcCardID, destCardID})
		})
		return err
	}
	return nil
}

// HandleUpdate reacts to a realtime update by re-reading the scope it names.
// An update with no scope, such as a board-updated notification from another
// client, reloads the whole board. Updates for other boards are ignored.
func (m *Mirror) HandleUpdate(ctx context.Context, u realtime.Update) error {
	if u.BoardID != m.boardID.String() {
		return nil
	}

	switch u.Tag {
	case realtime.TagBoardDeleted:
		m.mu.Lock()
		m.cards = nil
		m.tasks = make(map[uuid.UUID][]dto.TaskResponse)
		m.mu.Unlock()
		m.changed()
		return ErrBoardDeleted

	case realtime.TagMembersChanged:
		return nil

	case realtime.TagCardsReordered, realtime.TagCardUpdated:
		return m.refreshCards(ctx)

	case realtime.TagCardCreated, realtime.TagCardDeleted:
		if err := m.refreshCards(ctx); err != nil {
			return err
		}
		return m.refreshTasks(ctx, m.unloadedCards())

	case realtime.TagTasksReordered, realtime.TagTaskUpdated, realtime.TagTaskAssigned:
		if len(u.CardIDs) == 0 {
			return m.Load(ctx)
		}
		return m.refreshTasks(ctx, parseIDs(u.CardIDs))

	case realtime.TagTaskCreated, realtime.TagTaskDeleted, realtime.TagTaskMoved:
		if len(u.CardIDs) == 0 {
			return m.Load(ctx)
		}
		if err := m.refreshCards(ctx); err != nil {
			return err
		}
		return m.refreshTasks(ctx, parseIDs(u.CardIDs))

	default:
		return m.Load(ctx)
	}
}

func (m *Mirror) refreshCards(ctx context.Context) error {
	cards, err := m.api.ListCards(ctx, m.boardID)
	if err != nil {
		return fmt.Errorf("failed to reload cards: %w", err)
	}

	m.mu.Lock()
	m.cards = cardValues(cards)
	keep := make(map[uuid.UUID]struct{}, len(cards))
	for _, c := range cards {
		keep[c.CardID] = struct{}{}
	}
	for id := range m.tasks {
		if _, ok := keep[id]; !ok {
			delete(m.tasks, id)
		}
	}
	m.mu.Unlock()

	m.changed()
	return nil
}

func (m *Mirror) refreshTasks(ctx context.Context, cardIDs []uuid.UUID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	fetched := make(map[uuid.UUID][]dto.TaskResponse, len(cardIDs))
	for _, id := range cardIDs {
		if _, done := fetched[id]; done {
			continue
		}
		list, err := m.api.ListTasks(ctx, m.boardID, id)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
				// card vanished in the meantime
				fetched[id] = nil
				continue
			}
			return fmt.Errorf("failed to reload tasks of card %s: %w", id, err)
		}
		fetched[id] = taskValues(list)
	}

	m.mu.Lock()
	for id, list := range fetched {
		if list == nil && m.cardIndex(id) < 0 {
			delete(m.tasks, id)
			continue
		}
		m.tasks[id] = list
	}
	m.mu.Unlock()

	m.changed()
	return nil
}

func (m *Mirror) rollback(ctx context.Context, op string, reload func(ctx context.Context) error) {
	m.logger.Warn("Server rejected optimistic change, reloading",
		zap.String("board_id", m.boardID.String()),
		zap.String("operation", op),
	)
	if err := reload(ctx); err != nil {
		m.logger.Error("Failed to reload mirror after rejected change",
			zap.String("board_id", m.boardID.String()),
			zap.Error(err),
		)
	}
}

func (m *Mirror) changed() {
	m.mu.RLock()
	fn := m.onChange
	m.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// unloadedCards lists cards present in the card list but without a task list
func (m *Mirror) unloadedCards() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uuid.UUID
	for _, c := range m.cards {
		if _, ok := m.tasks[c.CardID]; !ok {
			ids = append(ids, c.CardID)
		}
	}
	return ids
}

// callers hold m.mu

func (m *Mirror) cardOf(taskID uuid.UUID) (uuid.UUID, bool) {
	for cardID, list := range m.tasks {
		for _, t := range list {
			if t.TaskID == taskID {
				return cardID, true
			}
		}
	}
	return uuid.Nil, false
}

func (m *Mirror) cardIndex(cardID uuid.UUID) int {
	for i, c := range m.cards {
		if c.CardID == cardID {
			return i
		}
	}
	return -1
}

func (m *Mirror) setTasksCount(cardID uuid.UUID, n int) {
	if i := m.cardIndex(cardID); i >= 0 {
		m.cards[i].TasksCount = n
	}
}

func arrangeCards(cards []dto.CardResponse, order []uuid.UUID) []dto.CardResponse {
	byID := make(map[uuid.UUID]dto.CardResponse, len(cards))
	for _, c := range cards {
		byID[c.CardID] = c
	}
	out := make([]dto.CardResponse, len(order))
	for i, id := range order {
		c := byID[id]
		c.BoardIndex = i
		out[i] = c
	}
	return out
}

func arrangeTasks(pool []dto.TaskResponse, order []uuid.UUID, cardID uuid.UUID) []dto.TaskResponse {
	byID := make(map[uuid.UUID]dto.TaskResponse, len(pool))
	for _, t := range pool {
		byID[t.TaskID] = t
	}
	out := make([]dto.TaskResponse, len(order))
	for i, id := range order {
		t := byID[id]
		t.CardID = cardID
		t.CardIndex = i
		out[i] = t
	}
	return out
}

func taskIDs(list []dto.TaskResponse) []uuid.UUID {
	ids := make([]uuid.UUID, len(list))
	for i, t := range list {
		ids[i] = t.TaskID
	}
	return ids
}

func cardValues(cards []*dto.CardResponse) []dto.CardResponse {
	out := make([]dto.CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, *c)
	}
	return out
}

func taskValues(tasks []*dto.TaskResponse) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}

func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
