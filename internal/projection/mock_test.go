package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskboard-api/internal/client"
	"taskboard-api/internal/dto"
)

// fakeBoardAPI serves a fixed board from memory. The Func fields override
// the mutation calls.
type fakeBoardAPI struct {
	mu     sync.Mutex
	cards  []*dto.CardResponse
	tasks  map[uuid.UUID][]*dto.TaskResponse
	calls  []string
	connID string
	token  string

	ReorderCardsFunc func(ctx context.Context, boardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderCardsResponse, error)
	ReorderTasksFunc func(ctx context.Context, boardID, cardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderTasksResponse, error)
	MoveTaskFunc     func(ctx context.Context, boardID uuid.UUID, req dto.MoveTaskRequest) (*dto.MoveTaskResponse, error)
}

var _ client.BoardAPIClient = (*fakeBoardAPI)(nil)

// newFakeBoard builds a board whose cards hold the given number of tasks
func newFakeBoard(boardID uuid.UUID, taskCounts ...int) *fakeBoardAPI {
	f := &fakeBoardAPI{tasks: make(map[uuid.UUID][]*dto.TaskResponse), token: "tok"}
	for i, n := range taskCounts {
		card := &dto.CardResponse{CardID: uuid.New(), BoardID: boardID, BoardIndex: i, TasksCount: n}
		f.cards = append(f.cards, card)
		list := []*dto.TaskResponse{}
		for j := 0; j < n; j++ {
			list = append(list, &dto.TaskResponse{TaskID: uuid.New(), CardID: card.CardID, BoardID: boardID, CardIndex: j})
		}
		f.tasks[card.CardID] = list
	}
	return f
}

func (f *fakeBoardAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBoardAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBoardAPI) resetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeBoardAPI) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	return &dto.TokenResponse{AccessToken: f.token}, nil
}

func (f *fakeBoardAPI) ListBoards(ctx context.Context) ([]*dto.BoardResponse, error) {
	return nil, nil
}

func (f *fakeBoardAPI) ListCards(ctx context.Context, boardID uuid.UUID) ([]*dto.CardResponse, error) {
	f.record("ListCards")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*dto.CardResponse, len(f.cards))
	for i, c := range f.cards {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeBoardAPI) ListTasks(ctx context.Context, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error) {
	f.record("ListTasks:" + cardID.String())
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.tasks[cardID]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Code: "NOT_FOUND", Message: "Card not found"}
	}
	out := make([]*dto.TaskResponse, len(list))
	for i, t := range list {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeBoardAPI) ReorderCards(ctx context.Context, boardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderCardsResponse, error) {
	f.record("ReorderCards")
	if f.ReorderCardsFunc != nil {
		return f.ReorderCardsFunc(ctx, boardID, req)
	}
	return &dto.ReorderCardsResponse{Changed: true}, nil
}

func (f *fakeBoardAPI) ReorderTasks(ctx context.Context, boardID, cardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderTasksResponse, error) {
	f.record("ReorderTasks")
	if f.ReorderTasksFunc != nil {
		return f.ReorderTasksFunc(ctx, boardID, cardID, req)
	}
	return &dto.ReorderTasksResponse{Changed: true}, nil
}

func (f *fakeBoardAPI) MoveTask(ctx context.Context, boardID uuid.UUID, req dto.MoveTaskRequest) (*dto.MoveTaskResponse, error) {
	f.record("MoveTask")
	if f.MoveTaskFunc != nil {
		return f.MoveTaskFunc(ctx, boardID, req)
	}
	return &dto.MoveTaskResponse{Changed: true}, nil
}

func (f *fakeBoardAPI) Token() string { return f.token }

func (f *fakeBoardAPI) SetConnectionID(id string) {
	f.mu.Lock()
	f.connID = id
	f.mu.Unlock()
}

func (f *fakeBoardAPI) connectionID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connID
}

func (f *fakeBoardAPI) cardID(i int) uuid.UUID { return f.cards[i].CardID }

func (f *fakeBoardAPI) taskID(card, i int) uuid.UUID {
	return f.tasks[f.cards[card].CardID][i].TaskID
}

func cardOrder(cards []dto.CardResponse) []uuid.UUID {
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.CardID
	}
	return ids
}

func taskOrder(tasks []dto.TaskResponse) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.TaskID
	}
	return ids
}
