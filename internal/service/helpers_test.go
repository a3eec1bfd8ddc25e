package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/database"
	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// testEnv wires every service against one in-memory database
type testEnv struct {
	db          *gorm.DB
	boardRepo   repository.BoardRepository
	cardRepo    *MockCardRepository
	taskRepo    *MockTaskRepository
	userRepo    repository.UserRepository
	inviteRepo  repository.InvitationRepository
	publisher   *recordingPublisher
	metrics     *metrics.Metrics
	access      AccessService
	boards      BoardService
	cards       CardService
	tasks       TaskService
	invitations InvitationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewInMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zap.NewNop()
	env := &testEnv{
		db:         db,
		boardRepo:  repository.NewBoardRepository(db),
		cardRepo:   &MockCardRepository{CardRepository: repository.NewCardRepository(db)},
		taskRepo:   &MockTaskRepository{TaskRepository: repository.NewTaskRepository(db)},
		userRepo:   repository.NewUserRepository(db),
		inviteRepo: repository.NewInvitationRepository(db),
		publisher:  &recordingPublisher{},
		metrics:    metrics.NewWithRegistry(prometheus.NewRegistry(), logger),
	}
	env.access = NewAccessService(env.boardRepo, logger)
	env.boards = NewBoardService(env.boardRepo, env.userRepo, env.access, env.publisher, env.metrics, logger)
	env.cards = NewCardService(env.cardRepo, env.access, env.publisher, env.metrics, logger)
	env.tasks = NewTaskService(env.taskRepo, env.cardRepo, env.access, env.publisher, env.metrics, logger)
	env.invitations = NewInvitationService(env.inviteRepo, env.boardRepo, env.userRepo, env.publisher, env.metrics, logger)
	return env
}

func (e *testEnv) user(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u := &domain.User{Email: email, Name: email, PasswordHash: "x"}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return u.ID
}

func (e *testEnv) board(t *testing.T, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	b, err := e.boards.CreateBoard(context.Background(), owner, &dto.CreateBoardRequest{Name: name})
	require.NoError(t, err)
	return b.BoardID
}

func (e *testEnv) card(t *testing.T, owner, boardID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	c, err := e.cards.CreateCard(context.Background(), owner, boardID, &dto.CreateCardRequest{Name: name})
	require.NoError(t, err)
	return c.CardID
}

func (e *testEnv) task(t *testing.T, owner, boardID, cardID uuid.UUID, title string) uuid.UUID {
	t.Helper()
	tk, err := e.tasks.CreateTask(context.Background(), owner, boardID, cardID, &dto.CreateTaskRequest{Title: title})
	require.NoError(t, err)
	return tk.TaskID
}

func (e *testEnv) cardOrder(t *testing.T, owner, boardID uuid.UUID) []uuid.UUID {
	t.Helper()
	cards, err := e.cards.ListCards(context.Background(), owner, boardID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		require.Equal(t, i, c.BoardIndex, "board index must be contiguous")
		ids[i] = c.CardID
	}
	return ids
}

func (e *testEnv) taskOrder(t *testing.T, owner, boardID, cardID uuid.UUID) []uuid.UUID {
	t.Helper()
	tasks, err := e.tasks.ListTasks(context.Background(), owner, boardID, cardID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(tasks))
	for i, tk := range tasks {
		require.Equal(t, i, tk.CardIndex, "card index must be contiguous")
		ids[i] = tk.TaskID
	}
	return ids
}

// invite runs the full invitation flow and returns the new member's id
func (e *testEnv) invite(t *testing.T, owner, boardID uuid.UUID, email string) uuid.UUID {
	t.Helper()
	member := e.user(t, email)
	inv, err := e.invitations.CreateInvitation(context.Background(), owner, boardID, &dto.CreateInvitationRequest{MemberID: &member})
	require.NoError(t, err)
	_, err = e.invitations.RespondInvitation(context.Background(), member, inv.InviteID, &dto.RespondInvitationRequest{Status: "accepted"})
	require.NoError(t, err)
	return member
}

func appErrorCode(err error) string {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
