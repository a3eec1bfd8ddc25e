package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard-api/internal/database"
	"taskboard-api/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemory(uuid.NewString())
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type fixture struct {
	db     *gorm.DB
	boards BoardRepository
	cards  CardRepository
	tasks  TaskRepository
	owner  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	return &fixture{
		db:     db,
		boards: NewBoardRepository(db),
		cards:  NewCardRepository(db),
		tasks:  NewTaskRepository(db),
		owner:  uuid.New(),
	}
}

func (f *fixture) board(t *testing.T, name string) *domain.Board {
	t.Helper()
	b := &domain.Board{OwnerID: f.owner, Name: name}
	require.NoError(t, f.boards.Create(context.Background(), b))
	return b
}

func (f *fixture) card(t *testing.T, boardID uuid.UUID, name string) *domain.Card {
	t.Helper()
	c := &domain.Card{BoardID: boardID, CreatorID: f.owner, Name: name}
	require.NoError(t, f.cards.Append(context.Background(), c))
	return c
}

func (f *fixture) task(t *testing.T, card *domain.Card, title string) *domain.Task {
	t.Helper()
	tk := &domain.Task{CardID: card.ID, BoardID: card.BoardID, OwnerID: f.owner, Title: title}
	require.NoError(t, f.tasks.Append(context.Background(), tk))
	return tk
}

func (f *fixture) cardIDs(t *testing.T, boardID uuid.UUID) []uuid.UUID {
	t.Helper()
	cards, err := f.cards.ListOrdered(context.Background(), boardID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		require.Equal(t, i, c.BoardIndex, "board_index must be contiguous")
		ids[i] = c.ID
	}
	return ids
}

func (f *fixture) taskIDs(t *testing.T, cardID uuid.UUID) []uuid.UUID {
	t.Helper()
	tasks, err := f.tasks.ListOrdered(context.Background(), cardID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(tasks))
	for i, tk := range tasks {
		require.Equal(t, i, tk.CardIndex, "card_index must be contiguous")
		ids[i] = tk.ID
	}
	return ids
}

// failNthUpdate makes the n-th UPDATE issued through db fail
func failNthUpdate(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	calls := 0
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_update", func(tx *gorm.DB) {
		calls++
		if calls == n {
			_ = tx.AddError(gorm.ErrInvalidTransaction)
		}
	})
	require.NoError(t, err)
}
