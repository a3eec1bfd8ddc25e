package database

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard-api/internal/domain"
)

type queryRecord struct {
	operation string
	table     string
	duration  time.Duration
	err       error
}

// mockMetricsRecorder collects what the callbacks report
type mockMetricsRecorder struct {
	mu        sync.Mutex
	queries   []queryRecord
	statsCall int
}

func (m *mockMetricsRecorder) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, queryRecord{operation, table, duration, err})
}

func (m *mockMetricsRecorder) UpdateDBStats(stats interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := stats.(sql.DBStats); ok {
		m.statsCall++
	}
}

func (m *mockMetricsRecorder) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = nil
}

func (m *mockMetricsRecorder) operations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, 0, len(m.queries))
	for _, q := range m.queries {
		ops = append(ops, q.operation)
	}
	return ops
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewInMemory(uuid.NewString())
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db := setupTestDB(t)
	for _, m := range models() {
		assert.True(t, db.Migrator().HasTable(m.model), "table %s should exist", m.tableName)
	}
}

func TestRegisterMetricsCallbacks_CRUD(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	board := &domain.Board{OwnerID: uuid.New(), Name: "Roadmap"}
	require.NoError(t, db.Create(board).Error)

	var loaded domain.Board
	require.NoError(t, db.First(&loaded, "id = ?", board.ID).Error)
	require.NoError(t, db.Model(&loaded).Update("name", "Roadmap 2").Error)
	require.NoError(t, db.Delete(&domain.Board{}, "id = ?", board.ID).Error)

	assert.Equal(t, []string{"insert", "select", "update", "delete"}, recorder.operations())
	for _, q := range recorder.queries {
		assert.Equal(t, "boards", q.table)
		assert.NoError(t, q.err)
	}
}

func TestRegisterMetricsCallbacks_QueryError(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	var card domain.Card
	err := db.First(&card, "id = ?", uuid.New()).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.Len(t, recorder.queries, 1)
	assert.Equal(t, "select", recorder.queries[0].operation)
	assert.Equal(t, "cards", recorder.queries[0].table)
	assert.Error(t, recorder.queries[0].err)
}

func TestRegisterMetricsCallbacks_Transaction(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	boardID := uuid.New()
	require.NoError(t, db.Create(&domain.Board{BaseModel: domain.BaseModel{ID: boardID}, OwnerID: uuid.New(), Name: "b"}).Error)
	recorder.reset()

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < 2; i++ {
			card := &domain.Card{BoardID: boardID, CreatorID: uuid.New(), Name: "c", BoardIndex: i}
			if err := tx.Create(card).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"insert", "insert"}, recorder.operations())
}

func TestStartDBStatsCollector(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}

	done := StartDBStatsCollector(db, recorder, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return recorder.statsCall > 0
	}, time.Second, 10*time.Millisecond)
	close(done)
}
