package metrics

// Reorder outcomes
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeFailed  = "failed"
)

// IncrementBoardCreated increments board creation counter
func (m *Metrics) IncrementBoardCreated() {
	m.safeExecute("IncrementBoardCreated", func() {
		m.BoardCreatedTotal.Inc()
	})
}

// IncrementCardCreated increments card creation counter
func (m *Metrics) IncrementCardCreated() {
	m.safeExecute("IncrementCardCreated", func() {
		m.CardCreatedTotal.Inc()
	})
}

// IncrementTaskCreated increments task creation counter
func (m *Metrics) IncrementTaskCreated() {
	m.safeExecute("IncrementTaskCreated", func() {
		m.TaskCreatedTotal.Inc()
	})
}

// RecordReorder counts a card reorder, task reorder or task move.
// scope is "card", "task" or "move".
func (m *Metrics) RecordReorder(scope, outcome string) {
	m.safeExecute("RecordReorder", func() {
		m.ReorderTotal.WithLabelValues(scope, outcome).Inc()
	})
}

// RecordInvitation counts an invitation entering status
func (m *Metrics) RecordInvitation(status string) {
	m.safeExecute("RecordInvitation", func() {
		m.InvitationsTotal.WithLabelValues(status).Inc()
	})
}

// AddReconcileFixes adds the number of rows repaired by one reconcile pass
func (m *Metrics) AddReconcileFixes(n int) {
	if n <= 0 {
		return
	}
	m.safeExecute("AddReconcileFixes", func() {
		m.ReconcileFixesTotal.Add(float64(n))
	})
}

// SetBoardsTotal sets total boards gauge
func (m *Metrics) SetBoardsTotal(count int64) {
	m.safeExecute("SetBoardsTotal", func() {
		m.BoardsTotal.Set(float64(count))
	})
}

// SetCardsTotal sets total cards gauge
func (m *Metrics) SetCardsTotal(count int64) {
	m.safeExecute("SetCardsTotal", func() {
		m.CardsTotal.Set(float64(count))
	})
}

// SetTasksTotal sets total tasks gauge
func (m *Metrics) SetTasksTotal(count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.Set(float64(count))
	})
}
