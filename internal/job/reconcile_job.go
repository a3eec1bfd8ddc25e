package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskboard-api/internal/metrics"
	"taskboard-api/internal/repository"
)

const reconcileTimeout = 5 * time.Minute

// ReconcileJob repairs index gaps and stale counts left behind by
// concurrent reorders
type ReconcileJob struct {
	repo    repository.ReconcileRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewReconcileJob creates a new ReconcileJob instance
func NewReconcileJob(repo repository.ReconcileRepository, m *metrics.Metrics, logger *zap.Logger) *ReconcileJob {
	return &ReconcileJob{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Run executes one pass. It satisfies cron.Job.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	j.Reconcile(ctx)
}

// Reconcile walks every board and returns the number of rows it rewrote.
// A failing board is logged and skipped.
func (j *ReconcileJob) Reconcile(ctx context.Context) (int, error) {
	j.logger.Info("Starting reconcile job")

	boardIDs, err := j.repo.ListBoardIDs(ctx)
	if err != nil {
		j.logger.Error("Failed to list boards for reconcile", zap.Error(err))
		return 0, err
	}

	fixed := 0
	failed := 0
	for _, boardID := range boardIDs {
		if ctx.Err() != nil {
			j.logger.Warn("Reconcile job interrupted", zap.Int("fixed", fixed))
			return fixed, ctx.Err()
		}

		res, err := j.repo.ReconcileBoard(ctx, boardID)
		if err != nil {
			j.logger.Error("Failed to reconcile board",
				zap.String("board_id", boardID.String()),
				zap.Error(err),
			)
			failed++
			continue
		}
		if res.Total() > 0 {
			j.logger.Warn("Repaired board ordering",
				zap.String("board_id", boardID.String()),
				zap.Int("card_indexes", res.CardIndexesFixed),
				zap.Int("task_indexes", res.TaskIndexesFixed),
				zap.Int("counts", res.CountsFixed),
			)
		}
		fixed += res.Total()
	}

	if j.metrics != nil {
		j.metrics.AddReconcileFixes(fixed)
	}

	j.logger.Info("Reconcile job completed",
		zap.Int("boards", len(boardIDs)),
		zap.Int("fixed", fixed),
		zap.Int("failed", failed),
	)
	return fixed, nil
}
