package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

const importBatchRetentionDays = 90

type ImportBatchRetentionJobParams struct {
	Logger    *logger.Logger
	Batches   importBatchReaper
	Retention int
}

type importBatchReaper interface {
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewImportBatchRetentionJob(params ImportBatchRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batches repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = importBatchRetentionDays
	}
	return &importBatchRetentionJob{
		logg:      params.Logger,
		batches:   params.Batches,
		retention: retention,
		now:       time.Now,
	}, nil
}

type importBatchRetentionJob struct {
	logg      *logger.Logger
	batches   importBatchReaper
	retention int
	now       func() time.Time
}

func (j *importBatchRetentionJob) Name() string { return "import-batch-retention" }

// Run reaps completed and failed import batches past the retention window.
// Pending and processing batches are left alone regardless of age.
func (j *importBatchRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	deleted, err := j.batches.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("import batch retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "import batch retention complete")
	return nil
}
