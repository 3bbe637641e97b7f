package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

type NetWorthSnapshotJobParams struct {
	Logger    *logger.Logger
	Snapshots snapshotWriter
}

type snapshotWriter interface {
	SnapshotAll(ctx context.Context, day types.Date) (int, error)
}

func NewNetWorthSnapshotJob(params NetWorthSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Snapshots == nil {
		return nil, fmt.Errorf("net worth service required")
	}
	return &netWorthSnapshotJob{
		logg:      params.Logger,
		snapshots: params.Snapshots,
		now:       time.Now,
	}, nil
}

type netWorthSnapshotJob struct {
	logg      *logger.Logger
	snapshots snapshotWriter
	now       func() time.Time
}

func (j *netWorthSnapshotJob) Name() string { return "net-worth-snapshot" }

// Run snapshots every scope for the current UTC day. SnapshotAll upserts,
// so a rerun on the same day refreshes rows instead of duplicating them.
func (j *netWorthSnapshotJob) Run(ctx context.Context) error {
	day := types.DateOf(j.now().UTC())
	written, err := j.snapshots.SnapshotAll(ctx, day)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"day":               day.String(),
		"snapshots_written": written,
	})
	if err != nil {
		j.logg.Error(logCtx, "net worth snapshot sweep finished with failures", err)
		return fmt.Errorf("net worth snapshot: %w", err)
	}
	j.logg.Info(logCtx, "net worth snapshot sweep complete")
	return nil
}
