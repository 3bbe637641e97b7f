package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

func TestImportBatchRetentionJobDeletesTerminalBatches(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	batches := &fakeBatchReaper{deletedRows: 12}
	job := newImportBatchRetentionJob(t, batches, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().AddDate(0, 0, -importBatchRetentionDays)
	if !batches.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, batches.lastCutoff)
	}
	if batches.called != 1 {
		t.Fatalf("expected reaper called once, got %d", batches.called)
	}
}

func TestImportBatchRetentionJobHonorsCustomRetention(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	batches := &fakeBatchReaper{}
	job := newImportBatchRetentionJob(t, batches, 7)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().AddDate(0, 0, -7)
	if !batches.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, batches.lastCutoff)
	}
}

func TestImportBatchRetentionJobPropagatesError(t *testing.T) {
	batches := &fakeBatchReaper{err: errors.New("boom")}
	job := newImportBatchRetentionJob(t, batches, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newImportBatchRetentionJob(t *testing.T, batches *fakeBatchReaper, retention int) *importBatchRetentionJob {
	t.Helper()
	jobIface, err := NewImportBatchRetentionJob(ImportBatchRetentionJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Batches:   batches,
		Retention: retention,
	})
	if err != nil {
		t.Fatalf("NewImportBatchRetentionJob: %v", err)
	}
	job, ok := jobIface.(*importBatchRetentionJob)
	if !ok {
		t.Fatalf("expected importBatchRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeBatchReaper struct {
	lastCutoff  time.Time
	deletedRows int64
	called      int
	err         error
}

func (f *fakeBatchReaper) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}
