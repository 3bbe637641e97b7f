package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

func TestNetWorthSnapshotJobSnapshotsCurrentDay(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 45, 0, 0, time.UTC)
	snapshots := &fakeSnapshotWriter{written: 3}
	job := newNetWorthSnapshotJob(t, snapshots)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedDay := types.NewDate(2026, time.March, 15)
	if !snapshots.lastDay.Equal(expectedDay) {
		t.Fatalf("expected day %s, got %s", expectedDay, snapshots.lastDay)
	}
	if snapshots.called != 1 {
		t.Fatalf("expected sweep called once, got %d", snapshots.called)
	}
}

func TestNetWorthSnapshotJobReportsPartialFailures(t *testing.T) {
	snapshots := &fakeSnapshotWriter{written: 2, err: errors.New("scope demo: boom")}
	job := newNetWorthSnapshotJob(t, snapshots)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, snapshots.err) {
		t.Fatalf("expected wrapped sweep error, got %v", err)
	}
}

func newNetWorthSnapshotJob(t *testing.T, snapshots *fakeSnapshotWriter) *netWorthSnapshotJob {
	t.Helper()
	jobIface, err := NewNetWorthSnapshotJob(NetWorthSnapshotJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Snapshots: snapshots,
	})
	if err != nil {
		t.Fatalf("NewNetWorthSnapshotJob: %v", err)
	}
	job, ok := jobIface.(*netWorthSnapshotJob)
	if !ok {
		t.Fatalf("expected netWorthSnapshotJob, got %T", jobIface)
	}
	return job
}

type fakeSnapshotWriter struct {
	lastDay types.Date
	written int
	called  int
	err     error
}

func (f *fakeSnapshotWriter) SnapshotAll(ctx context.Context, day types.Date) (int, error) {
	f.called++
	f.lastDay = day
	return f.written, f.err
}
