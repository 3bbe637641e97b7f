package router

import (
	"context"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
)

type fakeWriter struct {
	importRows   []types.ImportEventRow
	snapshotRows []types.SnapshotEventRow
	importErr    error
	snapshotErr  error
}

func (f *fakeWriter) InsertImportEvent(_ context.Context, row types.ImportEventRow) error {
	if f.importErr != nil {
		return f.importErr
	}
	f.importRows = append(f.importRows, row)
	return nil
}

func (f *fakeWriter) InsertSnapshotEvent(_ context.Context, row types.SnapshotEventRow) error {
	if f.snapshotErr != nil {
		return f.snapshotErr
	}
	f.snapshotRows = append(f.snapshotRows, row)
	return nil
}
