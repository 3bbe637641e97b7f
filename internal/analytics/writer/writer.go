// Package writer lands analytics rows in BigQuery. Inserts buffer up to a
// configurable batch size and retry with exponential backoff, but only on
// errors BigQuery reports as transient; schema and payload errors surface
// immediately so the worker can dead-letter the message.
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	pkgbigquery "github.com/ledgerline/ledgerline-backend/pkg/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultBatchSize      = 1
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// Config controls the analytics writer behavior.
type Config struct {
	ImportEventsTable   string
	SnapshotEventsTable string
	BatchSize           int
	RetryPolicy         RetryPolicy
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// BigQueryWriter buffers import and snapshot event rows per table and
// flushes them with retry. Not safe for concurrent use; the worker owns
// one writer per subscription.
type BigQueryWriter struct {
	client              tableInserter
	importEventsTable   string
	snapshotEventsTable string
	batchSize           int
	retry               RetryPolicy

	importBuffer   []types.ImportEventRow
	snapshotBuffer []types.SnapshotEventRow
}

// New creates a new BigQueryWriter backed by a shared client.
func New(client *pkgbigquery.Client, cfg Config) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	importTable := strings.TrimSpace(cfg.ImportEventsTable)
	if importTable == "" {
		return nil, errors.New("import events table is required")
	}
	snapshotTable := strings.TrimSpace(cfg.SnapshotEventsTable)
	if snapshotTable == "" {
		return nil, errors.New("snapshot events table is required")
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &BigQueryWriter{
		client:              client,
		importEventsTable:   importTable,
		snapshotEventsTable: snapshotTable,
		batchSize:           batchSize,
		retry:               retry,
	}, nil
}

// InsertImportEvent buffers one import event row, flushing once the batch
// size is reached.
func (w *BigQueryWriter) InsertImportEvent(ctx context.Context, row types.ImportEventRow) error {
	w.importBuffer = append(w.importBuffer, row)
	if len(w.importBuffer) >= w.batchSize {
		return w.flushImportEvents(ctx)
	}
	return nil
}

// InsertSnapshotEvent buffers one snapshot event row, flushing once the
// batch size is reached.
func (w *BigQueryWriter) InsertSnapshotEvent(ctx context.Context, row types.SnapshotEventRow) error {
	w.snapshotBuffer = append(w.snapshotBuffer, row)
	if len(w.snapshotBuffer) >= w.batchSize {
		return w.flushSnapshotEvents(ctx)
	}
	return nil
}

// Flush writes any buffered rows immediately.
func (w *BigQueryWriter) Flush(ctx context.Context) error {
	if err := w.flushImportEvents(ctx); err != nil {
		return err
	}
	return w.flushSnapshotEvents(ctx)
}

func (w *BigQueryWriter) flushImportEvents(ctx context.Context) error {
	if len(w.importBuffer) == 0 {
		return nil
	}
	rows := make([]any, len(w.importBuffer))
	for i := range w.importBuffer {
		rows[i] = &w.importBuffer[i]
	}

	if err := w.insertWithRetry(ctx, w.importEventsTable, rows); err != nil {
		return err
	}
	w.importBuffer = w.importBuffer[:0]
	return nil
}

func (w *BigQueryWriter) flushSnapshotEvents(ctx context.Context) error {
	if len(w.snapshotBuffer) == 0 {
		return nil
	}
	rows := make([]any, len(w.snapshotBuffer))
	for i := range w.snapshotBuffer {
		rows[i] = &w.snapshotBuffer[i]
	}

	if err := w.insertWithRetry(ctx, w.snapshotEventsTable, rows); err != nil {
		return err
	}
	w.snapshotBuffer = w.snapshotBuffer[:0]
	return nil
}

func (w *BigQueryWriter) insertWithRetry(ctx context.Context, table string, rows []any) error {
	if len(rows) == 0 {
		return nil
	}

	backoff := w.retry.InitialBackoff
	for attempt := 1; ; attempt++ {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		err := w.client.InsertRows(ctx, table, rows)
		if err == nil {
			return nil
		}
		if attempt >= w.retry.MaxAttempts || !isRetryableBigQueryError(err) {
			return fmt.Errorf("insert %s rows: %w", table, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		timer.Stop()

		backoff = minDuration(backoff*2, w.retry.MaximumBackoff)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// isRetryableBigQueryError unwraps the layered error shapes a streaming
// insert can return. A composite error retries only when every row error
// inside it is itself retryable.
func isRetryableBigQueryError(err error) bool {
	if err == nil {
		return false
	}

	var multi *cbigquery.MultiError
	if errors.As(err, &multi) {
		if multi == nil || len(*multi) == 0 {
			return false
		}
		for _, inner := range *multi {
			if !isRetryableBigQueryError(inner) {
				return false
			}
		}
		return true
	}

	var pme *cbigquery.PutMultiError
	if errors.As(err, &pme) {
		if pme == nil || len(*pme) == 0 {
			return false
		}
		for _, rowErr := range *pme {
			if !isRetryableBigQueryError(rowErr.Errors) {
				return false
			}
		}
		return true
	}

	var rowErr *cbigquery.RowInsertionError
	if errors.As(err, &rowErr) {
		if rowErr == nil || len(rowErr.Errors) == 0 {
			return false
		}
		for _, inner := range rowErr.Errors {
			if !isRetryableBigQueryError(inner) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPCode(apiErr.Code)
	}

	var statusErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &statusErr) {
		if st := statusErr.GRPCStatus(); st != nil {
			return isRetryableGRPCCode(st.Code())
		}
	}

	return false
}

func isRetryableHTTPCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isRetryableGRPCCode(code codes.Code) bool {
	switch code {
	case codes.Aborted,
		codes.DeadlineExceeded,
		codes.Internal,
		codes.ResourceExhausted,
		codes.Unavailable:
		return true
	default:
		return false
	}
}

// EncodeJSON prepares a payload for a BigQuery JSON column. Raw JSON and
// byte slices pass through untouched; anything else is marshaled. Empty
// input maps to NULL rather than an empty string.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case cbigquery.NullJSON:
		return value, nil
	case json.RawMessage:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
		return cbigquery.NullJSON{Valid: true, JSONVal: string(value)}, nil
	case []byte:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
		return cbigquery.NullJSON{Valid: true, JSONVal: string(value)}, nil
	}

	marshaled, err := json.Marshal(payload)
	if err != nil {
		return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
	}
	if len(marshaled) == 0 {
		return cbigquery.NullJSON{}, nil
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(marshaled)}, nil
}
