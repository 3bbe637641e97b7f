// Package importer orchestrates the import pipeline: parse the upload,
// resolve records against tracked accounts and categories, drop stored
// duplicates, persist the survivors in chunks, and record the run on an
// import batch. One import per scope runs at a time, enforced by a redis
// lock, so the duplicate detector's fingerprint set stays consistent for
// the whole run.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/dedup"
	"github.com/ledgerline/ledgerline-backend/internal/holdings"
	"github.com/ledgerline/ledgerline-backend/internal/parser"
	"github.com/ledgerline/ledgerline-backend/internal/resolve"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/metrics"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox/payloads"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type lockManager interface {
	AcquireImportLock(ctx context.Context, scope string, ttl time.Duration) (bool, error)
	ReleaseImportLock(ctx context.Context, scope string) error
}

type archiveStore interface {
	Upload(ctx context.Context, bucket, object, contentType string, data []byte) error
}

type accountSource interface {
	ListByScope(ctx context.Context, scope string) ([]models.Account, error)
}

type categorySource interface {
	ListByScope(ctx context.Context, scope string) ([]models.Category, error)
}

// Service runs ledger imports end to end.
type Service interface {
	Import(ctx context.Context, input Input) (*Result, error)
}

// Input is one uploaded file plus its scope. SourceSchema is optional;
// an empty value triggers header-based detection.
type Input struct {
	UserScope    string
	Filename     string
	Content      []byte
	SourceSchema enums.SourceSchema
}

// Result reports one finished run. A failed run is still a result, not an
// error: the batch row records the failure and the committed rows stay.
type Result struct {
	ImportBatchID         uuid.UUID               `json:"importBatchId"`
	Status                enums.ImportBatchStatus `json:"status"`
	SourceSchema          enums.SourceSchema      `json:"sourceSchema"`
	Imported              int                     `json:"imported"`
	SkippedRows           int                     `json:"skippedRows"`
	DuplicatesSkipped     int                     `json:"duplicatesSkipped"`
	IgnoredAccountRecords int                     `json:"ignoredAccountRecords"`
	HoldingsImported      int                     `json:"holdingsImported"`
	PotentialDuplicates   int                     `json:"potentialDuplicates"`
	RowErrors             []parser.RowError       `json:"rowErrors,omitempty"`
	FailureReason         string                  `json:"failureReason,omitempty"`
}

// ServiceParams wires the importer's collaborators. Archive is optional;
// nil disables upload archival.
type ServiceParams struct {
	Transactions transactions.Repository
	Batches      batches.Repository
	Holdings     holdings.Repository
	Accounts     accountSource
	Categories   categorySource
	Tx           txRunner
	Outbox       outboxPublisher
	Locks        lockManager
	Archive      archiveStore
	Rules        *Rules
	Config       config.ImportConfig
	Metrics      *metrics.ImportMetrics
	Logg         *logger.Logger
}

type service struct {
	transactions transactions.Repository
	batches      batches.Repository
	holdings     holdings.Repository
	accounts     accountSource
	categories   categorySource
	tx           txRunner
	outbox       outboxPublisher
	locks        lockManager
	archive      archiveStore
	rules        *Rules
	cfg          config.ImportConfig
	metrics      *metrics.ImportMetrics
	logg         *logger.Logger
}

// NewService validates the wiring and builds the importer.
func NewService(params ServiceParams) (Service, error) {
	if params.Transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batches repository required")
	}
	if params.Holdings == nil {
		return nil, fmt.Errorf("holdings repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts source required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("categories source required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock manager required")
	}
	if params.Rules == nil {
		return nil, fmt.Errorf("import rules required")
	}
	if params.Logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		transactions: params.Transactions,
		batches:      params.Batches,
		holdings:     params.Holdings,
		accounts:     params.Accounts,
		categories:   params.Categories,
		tx:           params.Tx,
		outbox:       params.Outbox,
		locks:        params.Locks,
		archive:      params.Archive,
		rules:        params.Rules,
		cfg:          params.Config,
		metrics:      params.Metrics,
		logg:         params.Logg,
	}, nil
}

func (s *service) Import(ctx context.Context, input Input) (*Result, error) {
	if strings.TrimSpace(input.UserScope) == "" {
		return nil, errors.New(errors.CodeValidation, "user scope is required")
	}
	if len(input.Content) == 0 {
		return nil, errors.New(errors.CodeValidation, "uploaded file is empty")
	}
	if limit := s.cfg.MaxUploadBytes(); int64(len(input.Content)) > limit {
		return nil, errors.New(errors.CodeValidation, "uploaded file exceeds the size limit").
			WithDetails(map[string]any{"maxBytes": limit, "gotBytes": len(input.Content)})
	}

	acquired, err := s.locks.AcquireImportLock(ctx, input.UserScope, s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !acquired {
		return nil, errors.New(errors.CodeConflict, "an import is already running for this scope")
	}
	defer func() {
		if releaseErr := s.locks.ReleaseImportLock(ctx, input.UserScope); releaseErr != nil {
			s.logg.Warn(s.logg.WithScope(ctx, input.UserScope), "import lock release failed; lock expires with its TTL")
		}
	}()

	start := time.Now()

	// Parse failures never create a batch row; the caller gets the row
	// errors back and nothing was touched.
	parsed, err := parser.Parse(input.Filename, input.Content, input.SourceSchema)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListByScope(ctx, input.UserScope)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	cats, err := s.categories.ListByScope(ctx, input.UserScope)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	index := resolve.NewIndex(accounts)
	resolver := categories.NewResolver(cats)

	batch := models.ImportBatch{
		ID:           uuid.New(),
		UserScope:    input.UserScope,
		Filename:     input.Filename,
		SourceSchema: parsed.Schema,
		Status:       enums.ImportBatchStatusPending,
	}
	if err := s.batches.Create(ctx, &batch); err != nil {
		return nil, fmt.Errorf("create import batch: %w", err)
	}
	if err := s.batches.MarkProcessing(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("mark import batch processing: %w", err)
	}

	ctx = s.logg.WithScope(ctx, input.UserScope)
	ctx = s.logg.WithImportBatchID(ctx, batch.ID.String())

	result := &Result{
		ImportBatchID: batch.ID,
		SourceSchema:  parsed.Schema,
		SkippedRows:   parsed.Skipped,
		RowErrors:     parsed.RowErrors,
	}

	if len(parsed.Records) > 0 {
		if failure := s.importRecords(ctx, input.UserScope, &batch, parsed, index, resolver, result); failure != nil {
			return s.finishFailed(ctx, input, &batch, result, failure)
		}
	}
	if len(parsed.Holdings) > 0 {
		if failure := s.importHoldings(ctx, input.UserScope, &batch, parsed.Holdings, result); failure != nil {
			return s.finishFailed(ctx, input, &batch, result, failure)
		}
	}

	result.Status = enums.ImportBatchStatusCompleted
	recordCount := result.Imported + result.HoldingsImported
	metadata := s.metadataFor(result)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.batches.WithTx(tx).Finish(ctx, batch.ID, enums.ImportBatchStatusCompleted, recordCount, metadata); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventImportCompleted,
			AggregateType: enums.AggregateImportBatch,
			AggregateID:   batch.ID,
			Actor:         &outbox.ActorRef{UserScope: input.UserScope, Source: "importer"},
			Version:       1,
			Data: payloads.ImportCompletedEvent{
				BatchID:               batch.ID,
				UserScope:             input.UserScope,
				Filename:              input.Filename,
				SourceSchema:          parsed.Schema,
				Imported:              result.Imported,
				SkippedRows:           result.SkippedRows,
				DuplicatesSkipped:     result.DuplicatesSkipped,
				IgnoredAccountRecords: result.IgnoredAccountRecords,
				HoldingsImported:      result.HoldingsImported,
				PotentialDuplicates:   result.PotentialDuplicates,
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("finish import batch: %w", err)
	}

	s.archiveUpload(ctx, input, batch.ID)
	s.metrics.ObserveRun(string(parsed.Schema), time.Since(start), recordCount, result.DuplicatesSkipped, result.SkippedRows)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"source_schema":      string(parsed.Schema),
		"imported":           result.Imported,
		"holdings_imported":  result.HoldingsImported,
		"duplicates_skipped": result.DuplicatesSkipped,
		"skipped_rows":       result.SkippedRows,
	})
	s.logg.Info(logCtx, "import completed")

	return result, nil
}

// importRecords resolves and persists transaction records in chunks. Each
// chunk commits atomically with its review flags, so a mid-run failure
// leaves whole chunks behind, never a half-written record.
func (s *service) importRecords(ctx context.Context, scope string, batch *models.ImportBatch, parsed *parser.Result, index *resolve.Index, resolver *categories.Resolver, result *Result) error {
	rng, ok := parsed.DateRange()
	if !ok {
		return nil
	}
	// both fingerprints embed the date, so the file's own range bounds
	// every possible hit
	refs, err := s.transactions.FindRefsInRange(ctx, scope, rng)
	if err != nil {
		return fmt.Errorf("load stored fingerprints: %w", err)
	}
	detector := dedup.NewDetector(refs)

	chunkSize := s.cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 200
	}

	var (
		pendingTxns []models.Transaction
		pendingPDs  []models.PotentialDuplicate
	)
	flush := func() error {
		if len(pendingTxns) == 0 {
			return nil
		}
		txns, pds := pendingTxns, pendingPDs
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.transactions.WithTx(tx)
			if err := repo.InsertChunk(ctx, txns); err != nil {
				return err
			}
			return repo.CreatePotentialDuplicates(ctx, pds)
		})
		if err != nil {
			return err
		}
		result.Imported += len(txns)
		result.PotentialDuplicates += len(pds)
		pendingTxns = nil
		pendingPDs = nil
		return nil
	}

	for _, rec := range parsed.Records {
		if s.rules.IsIgnored(rec.RawAccountLabel) || s.rules.IsIgnored(rec.RawSplitLabel) {
			result.IgnoredAccountRecords++
			continue
		}

		outcome := detector.Check(dedup.KeysFor(rec.Date, rec.Amount, rec.Description, rec.RawAccountLabel))
		if outcome.Duplicate {
			result.DuplicatesSkipped++
			continue
		}

		legs := resolve.ResolveLegs(rec, index, s.rules.TypeRules())
		recordTxns := make([]models.Transaction, 0, len(legs))
		for _, leg := range legs {
			txn := models.Transaction{
				ID:              uuid.New(),
				UserScope:       scope,
				OccurredOn:      rec.Date,
				Amount:          leg.Amount,
				Description:     rec.Description,
				Memo:            rec.Memo,
				AccountID:       leg.AccountID,
				TransactionType: leg.Type,
				RawAccountLabel: rec.RawAccountLabel,
				RawSplitLabel:   rec.RawSplitLabel,
				LinkedViaSplit:  leg.LinkedViaSplit,
				ImportBatchID:   &batch.ID,
			}
			if leg.Type != enums.TransactionTypeTransfer {
				if category, found := resolver.Resolve(rec.RawAccountLabel, rec.RawSplitLabel); found {
					txn.CategoryID = &category.ID
				}
			}
			recordTxns = append(recordTxns, txn)
		}

		// A partial hit still imports; the first leg carries the review
		// flag against each stored near-match.
		for _, existingID := range outcome.PotentialOf {
			pendingPDs = append(pendingPDs, models.PotentialDuplicate{
				ID:                    uuid.New(),
				UserScope:             scope,
				TransactionID:         recordTxns[0].ID,
				ExistingTransactionID: existingID,
				ImportBatchID:         &batch.ID,
			})
		}
		pendingTxns = append(pendingTxns, recordTxns...)

		if len(pendingTxns) >= chunkSize {
			if err := flush(); err != nil {
				return fmt.Errorf("persist transaction chunk: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("persist transaction chunk: %w", err)
	}
	return nil
}

func (s *service) importHoldings(ctx context.Context, scope string, batch *models.ImportBatch, records []parser.HoldingRecord, result *Result) error {
	rows := make([]models.Holding, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.Holding{
			UserScope:     scope,
			Symbol:        strings.ToUpper(strings.TrimSpace(rec.Symbol)),
			Quantity:      rec.Quantity,
			CostBasis:     rec.CostBasis,
			Price:         rec.Price,
			MarketValue:   rec.MarketValue,
			AsOf:          rec.AsOf,
			ImportBatchID: &batch.ID,
		})
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.holdings.WithTx(tx).Upsert(ctx, rows)
	})
	if err != nil {
		return fmt.Errorf("persist holdings: %w", err)
	}
	result.HoldingsImported += len(rows)
	return nil
}

// finishFailed records a persistence failure on the batch and reports the
// partial outcome. The rows committed before the failure stay; a retry of
// the same file skips them as exact duplicates.
func (s *service) finishFailed(ctx context.Context, input Input, batch *models.ImportBatch, result *Result, failure error) (*Result, error) {
	result.Status = enums.ImportBatchStatusFailed
	result.FailureReason = failure.Error()
	metadata := s.metadataFor(result)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.batches.WithTx(tx).Finish(ctx, batch.ID, enums.ImportBatchStatusFailed, result.Imported+result.HoldingsImported, metadata); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventImportFailed,
			AggregateType: enums.AggregateImportBatch,
			AggregateID:   batch.ID,
			Actor:         &outbox.ActorRef{UserScope: input.UserScope, Source: "importer"},
			Version:       1,
			Data: payloads.ImportFailedEvent{
				BatchID:       batch.ID,
				UserScope:     input.UserScope,
				Filename:      input.Filename,
				SourceSchema:  result.SourceSchema,
				FailureReason: result.FailureReason,
				Imported:      result.Imported,
			},
		})
	})
	if err != nil {
		s.logg.Error(ctx, "import failure could not be recorded on the batch", err)
	}

	s.metrics.IncFailure(string(result.SourceSchema))
	s.logg.Error(s.logg.WithField(ctx, "imported", result.Imported), "import failed", failure)

	return result, nil
}

func (s *service) metadataFor(result *Result) types.ImportBatchMetadata {
	return types.ImportBatchMetadata{
		Imported:              result.Imported,
		SkippedRows:           result.SkippedRows,
		DuplicatesSkipped:     result.DuplicatesSkipped,
		IgnoredAccountRecords: result.IgnoredAccountRecords,
		HoldingsImported:      result.HoldingsImported,
		PotentialDuplicates:   result.PotentialDuplicates,
		FailureReason:         result.FailureReason,
	}
}

// archiveUpload copies the raw file to object storage when archival is
// wired. Failures are logged and swallowed; the import already succeeded.
func (s *service) archiveUpload(ctx context.Context, input Input, batchID uuid.UUID) {
	if s.archive == nil {
		return
	}
	object := fmt.Sprintf("imports/%s/%s/%s", input.UserScope, batchID, filepath.Base(input.Filename))
	if err := s.archive.Upload(ctx, "", object, contentTypeFor(input.Filename), input.Content); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "object", object), "upload archive failed")
	}
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
