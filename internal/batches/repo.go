// Package batches tracks import runs from file receipt to their
// terminal status, and reaps old runs past the retention window.
package batches

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Repository handles import batch persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, batch *models.ImportBatch) error
	FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.ImportBatch, error)
	List(ctx context.Context, scope string, params pagination.Params) ([]models.ImportBatch, *pagination.Cursor, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Finish(ctx context.Context, id uuid.UUID, status enums.ImportBatchStatus, recordCount int, metadata types.ImportBatchMetadata) error
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an import batch repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, batch *models.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND id = ?", scope, id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) List(ctx context.Context, scope string, params pagination.Params) ([]models.ImportBatch, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.ImportBatch{}).Where("user_scope = ?", scope)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.At, cursor.ID)
	}

	var rows []models.ImportBatch
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		return rows, &pagination.Cursor{At: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ImportBatch{}).
		Where("id = ? AND status = ?", id, enums.ImportBatchStatusPending).
		Update("status", enums.ImportBatchStatusProcessing).Error
}

// Finish writes the terminal status together with the final counts.
// Already-terminal rows are left untouched so a retried run cannot
// overwrite a recorded outcome.
func (r *repository) Finish(ctx context.Context, id uuid.UUID, status enums.ImportBatchStatus, recordCount int, metadata types.ImportBatchMetadata) error {
	if !status.IsTerminal() {
		return fmt.Errorf("import batch status %q is not terminal", status)
	}
	return r.db.WithContext(ctx).
		Model(&models.ImportBatch{}).
		Where("id = ? AND status IN ?", id, []enums.ImportBatchStatus{
			enums.ImportBatchStatusPending,
			enums.ImportBatchStatusProcessing,
		}).
		Updates(map[string]any{
			"status":       status,
			"record_count": recordCount,
			"metadata":     metadata,
		}).Error
}

// DeleteTerminalBefore removes completed and failed batches older than
// cutoff. In-flight batches are never reaped.
func (r *repository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ? AND status IN ?", cutoff, []enums.ImportBatchStatus{
			enums.ImportBatchStatusCompleted,
			enums.ImportBatchStatusFailed,
		}).
		Delete(&models.ImportBatch{})
	return res.RowsAffected, res.Error
}
