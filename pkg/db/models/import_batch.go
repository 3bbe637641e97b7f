package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// ImportBatch tracks one import run from file receipt to its terminal
// status. Metadata holds the outcome counts reported to the caller.
type ImportBatch struct {
	ID           uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope    string                    `gorm:"column:user_scope;not null;index"`
	Filename     string                    `gorm:"column:filename;not null"`
	SourceSchema enums.SourceSchema        `gorm:"column:source_schema;type:source_schema;not null"`
	RecordCount  int                       `gorm:"column:record_count;not null;default:0"`
	Status       enums.ImportBatchStatus   `gorm:"column:status;type:import_batch_status;not null;default:'pending'"`
	Metadata     types.ImportBatchMetadata `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
