package models

import (
	"time"

	"github.com/google/uuid"
)

// PotentialDuplicate pairs a newly imported transaction with an existing
// one that shares date, absolute amount, and account label but differs in
// description. The detector only flags; a human resolves.
type PotentialDuplicate struct {
	ID                    uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope             string     `gorm:"column:user_scope;not null;index"`
	TransactionID         uuid.UUID  `gorm:"column:transaction_id;type:uuid;not null"`
	ExistingTransactionID uuid.UUID  `gorm:"column:existing_transaction_id;type:uuid;not null"`
	ImportBatchID         *uuid.UUID `gorm:"column:import_batch_id;type:uuid;index"`
	Resolved              bool       `gorm:"column:resolved;not null;default:false"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
}
