package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Transaction is a persisted ledger record. Amount carries the resolved
// sign, not the raw ledger sign; the raw labels are preserved verbatim so
// fingerprints stay stable across re-imports.
type Transaction struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope       string                `gorm:"column:user_scope;not null;index:idx_transactions_scope_date"`
	OccurredOn      types.Date            `gorm:"column:occurred_on;type:date;not null;index:idx_transactions_scope_date"`
	Amount          decimal.Decimal       `gorm:"column:amount;type:numeric(18,2);not null"`
	Description     string                `gorm:"column:description;not null"`
	Memo            string                `gorm:"column:memo"`
	AccountID       *uuid.UUID            `gorm:"column:account_id;type:uuid"`
	CategoryID      *uuid.UUID            `gorm:"column:category_id;type:uuid"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;type:transaction_type;not null"`
	RawAccountLabel string                `gorm:"column:raw_account_label;not null"`
	RawSplitLabel   string                `gorm:"column:raw_split_label"`
	LinkedViaSplit  bool                  `gorm:"column:linked_via_split;not null;default:false"`
	ImportBatchID   *uuid.UUID            `gorm:"column:import_batch_id;type:uuid;index"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
