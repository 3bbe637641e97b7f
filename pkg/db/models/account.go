package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// Account is a user-managed balance-sheet account. The import pipeline
// grows and shrinks the alias set through mapping operations but never
// creates or deletes the account itself.
type Account struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope           string            `gorm:"column:user_scope;not null;index"`
	Name                string            `gorm:"column:name;not null"`
	AccountType         enums.AccountType `gorm:"column:account_type;type:account_type;not null"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true"`
	RawLabelAliases     pq.StringArray    `gorm:"column:raw_label_aliases;type:text[];default:ARRAY[]::text[]"`
	MarketValueOverride *decimal.Decimal  `gorm:"column:market_value_override;type:numeric(18,2)"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
