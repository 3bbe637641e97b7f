package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Holding is a brokerage position as of a statement date. Holdings bypass
// account and category resolution; re-importing the same statement
// overwrites the (scope, symbol, as_of) row.
type Holding struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope     string          `gorm:"column:user_scope;not null;uniqueIndex:uniq_holdings_scope_symbol_asof"`
	Symbol        string          `gorm:"column:symbol;not null;uniqueIndex:uniq_holdings_scope_symbol_asof"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(18,6);not null"`
	CostBasis     decimal.Decimal `gorm:"column:cost_basis;type:numeric(18,2)"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(18,6)"`
	MarketValue   decimal.Decimal `gorm:"column:market_value;type:numeric(18,2)"`
	AsOf          types.Date      `gorm:"column:as_of;type:date;not null;uniqueIndex:uniq_holdings_scope_symbol_asof"`
	ImportBatchID *uuid.UUID      `gorm:"column:import_batch_id;type:uuid;index"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
