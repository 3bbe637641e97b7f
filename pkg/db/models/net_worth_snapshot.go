package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// NetWorthSnapshot is one row per (scope, date). Repeated aggregation on
// the same day overwrites the buckets; the row count never grows past one
// per day.
type NetWorthSnapshot struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope        string          `gorm:"column:user_scope;not null;uniqueIndex:uniq_snapshots_scope_date"`
	SnapshotDate     types.Date      `gorm:"column:snapshot_date;type:date;not null;uniqueIndex:uniq_snapshots_scope_date"`
	Cash             decimal.Decimal `gorm:"column:cash;type:numeric(18,2);not null"`
	Investments      decimal.Decimal `gorm:"column:investments;type:numeric(18,2);not null"`
	RealEstate       decimal.Decimal `gorm:"column:real_estate;type:numeric(18,2);not null"`
	Crypto           decimal.Decimal `gorm:"column:crypto;type:numeric(18,2);not null"`
	Retirement       decimal.Decimal `gorm:"column:retirement;type:numeric(18,2);not null"`
	Liabilities      decimal.Decimal `gorm:"column:liabilities;type:numeric(18,2);not null"`
	TotalAssets      decimal.Decimal `gorm:"column:total_assets;type:numeric(18,2);not null"`
	TotalLiabilities decimal.Decimal `gorm:"column:total_liabilities;type:numeric(18,2);not null"`
	NetWorth         decimal.Decimal `gorm:"column:net_worth;type:numeric(18,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
