package holdings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

func setupHoldingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS holdings (
  id TEXT PRIMARY KEY,
  user_scope TEXT NOT NULL,
  symbol TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  cost_basis NUMERIC,
  price NUMERIC,
  market_value NUMERIC,
  as_of DATE NOT NULL,
  import_batch_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_scope, symbol, as_of)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func holding(scope, symbol string, asOf types.Date, quantity, value string) models.Holding {
	return models.Holding{
		ID:          uuid.New(),
		UserScope:   scope,
		Symbol:      symbol,
		Quantity:    decimal.RequireFromString(quantity),
		MarketValue: decimal.RequireFromString(value),
		AsOf:        asOf,
	}
}

func TestRepositoryUpsertIdempotent(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	scope := uuid.NewString()
	march := types.NewDate(2024, 3, 31)

	require.NoError(t, repo.Upsert(context.Background(), []models.Holding{
		holding(scope, "VTI", march, "10.5", "2311.05"),
	}))

	// same statement again with refreshed values
	require.NoError(t, repo.Upsert(context.Background(), []models.Holding{
		holding(scope, "VTI", march, "10.5", "2350.00"),
	}))

	var rows []models.Holding
	require.NoError(t, db.Where("user_scope = ?", scope).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "2350", rows[0].MarketValue.String())
	assert.Equal(t, "10.5", rows[0].Quantity.String())
}

func TestRepositoryListLatest(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	scope := uuid.NewString()

	require.NoError(t, repo.Upsert(context.Background(), []models.Holding{
		holding(scope, "VTI", types.NewDate(2024, 2, 29), "10", "2200.00"),
		holding(scope, "VTI", types.NewDate(2024, 3, 31), "10.5", "2311.05"),
		holding(scope, "AAPL", types.NewDate(2024, 3, 31), "5", "875.00"),
		holding(uuid.NewString(), "VTI", types.NewDate(2024, 3, 31), "99", "1.00"),
	}))

	rows, err := repo.ListLatest(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, "VTI", rows[1].Symbol)
	assert.Equal(t, "2024-03-31", rows[1].AsOf.String())
	assert.Equal(t, "2311.05", rows[1].MarketValue.String())
}

func TestRepositoryListBySymbol(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	scope := uuid.NewString()

	require.NoError(t, repo.Upsert(context.Background(), []models.Holding{
		holding(scope, "BND", types.NewDate(2024, 1, 31), "3", "210.00"),
		holding(scope, "BND", types.NewDate(2024, 2, 29), "3", "213.00"),
		holding(scope, "VTI", types.NewDate(2024, 2, 29), "10", "2200.00"),
	}))

	rows, err := repo.ListBySymbol(context.Background(), scope, "BND")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-02-29", rows[0].AsOf.String())
	assert.Equal(t, "2024-01-31", rows[1].AsOf.String())
}
