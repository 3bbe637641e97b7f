// Package holdings stores brokerage positions keyed by statement date.
package holdings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
)

// Repository handles holding persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, rows []models.Holding) error
	ListLatest(ctx context.Context, scope string) ([]models.Holding, error)
	ListBySymbol(ctx context.Context, scope, symbol string) ([]models.Holding, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a holdings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the rows, overwriting position data when the same
// (scope, symbol, statement date) was imported before. Re-importing a
// statement is a no-op beyond refreshing the values.
func (r *repository) Upsert(ctx context.Context, rows []models.Holding) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_scope"}, {Name: "symbol"}, {Name: "as_of"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "cost_basis", "price", "market_value", "import_batch_id", "updated_at",
			}),
		}).
		Create(&rows).Error
}

// ListLatest returns one row per symbol, from its most recent statement.
func (r *repository) ListLatest(ctx context.Context, scope string) ([]models.Holding, error) {
	var rows []models.Holding
	err := r.db.WithContext(ctx).
		Where("user_scope = ?", scope).
		Where("(symbol, as_of) IN (SELECT symbol, MAX(as_of) FROM holdings WHERE user_scope = ? GROUP BY symbol)", scope).
		Order("symbol ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBySymbol(ctx context.Context, scope, symbol string) ([]models.Holding, error) {
	var rows []models.Holding
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND symbol = ?", scope, symbol).
		Order("as_of DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
