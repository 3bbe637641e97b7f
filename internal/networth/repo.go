package networth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Repository handles net worth snapshot persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertSnapshot(ctx context.Context, snapshot *models.NetWorthSnapshot) (*models.NetWorthSnapshot, error)
	FindSnapshot(ctx context.Context, scope string, day types.Date) (*models.NetWorthSnapshot, error)
	ListSnapshots(ctx context.Context, scope string, rng types.DateRange) ([]models.NetWorthSnapshot, error)
	DistinctScopes(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a snapshot repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertSnapshot writes the buckets for (scope, snapshot date). Running
// the aggregation twice on the same day overwrites the first row rather
// than adding a second. The returned row carries the stored id, which on
// conflict is the original row's, not the incoming one's.
func (r *repository) UpsertSnapshot(ctx context.Context, snapshot *models.NetWorthSnapshot) (*models.NetWorthSnapshot, error) {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_scope"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"cash", "investments", "real_estate", "crypto", "retirement",
				"liabilities", "total_assets", "total_liabilities", "net_worth", "updated_at",
			}),
		}).
		Create(snapshot).Error
	if err != nil {
		return nil, err
	}
	return r.FindSnapshot(ctx, snapshot.UserScope, snapshot.SnapshotDate)
}

func (r *repository) FindSnapshot(ctx context.Context, scope string, day types.Date) (*models.NetWorthSnapshot, error) {
	var snapshot models.NetWorthSnapshot
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND snapshot_date = ?", scope, day).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) ListSnapshots(ctx context.Context, scope string, rng types.DateRange) ([]models.NetWorthSnapshot, error) {
	var rows []models.NetWorthSnapshot
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND snapshot_date BETWEEN ? AND ?", scope, rng.From, rng.To).
		Order("snapshot_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DistinctScopes lists every scope holding at least one account. The
// snapshot job walks this set.
func (r *repository) DistinctScopes(ctx context.Context) ([]string, error) {
	var scopes []string
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Distinct("user_scope").
		Order("user_scope ASC").
		Pluck("user_scope", &scopes).Error
	if err != nil {
		return nil, err
	}
	return scopes, nil
}
