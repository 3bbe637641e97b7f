package accounts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
)

// Repository handles account persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByScope(ctx context.Context, scope string) ([]models.Account, error)
	FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	UpdateAliases(ctx context.Context, id uuid.UUID, aliases pq.StringArray) error
	SumResolvedAmounts(ctx context.Context, scope string) (map[uuid.UUID]decimal.Decimal, error)
	DistinctUnlinkedLabels(ctx context.Context, scope string) ([]string, error)
	LinkUnlinkedByLabels(ctx context.Context, scope string, accountID uuid.UUID, labels []string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByScope(ctx context.Context, scope string) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("user_scope = ?", scope).
		Order("name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND id = ?", scope, id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Update writes the mutable columns, including a nil override as NULL.
func (r *repository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Select("name", "account_type", "is_active", "market_value_override").
		Updates(account).Error
}

func (r *repository) UpdateAliases(ctx context.Context, id uuid.UUID, aliases pq.StringArray) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("raw_label_aliases", aliases).Error
}

type accountSum struct {
	AccountID uuid.UUID       `gorm:"column:account_id"`
	Total     decimal.Decimal `gorm:"column:total"`
}

// SumResolvedAmounts returns the signed transaction sum per linked
// account. Accounts with no transactions are absent from the map.
func (r *repository) SumResolvedAmounts(ctx context.Context, scope string) (map[uuid.UUID]decimal.Decimal, error) {
	var sums []accountSum
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("account_id, COALESCE(SUM(amount), 0) AS total").
		Where("user_scope = ? AND account_id IS NOT NULL", scope).
		Group("account_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]decimal.Decimal, len(sums))
	for _, row := range sums {
		totals[row.AccountID] = row.Total
	}
	return totals, nil
}

// DistinctUnlinkedLabels returns every raw account label that still has
// transactions without an account link.
func (r *repository) DistinctUnlinkedLabels(ctx context.Context, scope string) ([]string, error) {
	var labels []string
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Distinct("raw_account_label").
		Where("user_scope = ? AND account_id IS NULL AND raw_account_label <> ''", scope).
		Order("raw_account_label ASC").
		Pluck("raw_account_label", &labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// LinkUnlinkedByLabels points unlinked transactions whose raw label
// matches one of labels (case and whitespace insensitive) at accountID.
func (r *repository) LinkUnlinkedByLabels(ctx context.Context, scope string, accountID uuid.UUID, labels []string) (int64, error) {
	normalized := make([]string, 0, len(labels))
	for _, label := range labels {
		if trimmed := strings.ToLower(strings.TrimSpace(label)); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_scope = ? AND account_id IS NULL AND LOWER(TRIM(raw_account_label)) IN ?", scope, normalized).
		Update("account_id", accountID)
	return result.RowsAffected, result.Error
}
