package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/internal/dedup"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Repository handles transaction persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertChunk(ctx context.Context, txns []models.Transaction) error
	FindRefsInRange(ctx context.Context, scope string, rng types.DateRange) ([]dedup.Stored, error)
	List(ctx context.Context, scope string, params pagination.Params, filters ListFilters) ([]models.Transaction, *pagination.Cursor, error)
	FindByIDs(ctx context.Context, scope string, ids []uuid.UUID) ([]models.Transaction, error)
	DeleteByIDs(ctx context.Context, scope string, ids []uuid.UUID) (int64, error)
	UpdateCategory(ctx context.Context, scope string, id uuid.UUID, categoryID *uuid.UUID) error
	AssignCategory(ctx context.Context, scope string, ids []uuid.UUID, categoryID uuid.UUID) (int64, error)
	TypesForLabel(ctx context.Context, scope, label string) ([]enums.TransactionType, error)
	ListUnmappedLabels(ctx context.Context, scope string, limit int) ([]LabelCount, error)
	UncategorizedByLabel(ctx context.Context, scope string) (map[string][]uuid.UUID, error)
	CreatePotentialDuplicates(ctx context.Context, rows []models.PotentialDuplicate) error
	ListPotentialDuplicates(ctx context.Context, scope string, includeResolved bool) ([]models.PotentialDuplicate, error)
	ResolvePotentialDuplicates(ctx context.Context, scope string, transactionIDs []uuid.UUID) error
}

// ListFilters narrows a transaction listing. Uncategorized selects rows
// with no category and wins over CategoryID when both are set.
type ListFilters struct {
	AccountID     *uuid.UUID
	CategoryID    *uuid.UUID
	Type          *enums.TransactionType
	Range         *types.DateRange
	Uncategorized bool
}

// LabelCount is one raw label with its unlinked-transaction count.
type LabelCount struct {
	Label string `gorm:"column:label" json:"label"`
	Count int    `gorm:"column:count" json:"count"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertChunk(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&txns).Error
}

// FindRefsInRange fingerprints every stored transaction falling inside
// rng. The fingerprint set is read once per import run.
func (r *repository) FindRefsInRange(ctx context.Context, scope string, rng types.DateRange) ([]dedup.Stored, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Select("id", "occurred_on", "amount", "description", "raw_account_label").
		Where("user_scope = ? AND occurred_on BETWEEN ? AND ?", scope, rng.From, rng.To).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stored := make([]dedup.Stored, 0, len(rows))
	for _, row := range rows {
		stored = append(stored, dedup.StoredFrom(row.ID, row.OccurredOn, row.Amount, row.Description, row.RawAccountLabel))
	}
	return stored, nil
}

func (r *repository) List(ctx context.Context, scope string, params pagination.Params, filters ListFilters) ([]models.Transaction, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_scope = ?", scope)

	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.Uncategorized {
		query = query.Where("category_id IS NULL")
	} else if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Type != nil {
		query = query.Where("transaction_type = ?", *filters.Type)
	}
	if filters.Range != nil {
		query = query.Where("occurred_on BETWEEN ? AND ?", filters.Range.From, filters.Range.To)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(occurred_on, id) < (?, ?)", cursor.At, cursor.ID)
	}

	var txns []models.Transaction
	if err := query.Order("occurred_on DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&txns).Error; err != nil {
		return nil, nil, err
	}

	if len(txns) > limit {
		txns = txns[:limit]
		// anchor on the last returned row so the strict < resumes
		// exactly at the row after it
		last := txns[limit-1]
		return txns, &pagination.Cursor{At: last.OccurredOn.Time(), ID: last.ID}, nil
	}
	return txns, nil, nil
}

func (r *repository) FindByIDs(ctx context.Context, scope string, ids []uuid.UUID) ([]models.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND id IN ?", scope, ids).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) DeleteByIDs(ctx context.Context, scope string, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_scope = ? AND id IN ?", scope, ids).
		Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateCategory(ctx context.Context, scope string, id uuid.UUID, categoryID *uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_scope = ? AND id = ?", scope, id).
		Update("category_id", categoryID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AssignCategory sets the category on every listed transaction in one
// statement. Rows already deleted or outside the scope are silently not
// counted.
func (r *repository) AssignCategory(ctx context.Context, scope string, ids []uuid.UUID, categoryID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_scope = ? AND id IN ?", scope, ids).
		Update("category_id", categoryID)
	return res.RowsAffected, res.Error
}

// TypesForLabel returns the non-transfer types recorded against a label,
// feeding the backfill's majority vote.
func (r *repository) TypesForLabel(ctx context.Context, scope, label string) ([]enums.TransactionType, error) {
	var rows []string
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_scope = ? AND transaction_type <> ?", scope, enums.TransactionTypeTransfer).
		Where("LOWER(raw_account_label) = LOWER(?) OR LOWER(raw_split_label) = LOWER(?)", label, label).
		Pluck("transaction_type", &rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]enums.TransactionType, 0, len(rows))
	for _, row := range rows {
		out = append(out, enums.TransactionType(row))
	}
	return out, nil
}

// ListUnmappedLabels groups account labels of transactions that resolved
// to no account, most frequent first.
func (r *repository) ListUnmappedLabels(ctx context.Context, scope string, limit int) ([]LabelCount, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []LabelCount
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("raw_account_label AS label, COUNT(*) AS count").
		Where("user_scope = ? AND account_id IS NULL AND raw_account_label <> ''", scope).
		Group("raw_account_label").
		Order("count DESC, label ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UncategorizedByLabel maps each label to the uncategorized income and
// expense transactions carrying it, for the category backfill.
func (r *repository) UncategorizedByLabel(ctx context.Context, scope string) (map[string][]uuid.UUID, error) {
	type labelRow struct {
		ID              uuid.UUID `gorm:"column:id"`
		RawAccountLabel string    `gorm:"column:raw_account_label"`
		RawSplitLabel   string    `gorm:"column:raw_split_label"`
	}

	var rows []labelRow
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("id", "raw_account_label", "raw_split_label").
		Where("user_scope = ? AND category_id IS NULL AND transaction_type <> ?", scope, enums.TransactionTypeTransfer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byLabel := make(map[string][]uuid.UUID)
	for _, row := range rows {
		label := row.RawSplitLabel
		if label == "" {
			label = row.RawAccountLabel
		}
		if label == "" {
			continue
		}
		byLabel[label] = append(byLabel[label], row.ID)
	}
	return byLabel, nil
}

func (r *repository) CreatePotentialDuplicates(ctx context.Context, rows []models.PotentialDuplicate) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) ListPotentialDuplicates(ctx context.Context, scope string, includeResolved bool) ([]models.PotentialDuplicate, error) {
	query := r.db.WithContext(ctx).Where("user_scope = ?", scope)
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}

	var rows []models.PotentialDuplicate
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ResolvePotentialDuplicates marks every flag touching the given
// transactions as reviewed.
func (r *repository) ResolvePotentialDuplicates(ctx context.Context, scope string, transactionIDs []uuid.UUID) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.PotentialDuplicate{}).
		Where("user_scope = ?", scope).
		Where("transaction_id IN ? OR existing_transaction_id IN ?", transactionIDs, transactionIDs).
		Update("resolved", true).Error
}
