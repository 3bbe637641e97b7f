package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
)

// Repository handles category persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByScope(ctx context.Context, scope string) ([]models.Category, error)
	FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	UpdateAliases(ctx context.Context, id uuid.UUID, aliases pq.StringArray) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a categories repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByScope(ctx context.Context, scope string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("user_scope = ?", scope).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("user_scope = ? AND id = ?", scope, id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) UpdateAliases(ctx context.Context, id uuid.UUID, aliases pq.StringArray) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("raw_label_aliases", aliases).Error
}
