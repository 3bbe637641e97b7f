package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  user_scope TEXT NOT NULL,
  name TEXT NOT NULL,
  category_type TEXT NOT NULL,
  parent_id TEXT,
  raw_label_aliases TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCategory(t *testing.T, db *gorm.DB, scope, name string, typ enums.CategoryType, parentID *uuid.UUID) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:              uuid.New(),
		UserScope:       scope,
		Name:            name,
		CategoryType:    typ,
		ParentID:        parentID,
		RawLabelAliases: pq.StringArray{},
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestServiceCreate(t *testing.T) {
	db := setupCategoriesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	scope := uuid.NewString()

	parent, err := svc.Create(context.Background(), scope, CreateInput{
		Name:         "  Housing  ",
		CategoryType: enums.CategoryTypeExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, "Housing", parent.Name)
	assert.Nil(t, parent.ParentID)

	child, err := svc.Create(context.Background(), scope, CreateInput{
		Name:         "Utilities",
		CategoryType: enums.CategoryTypeExpense,
		ParentID:     &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	// grandchildren are rejected, the tree is two tiers deep
	_, err = svc.Create(context.Background(), scope, CreateInput{
		Name:         "Electricity",
		CategoryType: enums.CategoryTypeExpense,
		ParentID:     &child.ID,
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())

	_, err = svc.Create(context.Background(), scope, CreateInput{
		Name:         "housing",
		CategoryType: enums.CategoryTypeIncome,
	})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	_, err = svc.Create(context.Background(), scope, CreateInput{Name: "   ", CategoryType: enums.CategoryTypeExpense})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())

	_, err = svc.Create(context.Background(), scope, CreateInput{Name: "Misc", CategoryType: enums.CategoryType("misc")})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())

	orphan := uuid.New()
	_, err = svc.Create(context.Background(), scope, CreateInput{
		Name:         "Detached",
		CategoryType: enums.CategoryTypeExpense,
		ParentID:     &orphan,
	})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestServiceMergeAliases(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	scope := uuid.NewString()

	groceries := newCategory(t, db, scope, "Groceries", enums.CategoryTypeExpense, nil)
	newCategory(t, db, scope, "Dining Out", enums.CategoryTypeExpense, nil)

	result, err := svc.MergeAliases(context.Background(), scope, groceries.ID,
		[]string{"WHOLEFDS", "  ", "wholefds", "Trader Joes"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.AliasesAdded)
	assert.Len(t, result.Category.RawLabelAliases, 2)

	found, err := repo.FindByID(context.Background(), scope, groceries.ID)
	require.NoError(t, err)
	assert.Contains(t, found.RawLabelAliases, "WHOLEFDS")
	assert.Contains(t, found.RawLabelAliases, "Trader Joes")

	// labels stay unique across the scope's categories
	_, err = svc.MergeAliases(context.Background(), scope, groceries.ID, []string{"dining out"})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	again, err := svc.MergeAliases(context.Background(), scope, groceries.ID, []string{"WHOLEFDS"})
	require.NoError(t, err)
	assert.Zero(t, again.AliasesAdded)
	assert.Len(t, again.Category.RawLabelAliases, 2)

	_, err = svc.MergeAliases(context.Background(), scope, uuid.New(), []string{"WHOLEFDS"})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}
