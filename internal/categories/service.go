package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// Service defines category management operations.
type Service interface {
	List(ctx context.Context, scope string) ([]models.Category, error)
	Create(ctx context.Context, scope string, input CreateInput) (*models.Category, error)
	MergeAliases(ctx context.Context, scope string, categoryID uuid.UUID, aliases []string) (*MergeAliasesResult, error)
}

type service struct {
	repo Repository
}

// NewService wires a categories service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, scope string) ([]models.Category, error) {
	return s.repo.ListByScope(ctx, scope)
}

// CreateInput is the validated payload for a new category. ParentID, when
// set, must point at a top-level category in the same scope.
type CreateInput struct {
	Name         string
	CategoryType enums.CategoryType
	ParentID     *uuid.UUID
}

func (s *service) Create(ctx context.Context, scope string, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "category name must not be empty")
	}
	if !input.CategoryType.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid category type")
	}

	existing, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(strings.TrimSpace(existing[i].Name), name) {
			return nil, errors.New(errors.CodeConflict, "category name already in use")
		}
	}

	if input.ParentID != nil {
		parent := findByID(existing, *input.ParentID)
		if parent == nil {
			return nil, errors.New(errors.CodeNotFound, "parent category not found")
		}
		if parent.ParentID != nil {
			return nil, errors.New(errors.CodeValidation, "categories nest one level deep")
		}
	}

	category := &models.Category{
		ID:           uuid.New(),
		UserScope:    scope,
		Name:         name,
		CategoryType: input.CategoryType,
		ParentID:     input.ParentID,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// MergeAliasesResult reports the merged category and how many aliases the
// merge actually added.
type MergeAliasesResult struct {
	Category     *models.Category `json:"category"`
	AliasesAdded int              `json:"aliasesAdded"`
}

// MergeAliases folds aliases into the category's set. Labels claimed by
// another category reject the whole merge.
func (s *service) MergeAliases(ctx context.Context, scope string, categoryID uuid.UUID, aliases []string) (*MergeAliasesResult, error) {
	categories, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var target *models.Category
	others := make([]*models.Category, 0, len(categories))
	for i := range categories {
		category := &categories[i]
		if category.ID == categoryID {
			target = category
			continue
		}
		others = append(others, category)
	}
	if target == nil {
		return nil, errors.New(errors.CodeNotFound, "category not found")
	}

	added := 0
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		for _, other := range others {
			if hasLabel(other, alias) {
				return nil, errors.New(errors.CodeConflict,
					fmt.Sprintf("label already mapped to category %q", other.Name))
			}
		}
		if hasLabel(target, alias) {
			continue
		}
		target.RawLabelAliases = append(target.RawLabelAliases, alias)
		added++
	}

	if added > 0 {
		if err := s.repo.UpdateAliases(ctx, target.ID, target.RawLabelAliases); err != nil {
			return nil, err
		}
	}

	return &MergeAliasesResult{Category: target, AliasesAdded: added}, nil
}

func findByID(categories []models.Category, id uuid.UUID) *models.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

func hasLabel(category *models.Category, label string) bool {
	if strings.EqualFold(strings.TrimSpace(category.Name), label) {
		return true
	}
	for _, alias := range category.RawLabelAliases {
		if strings.EqualFold(strings.TrimSpace(alias), label) {
			return true
		}
	}
	return false
}
