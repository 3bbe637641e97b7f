// Package transactions serves stored-transaction reads and the explicit
// mutations the pipeline allows: manual categorization and confirmed
// duplicate resolution.
package transactions

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.Category, error)
}

// Service defines transaction-level operations beyond repository reads.
type Service interface {
	List(ctx context.Context, scope string, params pagination.Params, filters ListFilters) (*Page, error)
	Categorize(ctx context.Context, scope string, id uuid.UUID, categoryID *uuid.UUID) error
	UnmappedLabels(ctx context.Context, scope string, limit int) ([]LabelCount, error)
	PotentialDuplicates(ctx context.Context, scope string) ([]DuplicatePair, error)
	ResolveDuplicates(ctx context.Context, scope string, input ResolveDuplicatesInput) (*ResolveDuplicatesResult, error)
}

type service struct {
	repo       Repository
	categories categoryFinder
	tx         txRunner
}

// NewService wires a transactions service.
func NewService(repo Repository, categories categoryFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, categories: categories, tx: tx}, nil
}

// Page is one listing page with the encoded cursor for the next one.
type Page struct {
	Transactions []models.Transaction `json:"transactions"`
	NextCursor   string               `json:"nextCursor,omitempty"`
}

func (s *service) List(ctx context.Context, scope string, params pagination.Params, filters ListFilters) (*Page, error) {
	txns, next, err := s.repo.List(ctx, scope, params, filters)
	if err != nil {
		return nil, err
	}

	page := &Page{Transactions: txns}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) Categorize(ctx context.Context, scope string, id uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, scope, *categoryID); err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "category not found")
			}
			return err
		}
	}

	err := s.repo.UpdateCategory(ctx, scope, id, categoryID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New(errors.CodeNotFound, "transaction not found")
	}
	return err
}

func (s *service) UnmappedLabels(ctx context.Context, scope string, limit int) ([]LabelCount, error) {
	return s.repo.ListUnmappedLabels(ctx, scope, limit)
}

// DuplicatePair is one unresolved flag with both sides loaded for review.
type DuplicatePair struct {
	Flag     models.PotentialDuplicate `json:"flag"`
	Incoming *models.Transaction       `json:"incoming,omitempty"`
	Existing *models.Transaction       `json:"existing,omitempty"`
}

func (s *service) PotentialDuplicates(ctx context.Context, scope string) ([]DuplicatePair, error) {
	flags, err := s.repo.ListPotentialDuplicates(ctx, scope, false)
	if err != nil {
		return nil, err
	}
	if len(flags) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(flags)*2)
	for _, flag := range flags {
		ids = append(ids, flag.TransactionID, flag.ExistingTransactionID)
	}
	txns, err := s.repo.FindByIDs(ctx, scope, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Transaction, len(txns))
	for i := range txns {
		byID[txns[i].ID] = &txns[i]
	}

	pairs := make([]DuplicatePair, 0, len(flags))
	for _, flag := range flags {
		pairs = append(pairs, DuplicatePair{
			Flag:     flag,
			Incoming: byID[flag.TransactionID],
			Existing: byID[flag.ExistingTransactionID],
		})
	}
	return pairs, nil
}

// ResolveDuplicatesInput lists the user's verdicts: DeleteIDs are
// confirmed duplicates to remove, KeepIDs are flagged transactions
// confirmed as legitimate.
type ResolveDuplicatesInput struct {
	DeleteIDs []uuid.UUID `json:"deleteIds"`
	KeepIDs   []uuid.UUID `json:"keepIds"`
}

// ResolveDuplicatesResult reports what the resolution changed.
type ResolveDuplicatesResult struct {
	Deleted  int64 `json:"deleted"`
	Reviewed int   `json:"reviewed"`
}

// ResolveDuplicates deletes the confirmed duplicates and marks every
// touched flag reviewed, in one transaction. Nothing is ever deleted
// without an explicit id in the input.
func (s *service) ResolveDuplicates(ctx context.Context, scope string, input ResolveDuplicatesInput) (*ResolveDuplicatesResult, error) {
	if len(input.DeleteIDs) == 0 && len(input.KeepIDs) == 0 {
		return nil, errors.New(errors.CodeValidation, "nothing to resolve")
	}

	result := &ResolveDuplicatesResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deleted, err := repo.DeleteByIDs(ctx, scope, input.DeleteIDs)
		if err != nil {
			return err
		}
		result.Deleted = deleted

		touched := append(append([]uuid.UUID{}, input.DeleteIDs...), input.KeepIDs...)
		if err := repo.ResolvePotentialDuplicates(ctx, scope, touched); err != nil {
			return err
		}
		result.Reviewed = len(touched)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
