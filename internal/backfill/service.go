// Package backfill assigns categories to uncategorized income and
// expense transactions by raw label, creating categories for labels it
// can classify. A dry run reports the would-be changes without writing.
package backfill

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LabelAction says what the run did, or would do, for one label.
type LabelAction string

const (
	ActionMatched      LabelAction = "matched_existing"
	ActionCreated      LabelAction = "created_category"
	ActionUnclassified LabelAction = "unclassified"
)

// LabelOutcome is the per-label audit line of a run.
type LabelOutcome struct {
	Label        string             `json:"label"`
	Transactions int                `json:"transactions"`
	Action       LabelAction        `json:"action"`
	CategoryID   *uuid.UUID         `json:"categoryId,omitempty"`
	CategoryName string             `json:"categoryName,omitempty"`
	CategoryType enums.CategoryType `json:"categoryType,omitempty"`
}

// Report summarizes one run. Assigned counts rows actually updated, so
// it stays zero on a dry run; the per-label Transactions counts carry
// the candidates either way.
type Report struct {
	Scope             string         `json:"scope"`
	DryRun            bool           `json:"dryRun"`
	Labels            []LabelOutcome `json:"labels"`
	Assigned          int64          `json:"assigned"`
	CreatedCategories int            `json:"createdCategories"`
	Unclassified      int            `json:"unclassified"`
}

// Service runs the category backfill for one scope.
type Service interface {
	Run(ctx context.Context, scope string, dryRun bool) (*Report, error)
}

type service struct {
	transactions transactions.Repository
	categories   categories.Repository
	tx           txRunner
	logg         *logger.Logger
}

// NewService validates the wiring and builds the backfill service.
func NewService(txns transactions.Repository, cats categories.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if txns == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if cats == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{transactions: txns, categories: cats, tx: tx, logg: logg}, nil
}

// Run walks every label carried by uncategorized non-transfer rows,
// resolving against existing categories first and classifying the rest.
// A label that fails to persist is reported and skipped; the run
// continues with the remaining labels.
func (s *service) Run(ctx context.Context, scope string, dryRun bool) (*Report, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, errors.New(errors.CodeValidation, "user scope is required")
	}

	byLabel, err := s.transactions.UncategorizedByLabel(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load uncategorized labels: %w", err)
	}

	report := &Report{Scope: scope, DryRun: dryRun}
	if len(byLabel) == 0 {
		return report, nil
	}

	existing, err := s.categories.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	resolver := categories.NewResolver(existing)

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var (
		errs    error
		created []models.Category
	)
	for _, label := range labels {
		ids := byLabel[label]
		outcome := LabelOutcome{Label: label, Transactions: len(ids)}

		if category, ok := resolver.Resolve(label, ""); ok {
			outcome.Action = ActionMatched
			outcome.CategoryID = &category.ID
			outcome.CategoryName = category.Name
			outcome.CategoryType = category.CategoryType
			if !dryRun {
				assigned, err := s.transactions.AssignCategory(ctx, scope, ids, category.ID)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("label %s: %w", label, err))
					continue
				}
				report.Assigned += assigned
			}
			report.Labels = append(report.Labels, outcome)
			continue
		}

		history, err := s.transactions.TypesForLabel(ctx, scope, label)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("label %s: %w", label, err))
			continue
		}
		class, ok := categories.ClassifyLabel(label, history)
		if !ok {
			outcome.Action = ActionUnclassified
			report.Unclassified++
			report.Labels = append(report.Labels, outcome)
			continue
		}

		category := models.Category{
			ID:           uuid.New(),
			UserScope:    scope,
			Name:         categoryName(label),
			CategoryType: class,
		}
		// keep the raw label resolvable once the code prefix is stripped
		if !strings.EqualFold(category.Name, strings.TrimSpace(label)) {
			category.RawLabelAliases = pq.StringArray{label}
		}

		if !dryRun {
			err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				if err := s.categories.WithTx(tx).Create(ctx, &category); err != nil {
					return err
				}
				assigned, err := s.transactions.WithTx(tx).AssignCategory(ctx, scope, ids, category.ID)
				if err != nil {
					return err
				}
				report.Assigned += assigned
				return nil
			})
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("label %s: %w", label, err))
				continue
			}
		}

		outcome.Action = ActionCreated
		outcome.CategoryID = &category.ID
		outcome.CategoryName = category.Name
		outcome.CategoryType = class
		report.CreatedCategories++
		report.Labels = append(report.Labels, outcome)

		// later labels may resolve to the category this one created
		created = append(created, category)
		resolver = categories.NewResolver(append(append([]models.Category{}, existing...), created...))
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_scope":         scope,
		"dry_run":            dryRun,
		"labels":             len(labels),
		"assigned":           report.Assigned,
		"created_categories": report.CreatedCategories,
		"unclassified":       report.Unclassified,
	})
	s.logg.Info(logCtx, "category backfill complete")

	return report, errs
}

// categoryName strips a leading chart-of-accounts code from a label, so
// "5010 - Office Supplies" creates the category "Office Supplies". A
// digit run without a separator is part of the name and kept.
func categoryName(label string) string {
	trimmed := strings.TrimSpace(label)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i == len(trimmed) {
		return trimmed
	}
	rest := strings.TrimLeft(trimmed[i:], " \t:-.·")
	if rest == "" || len(rest) == len(trimmed)-i {
		return trimmed
	}
	return rest
}
