// Package accounts manages tracked balance-sheet accounts: listing,
// alias mapping, balance computation, and alias suggestions for unmapped
// labels.
package accounts

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/internal/match"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// Service defines account operations beyond repository reads.
type Service interface {
	List(ctx context.Context, scope string) ([]models.Account, error)
	Balances(ctx context.Context, scope string) ([]networth.AccountBalance, error)
	Create(ctx context.Context, scope string, input CreateInput) (*models.Account, error)
	Update(ctx context.Context, scope string, accountID uuid.UUID, input UpdateInput) (*models.Account, error)
	AddAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error)
	MergeAliases(ctx context.Context, scope string, accountID uuid.UUID, aliases []string) (*MergeAliasesResult, error)
	RemoveAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error)
	Suggest(ctx context.Context, scope, label string) ([]AliasSuggestion, error)
	SuggestUnlinked(ctx context.Context, scope string) ([]LabelSuggestions, error)
}

type service struct {
	repo      Repository
	threshold float64
}

// NewService wires an accounts service. threshold bounds which alias
// suggestions are worth returning.
func NewService(repo Repository, threshold float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold %f out of range", threshold)
	}
	return &service{repo: repo, threshold: threshold}, nil
}

func (s *service) List(ctx context.Context, scope string) ([]models.Account, error) {
	return s.repo.ListByScope(ctx, scope)
}

// CreateInput is the validated payload for a new account.
type CreateInput struct {
	Name        string
	AccountType enums.AccountType
}

func (s *service) Create(ctx context.Context, scope string, input CreateInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "account name must not be empty")
	}
	if !input.AccountType.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid account type")
	}

	account := &models.Account{
		ID:          uuid.New(),
		UserScope:   scope,
		Name:        name,
		AccountType: input.AccountType,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "uniq_accounts_scope_name") {
			return nil, errors.New(errors.CodeConflict, "account name already in use")
		}
		return nil, err
	}
	return account, nil
}

// UpdateInput holds optional mutation values. ClearOverride drops the
// market-value override; it cannot be combined with a new override value.
type UpdateInput struct {
	Name                *string
	AccountType         *enums.AccountType
	IsActive            *bool
	MarketValueOverride *decimal.Decimal
	ClearOverride       bool
}

func (s *service) Update(ctx context.Context, scope string, accountID uuid.UUID, input UpdateInput) (*models.Account, error) {
	if input.ClearOverride && input.MarketValueOverride != nil {
		return nil, errors.New(errors.CodeValidation, "cannot set and clear the override together")
	}

	account, err := s.repo.FindByID(ctx, scope, accountID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "account not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "account name must not be empty")
		}
		account.Name = name
	}
	if input.AccountType != nil {
		if !input.AccountType.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid account type")
		}
		account.AccountType = *input.AccountType
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	if input.MarketValueOverride != nil {
		account.MarketValueOverride = input.MarketValueOverride
	}
	if input.ClearOverride {
		account.MarketValueOverride = nil
	}

	if err := s.repo.Update(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "uniq_accounts_scope_name") {
			return nil, errors.New(errors.CodeConflict, "account name already in use")
		}
		return nil, err
	}
	return account, nil
}

// Balances resolves every account's current balance: the signed
// transaction sum, negated for liabilities so owed money reads negative,
// with any market-value override taking precedence.
func (s *service) Balances(ctx context.Context, scope string) ([]networth.AccountBalance, error) {
	accounts, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	sums, err := s.repo.SumResolvedAmounts(ctx, scope)
	if err != nil {
		return nil, err
	}

	balances := make([]networth.AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balance := sums[account.ID]
		if account.AccountType.IsLiability() {
			balance = balance.Neg()
		}
		if account.MarketValueOverride != nil {
			balance = *account.MarketValueOverride
		}
		balances = append(balances, networth.AccountBalance{Account: account, Balance: balance})
	}
	return balances, nil
}

func (s *service) AddAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, errors.New(errors.CodeValidation, "alias must not be empty")
	}

	accounts, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var target *models.Account
	for i := range accounts {
		account := &accounts[i]
		if account.ID == accountID {
			target = account
			continue
		}
		if hasLabel(account, alias) {
			return nil, errors.New(errors.CodeConflict,
				fmt.Sprintf("label already mapped to account %q", account.Name))
		}
	}
	if target == nil {
		return nil, errors.New(errors.CodeNotFound, "account not found")
	}
	if hasLabel(target, alias) {
		return target, nil
	}

	target.RawLabelAliases = append(target.RawLabelAliases, alias)
	if err := s.repo.UpdateAliases(ctx, target.ID, target.RawLabelAliases); err != nil {
		return nil, err
	}
	return target, nil
}

// MergeAliasesResult reports the merged account and how many unlinked
// transactions the merge picked up.
type MergeAliasesResult struct {
	Account            *models.Account `json:"account"`
	AliasesAdded       int             `json:"aliasesAdded"`
	TransactionsLinked int64           `json:"transactionsLinked"`
}

// MergeAliases folds aliases into the account's set, then re-links every
// unlinked transaction whose raw label now maps here. Labels claimed by
// another account reject the whole merge.
func (s *service) MergeAliases(ctx context.Context, scope string, accountID uuid.UUID, aliases []string) (*MergeAliasesResult, error) {
	accounts, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var target *models.Account
	others := make([]*models.Account, 0, len(accounts))
	for i := range accounts {
		account := &accounts[i]
		if account.ID == accountID {
			target = account
			continue
		}
		others = append(others, account)
	}
	if target == nil {
		return nil, errors.New(errors.CodeNotFound, "account not found")
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
					fmt.Sprintf("label already mapped to account %q", other.Name))
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

	labels := append([]string{target.Name}, target.RawLabelAliases...)
	linked, err := s.repo.LinkUnlinkedByLabels(ctx, scope, target.ID, labels)
	if err != nil {
		return nil, err
	}

	return &MergeAliasesResult{
		Account:            target,
		AliasesAdded:       added,
		TransactionsLinked: linked,
	}, nil
}

func (s *service) RemoveAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, scope, accountID)
	if err != nil {
		return nil, err
	}

	kept := account.RawLabelAliases[:0]
	removed := false
	for _, existing := range account.RawLabelAliases {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(alias)) {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		return nil, errors.New(errors.CodeNotFound, "alias not mapped to this account")
	}

	account.RawLabelAliases = kept
	if err := s.repo.UpdateAliases(ctx, account.ID, account.RawLabelAliases); err != nil {
		return nil, err
	}
	return account, nil
}

func hasLabel(account *models.Account, label string) bool {
	if strings.EqualFold(strings.TrimSpace(account.Name), label) {
		return true
	}
	for _, alias := range account.RawLabelAliases {
		if strings.EqualFold(strings.TrimSpace(alias), label) {
			return true
		}
	}
	return false
}

// AliasSuggestion ranks one account as a likely home for an unmapped
// raw label.
type AliasSuggestion struct {
	AccountID uuid.UUID `json:"accountId"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
}

// Suggest scores label against every account's name and aliases and
// returns accounts above the threshold, best first.
func (s *service) Suggest(ctx context.Context, scope, label string) ([]AliasSuggestion, error) {
	if strings.TrimSpace(label) == "" {
		return nil, errors.New(errors.CodeValidation, "label must not be empty")
	}

	accounts, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.scoreLabel(label, accounts), nil
}

func (s *service) scoreLabel(label string, accounts []models.Account) []AliasSuggestion {
	var suggestions []AliasSuggestion
	for _, account := range accounts {
		best := match.Score(label, account.Name)
		for _, alias := range account.RawLabelAliases {
			if score := match.Score(label, alias); score > best {
				best = score
			}
		}
		if best >= s.threshold {
			suggestions = append(suggestions, AliasSuggestion{
				AccountID: account.ID,
				Name:      account.Name,
				Score:     best,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Name < suggestions[j].Name
	})
	return suggestions
}

// LabelSuggestions pairs one unlinked raw label with its candidate
// accounts.
type LabelSuggestions struct {
	Label       string            `json:"label"`
	Suggestions []AliasSuggestion `json:"suggestions"`
}

// SuggestUnlinked scores every distinct unlinked raw label against the
// scope's accounts. Labels with no candidate above the threshold are
// omitted.
func (s *service) SuggestUnlinked(ctx context.Context, scope string) ([]LabelSuggestions, error) {
	labels, err := s.repo.DistinctUnlinkedLabels(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, nil
	}

	accounts, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var results []LabelSuggestions
	for _, label := range labels {
		suggestions := s.scoreLabel(label, accounts)
		if len(suggestions) == 0 {
			continue
		}
		results = append(results, LabelSuggestions{Label: label, Suggestions: suggestions})
	}
	return results, nil
}
