// Package resolve links parsed records to tracked accounts and derives
// the stored legs of each record with their amount signs fixed. It is
// pure: no store access, no side effects.
//
// Sign contract: a primary-side link keeps the raw amount for assets
// and negates it for liability types; a split-side link negates it
// regardless of type. Asset balances are the plain sum of resolved
// amounts; liability balances are the negated sum, so owed money reads
// as a negative balance and the aggregator buckets its absolute value.
package resolve

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/internal/parser"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// Index answers case-insensitive, trimmed label lookups against every
// tracked account's name and alias set. Built once per import run.
type Index struct {
	byLabel map[string]*models.Account
}

// NewIndex indexes accounts by normalized name and aliases. On a label
// collision the first account wins.
func NewIndex(accounts []models.Account) *Index {
	ix := &Index{byLabel: make(map[string]*models.Account)}
	for i := range accounts {
		account := &accounts[i]
		ix.add(account.Name, account)
		for _, alias := range account.RawLabelAliases {
			ix.add(alias, account)
		}
	}
	return ix
}

func (ix *Index) add(label string, account *models.Account) {
	key := normalizeLabel(label)
	if key == "" {
		return
	}
	if _, taken := ix.byLabel[key]; !taken {
		ix.byLabel[key] = account
	}
}

// Lookup resolves a raw label to a tracked account.
func (ix *Index) Lookup(label string) (*models.Account, bool) {
	account, ok := ix.byLabel[normalizeLabel(label)]
	return account, ok
}

// Size reports how many distinct labels are indexed.
func (ix *Index) Size() int {
	return len(ix.byLabel)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// TypeRules is the user-configured raw-type-hint table, consulted before
// the sign heuristic when classifying an unlinked record.
type TypeRules struct {
	hints map[string]enums.TransactionType
}

// NewTypeRules builds the table, keeping only income/expense targets.
func NewTypeRules(hints map[string]enums.TransactionType) TypeRules {
	rules := TypeRules{hints: make(map[string]enums.TransactionType, len(hints))}
	for hint, typ := range hints {
		if typ != enums.TransactionTypeIncome && typ != enums.TransactionTypeExpense {
			continue
		}
		if key := normalizeLabel(hint); key != "" {
			rules.hints[key] = typ
		}
	}
	return rules
}

func (r TypeRules) Lookup(hint string) (enums.TransactionType, bool) {
	typ, ok := r.hints[normalizeLabel(hint)]
	return typ, ok
}

// Leg is one stored transaction derived from a record. A record linked
// to a balance-sheet account yields a transfer leg, plus a category leg
// when its counter-label is not account-linked; an unlinked record
// yields a single income/expense leg.
type Leg struct {
	AccountID      *uuid.UUID
	Amount         decimal.Decimal
	Type           enums.TransactionType
	LinkedViaSplit bool
}

// ResolveLegs derives the legs of one non-holding record.
//
// The primary label is tried against the account index first, then the
// split label. A split-side link negates the raw amount; a primary-side
// link keeps it for asset accounts and negates it for liability types.
// Any account link forces the leg to transfer, so a double entry never
// counts as both a balance movement and an income/expense event. The
// unlinked side, when present, becomes the income/expense leg with its
// sign set by convention: expenses negative, income positive.
func ResolveLegs(rec parser.Record, ix *Index, rules TypeRules) []Leg {
	primary, primaryLinked := ix.Lookup(rec.RawAccountLabel)
	var split *models.Account
	splitLinked := false
	if rec.RawSplitLabel != "" {
		split, splitLinked = ix.Lookup(rec.RawSplitLabel)
	}

	switch {
	case primaryLinked:
		amount := rec.Amount
		if primary.AccountType.IsLiability() {
			amount = amount.Neg()
		}
		legs := []Leg{{
			AccountID: &primary.ID,
			Amount:    amount,
			Type:      enums.TransactionTypeTransfer,
		}}
		// the mirrored row in the export carries the counter-transfer
		// when both sides are tracked
		if rec.RawSplitLabel != "" && !splitLinked {
			legs = append(legs, categoryLeg(rec, rules, rec.Amount))
		}
		return legs

	case splitLinked:
		return []Leg{
			{
				AccountID:      &split.ID,
				Amount:         rec.Amount.Neg(),
				Type:           enums.TransactionTypeTransfer,
				LinkedViaSplit: true,
			},
			categoryLeg(rec, rules, rec.Amount.Neg()),
		}

	default:
		return []Leg{categoryLeg(rec, rules, rec.Amount)}
	}
}

// categoryLeg builds the income/expense side. balanceSide is the raw
// amount as seen from the balance-sheet perspective; money leaving an
// account reads as an expense when no hint rule says otherwise.
func categoryLeg(rec parser.Record, rules TypeRules, balanceSide decimal.Decimal) Leg {
	typ, ok := rules.Lookup(rec.RawTypeHint)
	if !ok {
		if balanceSide.IsNegative() {
			typ = enums.TransactionTypeExpense
		} else {
			typ = enums.TransactionTypeIncome
		}
	}

	amount := rec.Amount.Abs()
	if typ == enums.TransactionTypeExpense {
		amount = amount.Neg()
	}
	return Leg{Amount: amount, Type: typ}
}
