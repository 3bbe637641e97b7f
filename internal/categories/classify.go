package categories

import (
	"strings"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// ClassifyLabel infers income/expense for a label the backfill job has
// never seen. Labels carrying a chart-of-accounts numeric prefix follow
// the code convention; otherwise the majority of already-recorded
// transaction types for the label decides. No classification is returned
// for balance-sheet codes, prefix-less labels without history, or ties.
func ClassifyLabel(label string, history []enums.TransactionType) (enums.CategoryType, bool) {
	if class, ok := classifyByPrefix(label); ok {
		return class, true
	}
	return classifyByHistory(history)
}

// classifyByPrefix reads a leading account-code digit run: 4xxx is
// income, 5xxx-9xxx is expense, 1xxx-3xxx is asset/liability/equity and
// never auto-classified. The run must end the label or be followed by a
// separator, so "401k Match" is not mistaken for a code.
func classifyByPrefix(label string) (enums.CategoryType, bool) {
	trimmed := strings.TrimSpace(label)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return "", false
	}
	if i < len(trimmed) {
		switch trimmed[i] {
		case ' ', '\t', '-', ':', '.':
		default:
			return "", false
		}
	}

	switch trimmed[0] {
	case '4':
		return enums.CategoryTypeIncome, true
	case '5', '6', '7', '8', '9':
		return enums.CategoryTypeExpense, true
	default:
		return "", false
	}
}

func classifyByHistory(history []enums.TransactionType) (enums.CategoryType, bool) {
	income, expense := 0, 0
	for _, typ := range history {
		switch typ {
		case enums.TransactionTypeIncome:
			income++
		case enums.TransactionTypeExpense:
			expense++
		}
	}
	switch {
	case income > expense:
		return enums.CategoryTypeIncome, true
	case expense > income:
		return enums.CategoryTypeExpense, true
	default:
		return "", false
	}
}
