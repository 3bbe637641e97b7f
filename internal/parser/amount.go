package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// currencyRunes are stripped before numeric parsing.
const currencyRunes = "$€£¥"

// ParseAmount parses a ledger amount tolerating thousands separators,
// currency symbols, surrounding whitespace, and parenthesized negatives.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencyRunes, r) || r == ',' || r == ' ' {
			return -1
		}
		return r
	}, cleaned)

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", strings.TrimSpace(raw))
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}

// recordDateLayouts are tried in order. All layouts are zone-free so a
// date string names the same calendar day in every process timezone.
var recordDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// ParseRecordDate parses a calendar date from any supported layout.
func ParseRecordDate(raw string) (types.Date, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return types.Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return types.DateOf(t), nil
		}
	}
	return types.Date{}, fmt.Errorf("invalid date %q", cleaned)
}
