package parser

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Record is one normalized ledger line item, post-parse and pre-persist.
// Amount carries the ledger-native sign; resolution happens downstream.
type Record struct {
	Date            types.Date
	Amount          decimal.Decimal
	Description     string
	Memo            string
	RawAccountLabel string
	RawSplitLabel   string
	RawTypeHint     string
	SourceSchema    enums.SourceSchema
	Line            int
}

// HoldingRecord is one brokerage position row. Holdings have no
// debit/credit concept and skip account/category resolution.
type HoldingRecord struct {
	Symbol      string
	Quantity    decimal.Decimal
	CostBasis   decimal.Decimal
	Price       decimal.Decimal
	MarketValue decimal.Decimal
	AsOf        types.Date
	Line        int
}

// RowError reports a row that could not be parsed. Row errors are
// collected, never fatal on their own.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of parsing one file.
type Result struct {
	Schema    enums.SourceSchema
	Records   []Record
	Holdings  []HoldingRecord
	RowErrors []RowError
	Skipped   int
}

// DateRange returns the [min,max] record date interval, used to scope the
// stored-fingerprint lookup. ok is false when there are no records.
func (r *Result) DateRange() (types.DateRange, bool) {
	if len(r.Records) == 0 {
		return types.DateRange{}, false
	}
	rng := types.DateRange{From: r.Records[0].Date, To: r.Records[0].Date}
	for _, rec := range r.Records[1:] {
		if rec.Date.Before(rng.From) {
			rng.From = rec.Date
		}
		if rec.Date.After(rng.To) {
			rng.To = rec.Date
		}
	}
	return rng, true
}
