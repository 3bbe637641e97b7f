package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// glColumns carries resolved column positions for a general-ledger extract.
type glColumns struct {
	date    int
	amount  int
	debit   int
	credit  int
	desc    int
	memo    int
	split   int
	typ     int
	account int
}

// parseGeneralLedger reconstructs records from a section-grouped GL
// extract. Rows without a date are structural: a single-cell row opens an
// account section, a "Total ..." row closes it, and blanks are skipped. Data
// rows inherit the current section label unless an explicit account
// column is present. The GL sign convention (debit positive, credit
// negative) is preserved; sign resolution happens downstream.
func parseGeneralLedger(t *Table) ([]Record, []RowError, int) {
	header, headerAt := findHeaderRow(t.Rows)
	cols := indexHeader(header)
	gc := glColumns{
		date:    cols.column("date"),
		amount:  cols.column("amount"),
		debit:   cols.column("debit"),
		credit:  cols.column("credit"),
		desc:    cols.column("name", "description", "payee"),
		memo:    cols.column("memo", "memo/description", "notes"),
		split:   cols.column("split"),
		typ:     cols.column("type", "transaction type"),
		account: cols.column("account", "account full name"),
	}

	var (
		records   []Record
		rowErrors []RowError
		skipped   int
		section   string
	)

	for i := headerAt + 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		line := i + 1
		if isBlankRow(row) {
			continue
		}

		dateCell := cellAt(row, gc.date)
		if dateCell == "" {
			if label, ok := structuralLabel(row); ok {
				if isTotalRow(label) {
					section = ""
				} else {
					section = label
				}
			}
			continue
		}

		date, err := ParseRecordDate(dateCell)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: err.Error()})
			skipped++
			continue
		}

		amount, err := rowAmount(row, gc.amount, gc.debit, gc.credit)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: err.Error()})
			skipped++
			continue
		}

		label := cellAt(row, gc.account)
		if label == "" {
			label = section
		}
		if label == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: "no account label"})
			skipped++
			continue
		}

		records = append(records, Record{
			Date:            date,
			Amount:          amount,
			Description:     cellAt(row, gc.desc),
			Memo:            cellAt(row, gc.memo),
			RawAccountLabel: label,
			RawSplitLabel:   cellAt(row, gc.split),
			RawTypeHint:     cellAt(row, gc.typ),
			SourceSchema:    enums.SourceSchemaGeneralLedger,
			Line:            line,
		})
	}

	return records, rowErrors, skipped
}

// rowAmount reads the amount column, falling back to a debit/credit pair.
// GL extracts carry debits positive and credits negative.
func rowAmount(row []string, amountCol, debitCol, creditCol int) (decimal.Decimal, error) {
	if cell := cellAt(row, amountCol); cell != "" {
		return ParseAmount(cell)
	}
	if cell := cellAt(row, debitCol); cell != "" {
		return ParseAmount(cell)
	}
	if cell := cellAt(row, creditCol); cell != "" {
		value, err := ParseAmount(cell)
		if err != nil {
			return decimal.Zero, err
		}
		return value.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("missing amount")
}

// structuralLabel returns the row's only non-empty cell, when there is
// exactly one, or the first cell of a subtotal row.
func structuralLabel(row []string) (string, bool) {
	var label string
	count := 0
	for _, cell := range row {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			count++
			if label == "" {
				label = trimmed
			}
		}
	}
	if count == 1 {
		return label, true
	}
	if count > 1 && isTotalRow(label) {
		return label, true
	}
	return "", false
}

func isTotalRow(label string) bool {
	lowered := strings.ToLower(label)
	return lowered == "total" || strings.HasPrefix(lowered, "total ")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
