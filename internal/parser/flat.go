package parser

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// parseFlat reads a one-row-per-transaction extract. Flat files carry a
// single account label and no split; amounts follow the bank convention
// (money out negative), which already matches the asset perspective.
func parseFlat(t *Table) ([]Record, []RowError, int) {
	header, headerAt := findHeaderRow(t.Rows)
	cols := indexHeader(header)

	dateCol := cols.column("date", "transaction date", "posted date")
	amountCol := cols.column("amount")
	debitCol := cols.column("debit", "withdrawal")
	creditCol := cols.column("credit", "deposit")
	descCol := cols.column("description", "payee", "name", "merchant")
	memoCol := cols.column("memo", "notes")
	accountCol := cols.column("account", "account name")
	typeCol := cols.column("type", "transaction type")

	var (
		records   []Record
		rowErrors []RowError
		skipped   int
	)

	for i := headerAt + 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		line := i + 1
		if isBlankRow(row) {
			continue
		}

		date, err := ParseRecordDate(cellAt(row, dateCol))
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: err.Error()})
			skipped++
			continue
		}

		amount, err := flatAmount(row, amountCol, debitCol, creditCol)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: err.Error()})
			skipped++
			continue
		}

		records = append(records, Record{
			Date:            date,
			Amount:          amount,
			Description:     cellAt(row, descCol),
			Memo:            cellAt(row, memoCol),
			RawAccountLabel: cellAt(row, accountCol),
			RawTypeHint:     cellAt(row, typeCol),
			SourceSchema:    enums.SourceSchemaFlatTransaction,
			Line:            line,
		})
	}

	return records, rowErrors, skipped
}

// flatAmount reads the amount column, falling back to a debit/credit
// pair. Bank extracts list debits as money out, so the debit side is
// negated.
func flatAmount(row []string, amountCol, debitCol, creditCol int) (amount decimal.Decimal, err error) {
	if cell := cellAt(row, amountCol); cell != "" {
		return ParseAmount(cell)
	}
	if cell := cellAt(row, debitCol); cell != "" {
		value, parseErr := ParseAmount(cell)
		if parseErr != nil {
			return decimal.Zero, parseErr
		}
		return value.Neg(), nil
	}
	if cell := cellAt(row, creditCol); cell != "" {
		return ParseAmount(cell)
	}
	return decimal.Zero, fmt.Errorf("missing amount")
}
