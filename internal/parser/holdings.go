package parser

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// parseHoldings reads a brokerage position statement. A malformed row is
// collected and skipped like any other parse error; the file only fails
// when nothing valid remains. Rows missing an as-of column fall back to
// today, since some brokerages date the statement in the filename only.
func parseHoldings(t *Table) ([]HoldingRecord, []RowError, int) {
	header, headerAt := findHeaderRow(t.Rows)
	cols := indexHeader(header)

	symbolCol := cols.column("symbol", "ticker")
	quantityCol := cols.column("quantity", "shares", "qty")
	costCol := cols.column("cost basis", "cost", "total cost")
	priceCol := cols.column("price", "current price", "last price")
	valueCol := cols.column("value", "market value", "current value")
	asOfCol := cols.column("as of", "as of date", "date")

	fallbackAsOf := types.Today()

	var (
		holdings  []HoldingRecord
		rowErrors []RowError
		skipped   int
	)

	for i := headerAt + 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		line := i + 1
		if isBlankRow(row) {
			continue
		}

		symbol := cellAt(row, symbolCol)
		if symbol == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: "missing symbol"})
			skipped++
			continue
		}
		if isTotalRow(symbol) {
			continue
		}

		quantity, err := ParseAmount(cellAt(row, quantityCol))
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: fmt.Sprintf("quantity: %v", err)})
			skipped++
			continue
		}
		if quantity.IsNegative() {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: "negative quantity"})
			skipped++
			continue
		}

		asOf := fallbackAsOf
		if cell := cellAt(row, asOfCol); cell != "" {
			parsed, err := ParseRecordDate(cell)
			if err != nil {
				rowErrors = append(rowErrors, RowError{Line: line, Reason: err.Error()})
				skipped++
				continue
			}
			asOf = parsed
		}

		costBasis := optionalAmount(row, costCol)
		price := optionalAmount(row, priceCol)
		value := optionalAmount(row, valueCol)
		if value.IsZero() && !price.IsZero() {
			value = price.Mul(quantity)
		}

		holdings = append(holdings, HoldingRecord{
			Symbol:      symbol,
			Quantity:    quantity,
			CostBasis:   costBasis,
			Price:       price,
			MarketValue: value,
			AsOf:        asOf,
			Line:        line,
		})
	}

	return holdings, rowErrors, skipped
}

// optionalAmount parses a cell that may be absent or blank; unparsable
// optional cells degrade to zero rather than failing the row.
func optionalAmount(row []string, col int) decimal.Decimal {
	cell := cellAt(row, col)
	if cell == "" {
		return decimal.Zero
	}
	value, err := ParseAmount(cell)
	if err != nil {
		return decimal.Zero
	}
	return value
}
