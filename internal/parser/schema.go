package parser

import (
	"strings"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// DetectSchema infers the export family from header content. A split
// column marks a general-ledger extract; symbol+quantity marks a
// brokerage statement; date+amount+description marks a flat list.
func DetectSchema(t *Table) (enums.SourceSchema, error) {
	header, _ := findHeaderRow(t.Rows)
	if header == nil {
		return "", errors.New(errors.CodeValidation, "unable to detect source schema")
	}

	cols := indexHeader(header)
	switch {
	case cols.has("symbol", "ticker") && cols.has("quantity", "shares", "qty"):
		return enums.SourceSchemaBrokerageHolding, nil
	case cols.has("split"):
		return enums.SourceSchemaGeneralLedger, nil
	case cols.has("date", "transaction date", "posted date") &&
		(cols.has("amount") || cols.has("debit") || cols.has("credit")):
		return enums.SourceSchemaFlatTransaction, nil
	default:
		return "", errors.New(errors.CodeValidation, "unable to detect source schema")
	}
}

// findHeaderRow returns the first row that looks like a column header:
// at least two non-empty cells with at least one known column name.
func findHeaderRow(rows [][]string) ([]string, int) {
	for i, row := range rows {
		cols := indexHeader(row)
		if len(cols) < 2 {
			continue
		}
		if cols.has("date", "transaction date", "posted date", "symbol", "ticker", "split", "amount", "debit") {
			return row, i
		}
	}
	return nil, -1
}

// headerIndex maps normalized column names to their position.
type headerIndex map[string]int

func indexHeader(row []string) headerIndex {
	cols := make(headerIndex)
	for i, cell := range row {
		name := normalizeCell(cell)
		if name == "" {
			continue
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

// column returns the position of the first matching name, or -1.
func (h headerIndex) column(names ...string) int {
	for _, name := range names {
		if i, ok := h[name]; ok {
			return i
		}
	}
	return -1
}

func (h headerIndex) has(names ...string) bool {
	return h.column(names...) >= 0
}

func normalizeCell(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}

// cellAt returns the trimmed cell at index i, tolerating short rows.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
