package parser

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// Table is raw tabular content decoded from a delimited-text or
// spreadsheet file, before any schema interpretation.
type Table struct {
	Filename string
	Rows     [][]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable decodes file content into rows. The extension picks the
// decoder: .xlsx goes through the spreadsheet reader, everything else is
// treated as delimited text with the delimiter sniffed from the first line.
func ReadTable(filename string, content []byte) (*Table, error) {
	if len(content) == 0 {
		return nil, errors.New(errors.CodeValidation, "empty file")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".xlsx" || ext == ".xlsm" {
		return readSpreadsheet(filename, content)
	}
	return readDelimited(filename, content)
}

func readSpreadsheet(filename string, content []byte) (*Table, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "unreadable spreadsheet")
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.CodeValidation, "spreadsheet has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "unreadable sheet")
	}
	return &Table{Filename: filename, Rows: rows}, nil
}

func readDelimited(filename string, content []byte) (*Table, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a single mangled line should not lose the file
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.CodeValidation, "no rows in file")
	}
	return &Table{Filename: filename, Rows: rows}, nil
}

// sniffDelimiter picks the delimiter with the most hits on the first
// non-empty line. Comma wins ties.
func sniffDelimiter(content []byte) rune {
	line := firstLine(content)
	best, bestCount := ',', strings.Count(line, ",")
	for _, candidate := range []rune{'\t', ';'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func firstLine(content []byte) string {
	for _, raw := range bytes.Split(content, []byte{'\n'}) {
		line := strings.TrimSpace(string(raw))
		if line != "" {
			return line
		}
	}
	return ""
}
