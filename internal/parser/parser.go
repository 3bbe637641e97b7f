// Package parser converts raw tabular ledger exports into typed candidate
// records for one of three schemas: general-ledger entry, flat
// transaction, brokerage holding. Parsing is tolerant: bad rows are
// collected and skipped, and only a file yielding zero usable records
// fails outright.
package parser

import (
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// Parse decodes content and produces records for the declared schema,
// inferring the schema from the header when none is declared.
func Parse(filename string, content []byte, declared enums.SourceSchema) (*Result, error) {
	table, err := ReadTable(filename, content)
	if err != nil {
		return nil, err
	}

	schema := declared
	if schema == "" {
		schema, err = DetectSchema(table)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Schema: schema}
	switch schema {
	case enums.SourceSchemaGeneralLedger:
		result.Records, result.RowErrors, result.Skipped = parseGeneralLedger(table)
	case enums.SourceSchemaFlatTransaction:
		result.Records, result.RowErrors, result.Skipped = parseFlat(table)
	case enums.SourceSchemaBrokerageHolding:
		result.Holdings, result.RowErrors, result.Skipped = parseHoldings(table)
	default:
		return nil, errors.New(errors.CodeValidation, "unsupported source schema")
	}

	if len(result.Records) == 0 && len(result.Holdings) == 0 {
		return nil, errors.New(errors.CodeValidation, "no parsable records").
			WithDetails(map[string]any{"rowErrors": result.RowErrors, "skipped": result.Skipped})
	}
	return result, nil
}
