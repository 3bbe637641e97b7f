package enums

import "fmt"

// SourceSchema identifies which export family a file was parsed as.
type SourceSchema string

const (
	SourceSchemaGeneralLedger    SourceSchema = "general_ledger"
	SourceSchemaFlatTransaction  SourceSchema = "flat_transaction"
	SourceSchemaBrokerageHolding SourceSchema = "brokerage_holding"
)

var validSourceSchemas = []SourceSchema{
	SourceSchemaGeneralLedger,
	SourceSchemaFlatTransaction,
	SourceSchemaBrokerageHolding,
}

// String returns the literal string for the schema.
func (s SourceSchema) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical source_schema enum.
func (s SourceSchema) IsValid() bool {
	for _, candidate := range validSourceSchemas {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourceSchema converts raw input into a SourceSchema.
func ParseSourceSchema(value string) (SourceSchema, error) {
	for _, candidate := range validSourceSchemas {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source schema %q", value)
}
