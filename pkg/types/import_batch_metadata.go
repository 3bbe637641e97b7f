package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImportBatchMetadata carries the per-batch outcome counts persisted as
// JSONB alongside the batch row.
type ImportBatchMetadata struct {
	Imported              int    `json:"imported"`
	SkippedRows           int    `json:"skippedRows"`
	DuplicatesSkipped     int    `json:"duplicatesSkipped"`
	IgnoredAccountRecords int    `json:"ignoredAccountRecords"`
	HoldingsImported      int    `json:"holdingsImported"`
	PotentialDuplicates   int    `json:"potentialDuplicates"`
	FailureReason         string `json:"failureReason,omitempty"`
}

// Value marshals the metadata into JSON for Postgres.
func (m ImportBatchMetadata) Value() (driver.Value, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the metadata struct.
func (m *ImportBatchMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ImportBatchMetadata{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("import batch metadata: unsupported scan type %T", value)
	}

	var result ImportBatchMetadata
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}
