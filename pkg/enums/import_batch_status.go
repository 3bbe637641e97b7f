package enums

import "fmt"

// ImportBatchStatus maps to the import_batch_status enum in Postgres.
// Batches move pending -> processing -> completed|failed; the terminal
// states are never left.
type ImportBatchStatus string

const (
	ImportBatchStatusPending    ImportBatchStatus = "pending"
	ImportBatchStatusProcessing ImportBatchStatus = "processing"
	ImportBatchStatusCompleted  ImportBatchStatus = "completed"
	ImportBatchStatusFailed     ImportBatchStatus = "failed"
)

var validImportBatchStatuses = []ImportBatchStatus{
	ImportBatchStatusPending,
	ImportBatchStatusProcessing,
	ImportBatchStatusCompleted,
	ImportBatchStatusFailed,
}

// String returns the literal string for the status.
func (s ImportBatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical enum.
func (s ImportBatchStatus) IsValid() bool {
	for _, candidate := range validImportBatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the batch can no longer change status.
func (s ImportBatchStatus) IsTerminal() bool {
	return s == ImportBatchStatusCompleted || s == ImportBatchStatusFailed
}

// ParseImportBatchStatus converts raw input into an ImportBatchStatus.
func ParseImportBatchStatus(value string) (ImportBatchStatus, error) {
	for _, candidate := range validImportBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import batch status %q", value)
}
