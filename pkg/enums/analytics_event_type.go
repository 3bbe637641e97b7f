package enums

import "fmt"

// AnalyticsEventType is the canonical event_type for analytics routing.
type AnalyticsEventType string

const (
	AnalyticsEventImportCompleted         AnalyticsEventType = "import_completed"
	AnalyticsEventImportFailed            AnalyticsEventType = "import_failed"
	AnalyticsEventNetWorthSnapshotWritten AnalyticsEventType = "net_worth_snapshot_written"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventImportCompleted,
	AnalyticsEventImportFailed,
	AnalyticsEventNetWorthSnapshotWritten,
}

// IsValid reports whether the value matches the canonical analytics event_type enum.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts the raw string to AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
