package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// ImportEventRow mirrors the import_events BigQuery schema. One row lands
// per finished import run, completed or failed.
type ImportEventRow struct {
	EventID               string             `bigquery:"event_id"`
	EventType             string             `bigquery:"event_type"`
	OccurredAt            time.Time          `bigquery:"occurred_at"`
	BatchID               string             `bigquery:"batch_id"`
	UserScope             string             `bigquery:"user_scope"`
	Filename              string             `bigquery:"filename"`
	SourceSchema          string             `bigquery:"source_schema"`
	Imported              int64              `bigquery:"imported"`
	SkippedRows           int64              `bigquery:"skipped_rows"`
	DuplicatesSkipped     int64              `bigquery:"duplicates_skipped"`
	IgnoredAccountRecords int64              `bigquery:"ignored_account_records"`
	HoldingsImported      int64              `bigquery:"holdings_imported"`
	PotentialDuplicates   int64              `bigquery:"potential_duplicates"`
	FailureReason         *string            `bigquery:"failure_reason"`
	Payload               cbigquery.NullJSON `bigquery:"payload"`
}

// SnapshotEventRow mirrors the snapshot_events BigQuery schema. Bucket
// amounts are dollars, not cents, matching the NUMERIC snapshot columns.
type SnapshotEventRow struct {
	EventID      string             `bigquery:"event_id"`
	EventType    string             `bigquery:"event_type"`
	OccurredAt   time.Time          `bigquery:"occurred_at"`
	SnapshotID   string             `bigquery:"snapshot_id"`
	UserScope    string             `bigquery:"user_scope"`
	SnapshotDate string             `bigquery:"snapshot_date"`
	Cash         float64            `bigquery:"cash"`
	Investments  float64            `bigquery:"investments"`
	RealEstate   float64            `bigquery:"real_estate"`
	Crypto       float64            `bigquery:"crypto"`
	Retirement   float64            `bigquery:"retirement"`
	Liabilities  float64            `bigquery:"liabilities"`
	TotalAssets  float64            `bigquery:"total_assets"`
	NetWorth     float64            `bigquery:"net_worth"`
	Payload      cbigquery.NullJSON `bigquery:"payload"`
}
