package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// ImportCompletedEvent reports the final counts of a successful import run.
type ImportCompletedEvent struct {
	BatchID               uuid.UUID          `json:"batchId"`
	UserScope             string             `json:"userScope"`
	Filename              string             `json:"filename"`
	SourceSchema          enums.SourceSchema `json:"sourceSchema"`
	Imported              int                `json:"imported"`
	SkippedRows           int                `json:"skippedRows"`
	DuplicatesSkipped     int                `json:"duplicatesSkipped"`
	IgnoredAccountRecords int                `json:"ignoredAccountRecords"`
	HoldingsImported      int                `json:"holdingsImported"`
	PotentialDuplicates   int                `json:"potentialDuplicates"`
}

// ImportFailedEvent reports a run that ended in the failed status. Imported
// carries the rows committed before the failure.
type ImportFailedEvent struct {
	BatchID       uuid.UUID          `json:"batchId"`
	UserScope     string             `json:"userScope"`
	Filename      string             `json:"filename"`
	SourceSchema  enums.SourceSchema `json:"sourceSchema"`
	FailureReason string             `json:"failureReason"`
	Imported      int                `json:"imported"`
}

// NetWorthSnapshotWrittenEvent is emitted whenever a daily snapshot row is
// written or overwritten.
type NetWorthSnapshotWrittenEvent struct {
	SnapshotID   uuid.UUID       `json:"snapshotId"`
	UserScope    string          `json:"userScope"`
	SnapshotDate types.Date      `json:"snapshotDate"`
	Cash         decimal.Decimal `json:"cash"`
	Investments  decimal.Decimal `json:"investments"`
	RealEstate   decimal.Decimal `json:"realEstate"`
	Crypto       decimal.Decimal `json:"crypto"`
	Retirement   decimal.Decimal `json:"retirement"`
	Liabilities  decimal.Decimal `json:"liabilities"`
	TotalAssets  decimal.Decimal `json:"totalAssets"`
	NetWorth     decimal.Decimal `json:"netWorth"`
}
