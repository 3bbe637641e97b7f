package types

import "time"

// ImportActivityRequest carries the input parameters for the import
// activity query.
type ImportActivityRequest struct {
	UserScope string
	Start     time.Time
	End       time.Time
}

// ImportActivityDay is one day of import KPIs.
type ImportActivityDay struct {
	Date              string `json:"date"`
	Batches           int64  `json:"batches"`
	FailedBatches     int64  `json:"failedBatches"`
	Imported          int64  `json:"imported"`
	DuplicatesSkipped int64  `json:"duplicatesSkipped"`
	HoldingsImported  int64  `json:"holdingsImported"`
}

// ImportActivityResponse wraps the daily series plus window totals.
type ImportActivityResponse struct {
	Days          []ImportActivityDay `json:"days"`
	TotalBatches  int64               `json:"totalBatches"`
	TotalImported int64               `json:"totalImported"`
	FailureRate   float64             `json:"failureRate"`
}
