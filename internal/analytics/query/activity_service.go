package query

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	"github.com/ledgerline/ledgerline-backend/pkg/bigquery"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"google.golang.org/api/iterator"
)

const (
	dailyActivitySQL = `
SELECT
  FORMAT_DATE('%%F', DATE_TRUNC(occurred_at, DAY)) AS day,
  COUNT(DISTINCT batch_id) AS batches,
  COUNTIF(event_type = 'import_failed') AS failed_batches,
  SUM(COALESCE(imported, 0)) AS imported,
  SUM(COALESCE(duplicates_skipped, 0)) AS duplicates_skipped,
  SUM(COALESCE(holdings_imported, 0)) AS holdings_imported
FROM %s
WHERE user_scope = @userScope
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	activityTotalsSQL = `
SELECT
  COUNT(DISTINCT batch_id) AS total_batches,
  COUNTIF(event_type = 'import_failed') AS failed_batches,
  SUM(COALESCE(imported, 0)) AS total_imported
FROM %s
WHERE user_scope = @userScope
  AND occurred_at BETWEEN @start AND @end
`
)

// ActivityService provides import dashboard data from BigQuery import_events.
type ActivityService interface {
	Query(ctx context.Context, req types.ImportActivityRequest) (*types.ImportActivityResponse, error)
}

type activityService struct {
	client   *bigquery.Client
	tableRef string
}

// NewActivityService builds a service backed by BigQuery.
func NewActivityService(client *bigquery.Client, project, dataset, table string) (ActivityService, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if project == "" || dataset == "" || table == "" {
		return nil, fmt.Errorf("project, dataset, and table are required")
	}
	return &activityService{
		client:   client,
		tableRef: fmt.Sprintf("`%s.%s.%s`", project, dataset, table),
	}, nil
}

func (s *activityService) Query(ctx context.Context, req types.ImportActivityRequest) (*types.ImportActivityResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	params := s.baseParams(req)

	days, err := s.queryDays(ctx, fmt.Sprintf(dailyActivitySQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	totalBatches, failedBatches, totalImported, err := s.queryTotals(ctx, fmt.Sprintf(activityTotalsSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	var failureRate float64
	if totalBatches > 0 {
		failureRate = float64(failedBatches) / float64(totalBatches)
	}

	return &types.ImportActivityResponse{
		Days:          days,
		TotalBatches:  totalBatches,
		TotalImported: totalImported,
		FailureRate:   failureRate,
	}, nil
}

func validateRequest(req types.ImportActivityRequest) error {
	if req.UserScope == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user scope required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if req.End.Before(req.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}

func (s *activityService) baseParams(req types.ImportActivityRequest) []cloudbigquery.QueryParameter {
	return []cloudbigquery.QueryParameter{
		{Name: "userScope", Value: req.UserScope},
		{Name: "start", Value: req.Start},
		{Name: "end", Value: req.End},
	}
}

func (s *activityService) queryDays(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.ImportActivityDay, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query daily activity: %w", err)
	}

	var days []types.ImportActivityDay
	for {
		var row struct {
			Day               string `bigquery:"day"`
			Batches           int64  `bigquery:"batches"`
			FailedBatches     int64  `bigquery:"failed_batches"`
			Imported          int64  `bigquery:"imported"`
			DuplicatesSkipped int64  `bigquery:"duplicates_skipped"`
			HoldingsImported  int64  `bigquery:"holdings_imported"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading daily activity row: %w", err)
		}
		days = append(days, types.ImportActivityDay{
			Date:              row.Day,
			Batches:           row.Batches,
			FailedBatches:     row.FailedBatches,
			Imported:          row.Imported,
			DuplicatesSkipped: row.DuplicatesSkipped,
			HoldingsImported:  row.HoldingsImported,
		})
	}
	return days, nil
}

func (s *activityService) queryTotals(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (int64, int64, int64, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("query activity totals: %w", err)
	}
	var row struct {
		TotalBatches  int64                   `bigquery:"total_batches"`
		FailedBatches int64                   `bigquery:"failed_batches"`
		TotalImported cloudbigquery.NullInt64 `bigquery:"total_imported"`
	}
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return 0, 0, 0, nil
		}
		return 0, 0, 0, fmt.Errorf("reading activity totals row: %w", err)
	}
	var imported int64
	if row.TotalImported.Valid {
		imported = row.TotalImported.Int64
	}
	return row.TotalBatches, row.FailedBatches, imported, nil
}
