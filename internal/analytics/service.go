package analytics

import (
	"context"
	"fmt"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/query"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	"github.com/ledgerline/ledgerline-backend/pkg/bigquery"
)

// Service provides analytics reports based on import events.
type Service interface {
	// ImportActivity returns per-day import counts for the provided request.
	ImportActivity(ctx context.Context, req types.ImportActivityRequest) (*types.ImportActivityResponse, error)
}

type service struct {
	activity query.ActivityService
}

// NewService builds an analytics service backed by BigQuery.
func NewService(client *bigquery.Client, project, dataset, table string) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}

	activity, err := query.NewActivityService(client, project, dataset, table)
	if err != nil {
		return nil, err
	}

	return &service{activity: activity}, nil
}

func (s *service) ImportActivity(ctx context.Context, req types.ImportActivityRequest) (*types.ImportActivityResponse, error) {
	return s.activity.Query(ctx, req)
}
