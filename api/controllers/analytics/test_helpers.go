package analytics

import (
	"context"
	"time"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
)

type testAnalyticsService struct {
	last     types.ImportActivityRequest
	response *types.ImportActivityResponse
	err      error
}

func (s *testAnalyticsService) ImportActivity(ctx context.Context, req types.ImportActivityRequest) (*types.ImportActivityResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response == nil {
		s.response = &types.ImportActivityResponse{}
	}
	return s.response, nil
}

func (s *testAnalyticsService) called() bool {
	return s.last.UserScope != ""
}

func (s *testAnalyticsService) period() time.Duration {
	return s.last.End.Sub(s.last.Start)
}
