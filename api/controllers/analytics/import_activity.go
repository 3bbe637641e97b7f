package analytics

import (
	"net/http"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/internal/analytics"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

// ImportActivity serves the per-day import KPI series from the
// warehouse.
func ImportActivity(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if service == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(ctx)
		if scope == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		start, end, err := resolveActivityRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		req := types.ImportActivityRequest{
			UserScope: scope,
			Start:     start,
			End:       end,
		}

		result, err := service.ImportActivity(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
