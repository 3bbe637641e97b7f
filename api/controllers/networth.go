package controllers

import (
	"net/http"
	"strings"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// NetWorthCurrent aggregates the scope's balances into buckets and
// writes today's snapshot before returning it. Calling it again on the
// same day overwrites the row with fresh numbers.
func NetWorthCurrent(svc networth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "net worth service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), scope, types.Today())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type netWorthHistoryResponse struct {
	Snapshots []models.NetWorthSnapshot `json:"snapshots"`
}

// NetWorthHistory returns stored snapshots in the requested range. With
// no bounds it covers the trailing year.
func NetWorthHistory(svc networth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "net worth service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		var rng types.DateRange
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := types.ParseISODate(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date"))
				return
			}
			rng.From = from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := types.ParseISODate(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date"))
				return
			}
			rng.To = to
		}

		snapshots, err := svc.History(r.Context(), scope, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, netWorthHistoryResponse{Snapshots: snapshots})
	}
}
