package controllers

import (
	"net/http"
	"strings"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/internal/holdings"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

type holdingHistoryResponse struct {
	Symbol   string           `json:"symbol"`
	Holdings []models.Holding `json:"holdings"`
}

// HoldingList serves the portfolio view: latest position per symbol
// with the summed market value. Passing ?symbol= returns that symbol's
// full statement history instead.
func HoldingList(svc holdings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "holdings service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		if symbol := strings.TrimSpace(r.URL.Query().Get("symbol")); symbol != "" {
			rows, err := svc.History(r.Context(), scope, symbol)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, holdingHistoryResponse{
				Symbol:   strings.ToUpper(symbol),
				Holdings: rows,
			})
			return
		}

		portfolio, err := svc.Portfolio(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, portfolio)
	}
}
