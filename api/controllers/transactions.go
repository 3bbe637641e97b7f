package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/api/validators"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// TransactionList serves the filtered, cursor-paginated transaction
// feed. Date bounds are ISO dates and must be supplied together.
func TransactionList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := parseTransactionFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), scope, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseTransactionFilters(r *http.Request) (transactions.ListFilters, error) {
	var filters transactions.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("accountId")); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account id")
		}
		filters.AccountID = &accountID
	}
	if raw := strings.TrimSpace(query.Get("categoryId")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		filters.CategoryID = &categoryID
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		txnType, err := enums.ParseTransactionType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
		filters.Type = &txnType
	}

	uncategorized, err := validators.ParseQueryBool(r, "uncategorized", false)
	if err != nil {
		return filters, err
	}
	filters.Uncategorized = uncategorized

	fromRaw := strings.TrimSpace(query.Get("from"))
	toRaw := strings.TrimSpace(query.Get("to"))
	if fromRaw == "" && toRaw == "" {
		return filters, nil
	}
	if fromRaw == "" || toRaw == "" {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
	}
	from, err := types.ParseISODate(fromRaw)
	if err != nil {
		return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date")
	}
	to, err := types.ParseISODate(toRaw)
	if err != nil {
		return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date")
	}
	if to.Before(from) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "to precedes from")
	}
	filters.Range = &types.DateRange{From: from, To: to}
	return filters, nil
}

type categorizeTransactionRequest struct {
	CategoryID *string `json:"categoryId"`
}

type categorizeTransactionResponse struct {
	Updated bool `json:"updated"`
}

// TransactionCategorize assigns or clears one transaction's category.
// A null categoryId clears it.
func TransactionCategorize(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "transactionId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required"))
			return
		}
		transactionID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id"))
			return
		}

		var payload categorizeTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var categoryID *uuid.UUID
		if payload.CategoryID != nil {
			parsed, err := uuid.Parse(strings.TrimSpace(*payload.CategoryID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			categoryID = &parsed
		}

		if err := svc.Categorize(r.Context(), scope, transactionID, categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categorizeTransactionResponse{Updated: true})
	}
}

type unmappedLabelsResponse struct {
	Labels []transactions.LabelCount `json:"labels"`
}

// TransactionUnmappedLabels lists raw account labels that no account or
// alias claims yet, most frequent first.
func TransactionUnmappedLabels(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		labels, err := svc.UnmappedLabels(r.Context(), scope, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, unmappedLabelsResponse{Labels: labels})
	}
}

type potentialDuplicatesResponse struct {
	Pairs []transactions.DuplicatePair `json:"pairs"`
}

// TransactionPotentialDuplicates lists unresolved near-duplicate flags
// with both transactions loaded for review.
func TransactionPotentialDuplicates(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		pairs, err := svc.PotentialDuplicates(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, potentialDuplicatesResponse{Pairs: pairs})
	}
}

type resolveDuplicatesRequest struct {
	DeleteIDs []string `json:"deleteIds"`
	KeepIDs   []string `json:"keepIds"`
}

func (req resolveDuplicatesRequest) toInput() (transactions.ResolveDuplicatesInput, error) {
	input := transactions.ResolveDuplicatesInput{}
	for _, raw := range req.DeleteIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delete id")
		}
		input.DeleteIDs = append(input.DeleteIDs, id)
	}
	for _, raw := range req.KeepIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid keep id")
		}
		input.KeepIDs = append(input.KeepIDs, id)
	}
	return input, nil
}

// TransactionResolveDuplicates applies the user's verdicts on flagged
// pairs: deleteIds are removed and keepIds stay; every flag touched is
// marked reviewed.
func TransactionResolveDuplicates(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		var payload resolveDuplicatesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveDuplicates(r.Context(), scope, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
