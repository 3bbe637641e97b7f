package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/api/validators"
	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

type accountListResponse struct {
	Accounts []networth.AccountBalance `json:"accounts"`
}

// AccountList returns every account in the scope with its resolved
// balance.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		balances, err := svc.Balances(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accountListResponse{Accounts: balances})
	}
}

type createAccountRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	AccountType string `json:"accountType" validate:"required"`
}

// AccountCreate registers a new tracked account.
func AccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		var payload createAccountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountType, err := enums.ParseAccountType(strings.TrimSpace(payload.AccountType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
			return
		}

		account, err := svc.Create(r.Context(), scope, accounts.CreateInput{
			Name:        validators.SanitizeString(payload.Name, 120),
			AccountType: accountType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

type updateAccountRequest struct {
	Name                     *string          `json:"name,omitempty"`
	AccountType              *string          `json:"accountType,omitempty"`
	IsActive                 *bool            `json:"isActive,omitempty"`
	MarketValueOverride      *decimal.Decimal `json:"marketValueOverride,omitempty"`
	ClearMarketValueOverride bool             `json:"clearMarketValueOverride,omitempty"`
}

func (req updateAccountRequest) toInput() (accounts.UpdateInput, error) {
	input := accounts.UpdateInput{
		IsActive:            req.IsActive,
		MarketValueOverride: req.MarketValueOverride,
		ClearOverride:       req.ClearMarketValueOverride,
	}
	if req.Name != nil {
		name := validators.SanitizeString(*req.Name, 120)
		input.Name = &name
	}
	if req.AccountType != nil {
		accountType, err := enums.ParseAccountType(strings.TrimSpace(*req.AccountType))
		if err != nil {
			return accounts.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type")
		}
		input.AccountType = &accountType
	}
	return input, nil
}

// AccountUpdate patches name, type, active flag, or the market value
// override. Absent fields keep their stored values.
func AccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		accountID, err := parseAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateAccountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Update(r.Context(), scope, accountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

type mergeAliasesRequest struct {
	Aliases []string `json:"aliases" validate:"required,min=1,dive,required"`
}

// AccountMergeAliases folds raw labels into the account's alias set and
// re-links unlinked transactions that now map to it.
func AccountMergeAliases(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		accountID, err := parseAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mergeAliasesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MergeAliases(r.Context(), scope, accountID, payload.Aliases)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AccountRemoveAlias drops one mapped label, passed as the label query
// parameter.
func AccountRemoveAlias(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		accountID, err := parseAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label := strings.TrimSpace(r.URL.Query().Get("label"))
		if label == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "label query parameter is required"))
			return
		}

		account, err := svc.RemoveAlias(r.Context(), scope, accountID, label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

type aliasSuggestionsResponse struct {
	Labels []accounts.LabelSuggestions `json:"labels"`
}

// AccountAliasSuggestions scores distinct unlinked raw labels against
// the scope's accounts. Passing ?label= narrows the match to one label.
func AccountAliasSuggestions(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		if label := strings.TrimSpace(r.URL.Query().Get("label")); label != "" {
			suggestions, err := svc.Suggest(r.Context(), scope, label)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, aliasSuggestionsResponse{Labels: []accounts.LabelSuggestions{
				{Label: label, Suggestions: suggestions},
			}})
			return
		}

		labels, err := svc.SuggestUnlinked(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, aliasSuggestionsResponse{Labels: labels})
	}
}

func parseAccountID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "accountId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account id")
	}
	return accountID, nil
}
