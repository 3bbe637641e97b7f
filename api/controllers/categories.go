package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/api/validators"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

type categoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// CategoryList returns the scope's category tree as a flat list.
func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		list, err := svc.List(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categoryListResponse{Categories: list})
	}
}

type createCategoryRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	CategoryType string  `json:"categoryType" validate:"required"`
	ParentID     *string `json:"parentId,omitempty"`
}

// CategoryCreate adds a category, optionally nested under a top-level
// parent.
func CategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryType, err := enums.ParseCategoryType(strings.TrimSpace(payload.CategoryType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category type"))
			return
		}

		input := categories.CreateInput{
			Name:         validators.SanitizeString(payload.Name, 120),
			CategoryType: categoryType,
		}
		if payload.ParentID != nil {
			parentID, err := uuid.Parse(strings.TrimSpace(*payload.ParentID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid parent category id"))
				return
			}
			input.ParentID = &parentID
		}

		category, err := svc.Create(r.Context(), scope, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// CategoryMergeAliases folds raw transaction labels into the category's
// alias set.
func CategoryMergeAliases(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "categoryId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category id is required"))
			return
		}
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		var payload mergeAliasesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MergeAliases(r.Context(), scope, categoryID, payload.Aliases)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
