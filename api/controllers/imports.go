package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/api/validators"
	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/importer"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
)

// multipartMemoryLimit caps how much of a parsed upload stays in memory
// before spilling to temp files. The total size cap comes from config.
const multipartMemoryLimit = 8 << 20

// ImportUpload receives one ledger export as multipart form data and runs
// the import pipeline on it. The optional schema form value forces a
// source schema; absent, the parser detects it from the file headers.
func ImportUpload(svc importer.Service, cfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds size limit").
					WithDetails(map[string]any{"maxBytes": tooLarge.Limit}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}

		input := importer.Input{
			UserScope: scope,
			Filename:  header.Filename,
			Content:   content,
		}
		if raw := strings.TrimSpace(r.FormValue("schema")); raw != "" {
			schema, err := enums.ParseSourceSchema(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid schema"))
				return
			}
			input.SourceSchema = schema
		}

		result, err := svc.Import(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// a failed batch still reports 200 with its partial counts; the
		// outcome lives in the payload status
		responses.WriteSuccess(w, result)
	}
}

type importListResponse struct {
	Batches    []models.ImportBatch `json:"batches"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// ImportList returns the scope's import batches, newest first.
func ImportList(repo batches.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batches repository unavailable"))
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

		rows, next, err := repo.List(r.Context(), scope, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list import batches"))
			return
		}

		resp := importListResponse{Batches: rows}
		if next != nil {
			resp.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// ImportDetail returns one import batch with its outcome metadata.
func ImportDetail(repo batches.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batches repository unavailable"))
			return
		}

		scope := middleware.ScopeFromContext(r.Context())
		if scope == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope context missing"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "importBatchId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "import batch id is required"))
			return
		}
		batchID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid import batch id"))
			return
		}

		batch, err := repo.FindByID(r.Context(), scope, batchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "import batch not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch import batch"))
			return
		}
		responses.WriteSuccess(w, batch)
	}
}
