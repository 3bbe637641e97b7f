package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	analyticstypes "github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/holdings"
	"github.com/ledgerline/ledgerline-backend/internal/importer"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/pagination"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubImportService struct{}

func (stubImportService) Import(ctx context.Context, input importer.Input) (*importer.Result, error) {
	return &importer.Result{}, nil
}

type stubBatchesRepo struct{}

func (s stubBatchesRepo) WithTx(tx *gorm.DB) batches.Repository {
	return s
}

// Create implements [batches.Repository].
func (stubBatchesRepo) Create(ctx context.Context, batch *models.ImportBatch) error {
	panic("unimplemented")
}

// FindByID implements [batches.Repository].
func (stubBatchesRepo) FindByID(ctx context.Context, scope string, id uuid.UUID) (*models.ImportBatch, error) {
	panic("unimplemented")
}

func (stubBatchesRepo) List(ctx context.Context, scope string, params pagination.Params) ([]models.ImportBatch, *pagination.Cursor, error) {
	return []models.ImportBatch{}, nil, nil
}

// MarkProcessing implements [batches.Repository].
func (stubBatchesRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

// Finish implements [batches.Repository].
func (stubBatchesRepo) Finish(ctx context.Context, id uuid.UUID, status enums.ImportBatchStatus, recordCount int, metadata types.ImportBatchMetadata) error {
	panic("unimplemented")
}

// DeleteTerminalBefore implements [batches.Repository].
func (stubBatchesRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	panic("unimplemented")
}

type stubAccountsService struct{}

func (stubAccountsService) List(ctx context.Context, scope string) ([]models.Account, error) {
	return []models.Account{}, nil
}

func (stubAccountsService) Balances(ctx context.Context, scope string) ([]networth.AccountBalance, error) {
	return []networth.AccountBalance{}, nil
}

// Create implements [accounts.Service].
func (stubAccountsService) Create(ctx context.Context, scope string, input accounts.CreateInput) (*models.Account, error) {
	panic("unimplemented")
}

func (stubAccountsService) Update(ctx context.Context, scope string, accountID uuid.UUID, input accounts.UpdateInput) (*models.Account, error) {
	return &models.Account{ID: accountID}, nil
}

// AddAlias implements [accounts.Service].
func (stubAccountsService) AddAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	panic("unimplemented")
}

// MergeAliases implements [accounts.Service].
func (stubAccountsService) MergeAliases(ctx context.Context, scope string, accountID uuid.UUID, aliases []string) (*accounts.MergeAliasesResult, error) {
	panic("unimplemented")
}

// RemoveAlias implements [accounts.Service].
func (stubAccountsService) RemoveAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	panic("unimplemented")
}

// Suggest implements [accounts.Service].
func (stubAccountsService) Suggest(ctx context.Context, scope, label string) ([]accounts.AliasSuggestion, error) {
	panic("unimplemented")
}

func (stubAccountsService) SuggestUnlinked(ctx context.Context, scope string) ([]accounts.LabelSuggestions, error) {
	return []accounts.LabelSuggestions{}, nil
}

type stubCategoriesService struct{}

func (stubCategoriesService) List(ctx context.Context, scope string) ([]models.Category, error) {
	return []models.Category{}, nil
}

// Create implements [categories.Service].
func (stubCategoriesService) Create(ctx context.Context, scope string, input categories.CreateInput) (*models.Category, error) {
	panic("unimplemented")
}

// MergeAliases implements [categories.Service].
func (stubCategoriesService) MergeAliases(ctx context.Context, scope string, categoryID uuid.UUID, aliases []string) (*categories.MergeAliasesResult, error) {
	panic("unimplemented")
}

type stubTransactionsService struct{}

func (stubTransactionsService) List(ctx context.Context, scope string, params pagination.Params, filters transactions.ListFilters) (*transactions.Page, error) {
	return &transactions.Page{Transactions: []models.Transaction{}}, nil
}

// Categorize implements [transactions.Service].
func (stubTransactionsService) Categorize(ctx context.Context, scope string, id uuid.UUID, categoryID *uuid.UUID) error {
	panic("unimplemented")
}

func (stubTransactionsService) UnmappedLabels(ctx context.Context, scope string, limit int) ([]transactions.LabelCount, error) {
	return []transactions.LabelCount{}, nil
}

func (stubTransactionsService) PotentialDuplicates(ctx context.Context, scope string) ([]transactions.DuplicatePair, error) {
	return []transactions.DuplicatePair{}, nil
}

// ResolveDuplicates implements [transactions.Service].
func (stubTransactionsService) ResolveDuplicates(ctx context.Context, scope string, input transactions.ResolveDuplicatesInput) (*transactions.ResolveDuplicatesResult, error) {
	panic("unimplemented")
}

type stubHoldingsService struct{}

func (stubHoldingsService) Portfolio(ctx context.Context, scope string) (*holdings.Portfolio, error) {
	return &holdings.Portfolio{Holdings: []models.Holding{}}, nil
}

// History implements [holdings.Service].
func (stubHoldingsService) History(ctx context.Context, scope, symbol string) ([]models.Holding, error) {
	panic("unimplemented")
}

type stubNetWorthService struct{}

func (stubNetWorthService) Snapshot(ctx context.Context, scope string, day types.Date) (*models.NetWorthSnapshot, error) {
	return &models.NetWorthSnapshot{UserScope: scope, SnapshotDate: day}, nil
}

// SnapshotAll implements [networth.Service].
func (stubNetWorthService) SnapshotAll(ctx context.Context, day types.Date) (int, error) {
	panic("unimplemented")
}

func (stubNetWorthService) History(ctx context.Context, scope string, rng types.DateRange) ([]models.NetWorthSnapshot, error) {
	return []models.NetWorthSnapshot{}, nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) ImportActivity(ctx context.Context, req analyticstypes.ImportActivityRequest) (*analyticstypes.ImportActivityResponse, error) {
	return &analyticstypes.ImportActivityResponse{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "test", Port: "0"},
		Import: config.ImportConfig{ChunkSize: 200, SimilarityThreshold: 0.72, MaxUploadMB: 25},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},         // db.Pinger
		(*redis.Client)(nil), // *redis.Client
		stubPinger{},         // gcs.Pinger
		stubPinger{},         // bigquery.Pinger
		stubImportService{},
		stubBatchesRepo{},
		stubAccountsService{},
		stubCategoriesService{},
		stubTransactionsService{},
		stubHoldingsService{},
		stubNetWorthService{},
		stubAnalyticsService{},
	)
}

func scopedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("X-Ledger-Scope", "user-123")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestHealthzSkipsScope(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthz got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Ledgerline-Env"); env != "test" {
		t.Fatalf("expected env header test got %q", env)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestAPIRoutesRejectMissingScope(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []string{
		"/api/v1/imports",
		"/api/v1/accounts",
		"/api/v1/categories",
		"/api/v1/transactions",
		"/api/v1/holdings",
		"/api/v1/net-worth",
		"/api/v1/analytics/import-activity",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without scope for %s got %d", path, resp.Code)
		}
	}
}

func TestScopedReadsReachControllers(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []string{
		"/api/v1/imports",
		"/api/v1/accounts",
		"/api/v1/accounts/alias-suggestions",
		"/api/v1/categories",
		"/api/v1/transactions",
		"/api/v1/transactions/unmapped-labels",
		"/api/v1/transactions/potential-duplicates",
		"/api/v1/holdings",
		"/api/v1/net-worth/history",
		"/api/v1/analytics/import-activity",
	}
	for _, path := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, scopedRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestNetWorthCurrentWired(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, scopedRequest(http.MethodGet, "/api/v1/net-worth", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for net worth got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMutationsRequireIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig())
	accountID := uuid.NewString()
	categoryID := uuid.NewString()
	paths := []string{
		"/api/v1/imports",
		"/api/v1/accounts",
		"/api/v1/accounts/" + accountID + "/aliases",
		"/api/v1/categories",
		"/api/v1/categories/" + categoryID + "/aliases",
		"/api/v1/transactions/duplicates/resolve",
	}
	for _, path := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, scopedRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without idempotency key for %s got %d", path, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), "Idempotency-Key") {
			t.Fatalf("expected idempotency error for %s got %s", path, resp.Body.String())
		}
	}
}

func TestPatchSkipsIdempotencyGate(t *testing.T) {
	router := newTestRouter(testConfig())
	target := "/api/v1/accounts/" + uuid.NewString()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, scopedRequest(http.MethodPatch, target, strings.NewReader(`{"name":"Renamed"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for account patch got %d: %s", resp.Code, resp.Body.String())
	}
}
