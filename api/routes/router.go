package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerline/ledgerline-backend/api/controllers"
	analyticscontrollers "github.com/ledgerline/ledgerline-backend/api/controllers/analytics"
	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	"github.com/ledgerline/ledgerline-backend/internal/analytics"
	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/holdings"
	"github.com/ledgerline/ledgerline-backend/internal/importer"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/bigquery"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
	"github.com/ledgerline/ledgerline-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	bigqueryClient bigquery.Pinger,
	importService importer.Service,
	batchesRepo batches.Repository,
	accountsService accounts.Service,
	categoriesService categories.Service,
	transactionsService transactions.Service,
	holdingsService holdings.Service,
	networthService networth.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient, bigqueryClient))
	r.Handle("/metrics", promhttp.Handler())

	// Attached per-route so the idempotency key sees the resolved chi
	// pattern and runs after Scope has populated the request context.
	idem := middleware.Idempotency(redisClient, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Scope(logg))

		r.Route("/imports", func(r chi.Router) {
			r.With(idem).Post("/", controllers.ImportUpload(importService, cfg.Import, logg))
			r.Get("/", controllers.ImportList(batchesRepo, logg))
			r.Get("/{importBatchId}", controllers.ImportDetail(batchesRepo, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.AccountList(accountsService, logg))
			r.With(idem).Post("/", controllers.AccountCreate(accountsService, logg))
			r.Get("/alias-suggestions", controllers.AccountAliasSuggestions(accountsService, logg))
			r.Patch("/{accountId}", controllers.AccountUpdate(accountsService, logg))
			r.With(idem).Post("/{accountId}/aliases", controllers.AccountMergeAliases(accountsService, logg))
			r.Delete("/{accountId}/aliases", controllers.AccountRemoveAlias(accountsService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoriesService, logg))
			r.With(idem).Post("/", controllers.CategoryCreate(categoriesService, logg))
			r.With(idem).Post("/{categoryId}/aliases", controllers.CategoryMergeAliases(categoriesService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(transactionsService, logg))
			r.Get("/unmapped-labels", controllers.TransactionUnmappedLabels(transactionsService, logg))
			r.Get("/potential-duplicates", controllers.TransactionPotentialDuplicates(transactionsService, logg))
			r.With(idem).Post("/duplicates/resolve", controllers.TransactionResolveDuplicates(transactionsService, logg))
			r.Patch("/{transactionId}/category", controllers.TransactionCategorize(transactionsService, logg))
		})

		r.Get("/holdings", controllers.HoldingList(holdingsService, logg))

		r.Route("/net-worth", func(r chi.Router) {
			r.Get("/", controllers.NetWorthCurrent(networthService, logg))
			r.Get("/history", controllers.NetWorthHistory(networthService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/import-activity", analyticscontrollers.ImportActivity(analyticsService, logg))
		})
	})

	return r
}
