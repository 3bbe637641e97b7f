package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ledgerline/ledgerline-backend/api/routes"
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
	"github.com/ledgerline/ledgerline-backend/pkg/env"
	"github.com/ledgerline/ledgerline-backend/pkg/instance"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/metrics"
	"github.com/ledgerline/ledgerline-backend/pkg/migrate"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
	"github.com/ledgerline/ledgerline-backend/pkg/storage/gcs"
)

const (
	serviceName       = "api"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, "no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(ctx, logg, "config load failed", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "database connect failed", err)
	}
	defer closeResource(ctx, logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(ctx, logg, "dev migrations failed", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal(ctx, logg, "redis connect failed", err)
	}
	defer closeResource(ctx, logg, "redis", redisClient.Close)

	// Raw-upload archival and the BigQuery analytics surface are optional;
	// the readiness probe reports skipped for whichever stays nil.
	var (
		archiveClient *gcs.Client
		gcsPinger     gcs.Pinger
	)
	if cfg.FeatureFlags.ArchiveUploads && cfg.GCS.BucketName != "" {
		archiveClient, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			fatal(ctx, logg, "gcs connect failed", err)
		}
		defer closeResource(ctx, logg, "gcs", archiveClient.Close)
		gcsPinger = archiveClient
	}

	var (
		bigqueryPinger   bigquery.Pinger
		analyticsService analytics.Service
	)
	if cfg.FeatureFlags.EventingEnabled {
		bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			fatal(ctx, logg, "bigquery connect failed", err)
		}
		defer closeResource(ctx, logg, "bigquery", bqClient.Close)
		bigqueryPinger = bqClient

		analyticsService, err = analytics.NewService(bqClient, cfg.GCP.ProjectID, cfg.BigQuery.Dataset, cfg.BigQuery.ImportEventsTable)
		if err != nil {
			fatal(ctx, logg, "analytics service init failed", err)
		}
	}

	var emitter outbox.Emitter
	if cfg.FeatureFlags.EventingEnabled {
		emitter = outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	} else {
		logg.Warn(ctx, "eventing disabled; domain events will not be recorded")
		emitter = outbox.NoopEmitter{}
	}

	accountsRepo := accounts.NewRepository(dbClient.DB())
	categoriesRepo := categories.NewRepository(dbClient.DB())
	transactionsRepo := transactions.NewRepository(dbClient.DB())
	holdingsRepo := holdings.NewRepository(dbClient.DB())
	networthRepo := networth.NewRepository(dbClient.DB())
	batchesRepo := batches.NewRepository(dbClient.DB())

	accountsService, err := accounts.NewService(accountsRepo, cfg.Import.SimilarityThreshold)
	if err != nil {
		fatal(ctx, logg, "accounts service init failed", err)
	}

	categoriesService, err := categories.NewService(categoriesRepo)
	if err != nil {
		fatal(ctx, logg, "categories service init failed", err)
	}

	transactionsService, err := transactions.NewService(transactionsRepo, categoriesRepo, dbClient)
	if err != nil {
		fatal(ctx, logg, "transactions service init failed", err)
	}

	holdingsService, err := holdings.NewService(holdingsRepo)
	if err != nil {
		fatal(ctx, logg, "holdings service init failed", err)
	}

	networthService, err := networth.NewService(networthRepo, accountsService, dbClient, emitter, logg)
	if err != nil {
		fatal(ctx, logg, "net worth service init failed", err)
	}

	rules, err := importer.LoadRules(cfg.Import.RulesPath)
	if err != nil {
		fatal(ctx, logg, "import rules load failed", err)
	}

	importParams := importer.ServiceParams{
		Transactions: transactionsRepo,
		Batches:      batchesRepo,
		Holdings:     holdingsRepo,
		Accounts:     accountsRepo,
		Categories:   categoriesRepo,
		Tx:           dbClient,
		Outbox:       emitter,
		Locks:        redisClient,
		Rules:        rules,
		Config:       cfg.Import,
		Metrics:      metrics.NewImportMetrics(prometheus.DefaultRegisterer),
		Logg:         logg,
	}
	if archiveClient != nil {
		importParams.Archive = archiveClient
	}
	importService, err := importer.NewService(importParams)
	if err != nil {
		fatal(ctx, logg, "import service init failed", err)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsPinger, bigqueryPinger,
			importService, batchesRepo, accountsService, categoriesService,
			transactionsService, holdingsService, networthService, analyticsService),
		// No ReadTimeout: multipart import uploads may stream slowly.
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "server shutdown failed", err)
		}
	}()

	logg.Info(logCtx, "api server ready")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(logCtx, logg, "api server stopped unexpectedly", err)
	}

	// Shutdown drains in-flight requests; wait for it before the deferred
	// closes run.
	<-shutdownDone
	logg.Info(logCtx, "api server shutting down")
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}

func closeResource(ctx context.Context, logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(ctx, name+" close failed", err)
	}
}
