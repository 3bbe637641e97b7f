package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/holdings"
	"github.com/ledgerline/ledgerline-backend/internal/importer"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/metrics"
	"github.com/ledgerline/ledgerline-backend/pkg/migrate"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
	"github.com/ledgerline/ledgerline-backend/pkg/storage/gcs"
)

const serviceName = "import"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	file := flag.String("file", "", "path of the ledger export to import")
	scope := flag.String("scope", "", "user scope that owns the imported rows")
	schema := flag.String("schema", "", "source schema override: general_ledger|flat_transaction|brokerage_holding (default: detect from headers)")
	flag.Parse()

	if *file == "" || *scope == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file <path> -scope <scope> [-schema <name>]")
		os.Exit(2)
	}

	var sourceSchema enums.SourceSchema
	if *schema != "" {
		parsed, err := enums.ParseSourceSchema(*schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -schema: %v\n", err)
			os.Exit(2)
		}
		sourceSchema = parsed
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

	content, err := os.ReadFile(*file)
	if err != nil {
		fatal(ctx, logg, "input file read failed", err)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "database connect failed", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(ctx, logg, "dev migrations failed", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal(ctx, logg, "redis connect failed", err)
	}
	defer redisClient.Close()

	var emitter outbox.Emitter = outbox.NoopEmitter{}
	if cfg.FeatureFlags.EventingEnabled {
		emitter = outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	}

	var archiveClient *gcs.Client
	if cfg.FeatureFlags.ArchiveUploads && cfg.GCS.BucketName != "" {
		archiveClient, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			fatal(ctx, logg, "gcs connect failed", err)
		}
		defer archiveClient.Close()
	}

	rules, err := importer.LoadRules(cfg.Import.RulesPath)
	if err != nil {
		fatal(ctx, logg, "import rules load failed", err)
	}

	params := importer.ServiceParams{
		Transactions: transactions.NewRepository(dbClient.DB()),
		Batches:      batches.NewRepository(dbClient.DB()),
		Holdings:     holdings.NewRepository(dbClient.DB()),
		Accounts:     accounts.NewRepository(dbClient.DB()),
		Categories:   categories.NewRepository(dbClient.DB()),
		Tx:           dbClient,
		Outbox:       emitter,
		Locks:        redisClient,
		Rules:        rules,
		Config:       cfg.Import,
		Metrics:      metrics.NewImportMetrics(nil),
		Logg:         logg,
	}
	if archiveClient != nil {
		params.Archive = archiveClient
	}
	service, err := importer.NewService(params)
	if err != nil {
		fatal(ctx, logg, "import service init failed", err)
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"user_scope": *scope,
		"file":       *file,
	})
	logg.Info(runCtx, "starting one-shot import")

	result, err := service.Import(runCtx, importer.Input{
		UserScope:    *scope,
		Filename:     filepath.Base(*file),
		Content:      content,
		SourceSchema: sourceSchema,
	})
	if err != nil {
		fatal(runCtx, logg, "import did not run", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fatal(ctx, logg, "result encoding failed", err)
	}
	fmt.Println(string(out))

	if result.Status == enums.ImportBatchStatusFailed {
		os.Exit(1)
	}
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
