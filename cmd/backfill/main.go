package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ledgerline/ledgerline-backend/internal/backfill"
	"github.com/ledgerline/ledgerline-backend/internal/categories"
	"github.com/ledgerline/ledgerline-backend/internal/transactions"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/migrate"
)

const serviceName = "backfill"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	scope := flag.String("scope", "", "user scope whose transactions get backfilled")
	dryRun := flag.Bool("dry-run", true, "report would-be changes without writing")
	flag.Parse()

	if *scope == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -scope <scope> [-dry-run=false]")
		os.Exit(2)
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
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(ctx, logg, "dev migrations failed", err)
	}

	service, err := backfill.NewService(
		transactions.NewRepository(dbClient.DB()),
		categories.NewRepository(dbClient.DB()),
		dbClient,
		logg,
	)
	if err != nil {
		fatal(ctx, logg, "backfill service init failed", err)
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"user_scope": *scope,
		"dry_run":    *dryRun,
	})
	logg.Info(runCtx, "starting category backfill")

	report, runErr := service.Run(runCtx, *scope, *dryRun)
	if report == nil {
		fatal(runCtx, logg, "backfill did not run", runErr)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fatal(ctx, logg, "report encoding failed", err)
	}
	fmt.Println(string(out))

	// a partial failure still prints the report for the labels that ran
	if runErr != nil {
		logg.Error(runCtx, "backfill finished with errors", runErr)
		os.Exit(1)
	}
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
