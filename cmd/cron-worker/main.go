package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	"github.com/ledgerline/ledgerline-backend/internal/batches"
	"github.com/ledgerline/ledgerline-backend/internal/cron"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/metrics"
	"github.com/ledgerline/ledgerline-backend/pkg/migrate"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
)

const (
	serviceName   = "cron-worker"
	lockKeyFormat = "ll:cron-worker:lock:%s:%s"
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	var emitter outbox.Emitter
	if cfg.FeatureFlags.EventingEnabled {
		emitter = outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	} else {
		logg.Warn(ctx, "eventing disabled; domain events will not be recorded")
		emitter = outbox.NoopEmitter{}
	}

	accountsService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()), cfg.Import.SimilarityThreshold)
	if err != nil {
		fatal(ctx, logg, "accounts service init failed", err)
	}

	networthService, err := networth.NewService(networth.NewRepository(dbClient.DB()), accountsService, dbClient, emitter, logg)
	if err != nil {
		fatal(ctx, logg, "net worth service init failed", err)
	}

	snapshotJob, err := cron.NewNetWorthSnapshotJob(cron.NetWorthSnapshotJobParams{
		Logger:    logg,
		Snapshots: networthService,
	})
	if err != nil {
		fatal(ctx, logg, "snapshot job init failed", err)
	}

	batchRetentionJob, err := cron.NewImportBatchRetentionJob(cron.ImportBatchRetentionJobParams{
		Logger:    logg,
		Batches:   batches.NewRepository(dbClient.DB()),
		Retention: cfg.Cron.BatchRetentionDays,
	})
	if err != nil {
		fatal(ctx, logg, "batch retention job init failed", err)
	}

	outboxRetentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Retention:  cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		fatal(ctx, logg, "outbox retention job init failed", err)
	}

	// Snapshots and retention sweeps run on independent cadences, each
	// behind its own lock so a slow sweep never delays the daily snapshot.
	snapshotLock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env, "snapshot"), cfg.Cron.LockTTL)
	if err != nil {
		fatal(ctx, logg, "snapshot lock init failed", err)
	}
	snapshotService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(snapshotJob),
		Lock:     snapshotLock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.SnapshotInterval,
	})
	if err != nil {
		fatal(ctx, logg, "snapshot scheduler init failed", err)
	}

	retentionLock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env, "retention"), cfg.Cron.LockTTL)
	if err != nil {
		fatal(ctx, logg, "retention lock init failed", err)
	}
	retentionService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(batchRetentionJob, outboxRetentionJob),
		Lock:     retentionLock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.RetentionInterval,
	})
	if err != nil {
		fatal(ctx, logg, "retention scheduler init failed", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
	})
	logg.Info(runCtx, "cron worker ready")

	errCh := make(chan error, 2)
	go func() {
		errCh <- snapshotService.Run(runCtx)
	}()
	go func() {
		errCh <- retentionService.Run(runCtx)
	}()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		fatal(runCtx, logg, "cron worker stopped unexpectedly", err)
	}

	logg.Info(runCtx, "cron worker shutting down")
}

func lockKey(env, cadence string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env, cadence)
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
