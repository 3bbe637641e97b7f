package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/router"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/worker"
	"github.com/ledgerline/ledgerline-backend/internal/analytics/writer"
	"github.com/ledgerline/ledgerline-backend/pkg/bigquery"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox/idempotency"
	"github.com/ledgerline/ledgerline-backend/pkg/pubsub"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
)

const serviceName = "analytics-worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatal(ctx, logg, "config load failed", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal(ctx, logg, "redis connect failed", err)
	}
	defer closeResource(ctx, logg, "redis", redisClient.Close)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		fatal(ctx, logg, "pubsub connect failed", err)
	}
	defer closeResource(ctx, logg, "pubsub", pubsubClient.Close)

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		fatal(ctx, logg, "bigquery connect failed", err)
	}
	defer closeResource(ctx, logg, "bigquery", bqClient.Close)

	subscription := pubsubClient.AnalyticsSubscription()
	if subscription == nil {
		fatal(ctx, logg, "analytics subscription missing", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		fatal(ctx, logg, "idempotency manager init failed", err)
	}

	analyticsWriter, err := writer.New(bqClient, writer.Config{
		ImportEventsTable:   cfg.BigQuery.ImportEventsTable,
		SnapshotEventsTable: cfg.BigQuery.SnapshotEventsTable,
	})
	if err != nil {
		fatal(ctx, logg, "bigquery writer init failed", err)
	}

	routingHandler, err := router.NewRouter(analyticsWriter, logg, nil)
	if err != nil {
		fatal(ctx, logg, "event router init failed", err)
	}

	service, err := worker.NewService(subscription, routingHandler, manager, logg)
	if err != nil {
		fatal(ctx, logg, "worker init failed", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
	})
	logg.Info(runCtx, "analytics worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		fatal(runCtx, logg, "analytics worker stopped unexpectedly", err)
	}

	logg.Info(runCtx, "analytics worker shutting down")
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
