package controllers

import (
	"context"
	"net/http"

	"github.com/ledgerline/ledgerline-backend/api/responses"
	"github.com/ledgerline/ledgerline-backend/pkg/bigquery"
	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/redis"
	"github.com/ledgerline/ledgerline-backend/pkg/storage/gcs"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ledgerline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency. The storage and bigquery
// clients are optional; a nil client reports skipped instead of failing
// readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger, bigqueryP bigquery.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ledgerline-Env", cfg.App.Env)
		ctx := r.Context()

		status := map[string]string{}
		unhealthy := false
		check := func(name string, p pinger) {
			if p == nil {
				status[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				status[name] = "down"
				unhealthy = true
				logg.Error(logg.WithField(ctx, "dependency", name), "readiness ping failed", err)
				return
			}
			status[name] = "ok"
		}
		check("database", dbP)
		check("redis", redisP)
		check("storage", gcsP)
		check("bigquery", bigqueryP)

		if unhealthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"dependencies": status})
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": status})
	}
}
