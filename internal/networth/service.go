package networth

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox/payloads"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// balanceSource supplies per-account balances with liability sign and
// overrides already applied.
type balanceSource interface {
	Balances(ctx context.Context, scope string) ([]AccountBalance, error)
}

// Service computes net worth buckets and writes daily snapshots.
type Service interface {
	Snapshot(ctx context.Context, scope string, day types.Date) (*models.NetWorthSnapshot, error)
	SnapshotAll(ctx context.Context, day types.Date) (int, error)
	History(ctx context.Context, scope string, rng types.DateRange) ([]models.NetWorthSnapshot, error)
}

type service struct {
	repo     Repository
	balances balanceSource
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
}

// NewService wires a net worth service.
func NewService(repo Repository, balances balanceSource, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("networth repository required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, balances: balances, tx: tx, outbox: outboxSvc, logg: logg}, nil
}

// Snapshot aggregates the scope's balances and writes the row for day.
// Snapshotting the same day again overwrites the stored buckets, so the
// operation can run any number of times per day.
func (s *service) Snapshot(ctx context.Context, scope string, day types.Date) (*models.NetWorthSnapshot, error) {
	if day.IsZero() {
		return nil, errors.New(errors.CodeValidation, "snapshot date is required")
	}

	buckets, err := s.aggregate(ctx, scope)
	if err != nil {
		return nil, err
	}

	var stored *models.NetWorthSnapshot
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		snapshot, upsertErr := s.repo.WithTx(tx).UpsertSnapshot(ctx, &models.NetWorthSnapshot{
			UserScope:        scope,
			SnapshotDate:     day,
			Cash:             buckets.Cash,
			Investments:      buckets.Investments,
			RealEstate:       buckets.RealEstate,
			Crypto:           buckets.Crypto,
			Retirement:       buckets.Retirement,
			Liabilities:      buckets.Liabilities,
			TotalAssets:      buckets.TotalAssets(),
			TotalLiabilities: buckets.Liabilities,
			NetWorth:         buckets.NetWorth(),
		})
		if upsertErr != nil {
			return upsertErr
		}
		stored = snapshot

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNetWorthSnapshotWritten,
			AggregateType: enums.AggregateNetWorthSnapshot,
			AggregateID:   stored.ID,
			Actor:         &outbox.ActorRef{UserScope: scope, Source: "networth"},
			Version:       1,
			Data: payloads.NetWorthSnapshotWrittenEvent{
				SnapshotID:   stored.ID,
				UserScope:    scope,
				SnapshotDate: day,
				Cash:         stored.Cash,
				Investments:  stored.Investments,
				RealEstate:   stored.RealEstate,
				Crypto:       stored.Crypto,
				Retirement:   stored.Retirement,
				Liabilities:  stored.Liabilities,
				TotalAssets:  stored.TotalAssets,
				NetWorth:     stored.NetWorth,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// SnapshotAll writes day's snapshot for every scope with accounts. One
// scope failing does not stop the rest; the combined error reports all
// failures.
func (s *service) SnapshotAll(ctx context.Context, day types.Date) (int, error) {
	scopes, err := s.repo.DistinctScopes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshot scopes: %w", err)
	}

	var errs error
	written := 0
	for _, scope := range scopes {
		if _, err := s.Snapshot(ctx, scope, day); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("scope %s: %w", scope, err))
			continue
		}
		written++
	}

	reportCtx := s.logg.WithFields(ctx, map[string]any{
		"scopes":  len(scopes),
		"written": written,
		"date":    day.String(),
	})
	s.logg.Info(reportCtx, "net worth snapshot sweep complete")
	return written, errs
}

func (s *service) History(ctx context.Context, scope string, rng types.DateRange) ([]models.NetWorthSnapshot, error) {
	if rng.To.IsZero() {
		rng.To = types.Today()
	}
	if rng.From.IsZero() {
		rng.From = rng.To.AddDays(-365)
	}
	if rng.To.Before(rng.From) {
		return nil, errors.New(errors.CodeValidation, "history range end precedes start")
	}
	return s.repo.ListSnapshots(ctx, scope, rng)
}

func (s *service) aggregate(ctx context.Context, scope string) (Buckets, error) {
	balances, err := s.balances.Balances(ctx, scope)
	if err != nil {
		return Buckets{}, err
	}
	return Aggregate(balances), nil
}
