package holdings

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Service serves portfolio reads over stored holdings.
type Service interface {
	Portfolio(ctx context.Context, scope string) (*Portfolio, error)
	History(ctx context.Context, scope, symbol string) ([]models.Holding, error)
}

type service struct {
	repo Repository
}

// NewService wires a holdings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("holdings repository required")
	}
	return &service{repo: repo}, nil
}

// Portfolio is the latest position per symbol plus the summed value.
type Portfolio struct {
	Holdings   []models.Holding `json:"holdings"`
	TotalValue decimal.Decimal  `json:"totalValue"`
	AsOf       *types.Date      `json:"asOf,omitempty"`
}

func (s *service) Portfolio(ctx context.Context, scope string) (*Portfolio, error) {
	rows, err := s.repo.ListLatest(ctx, scope)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{Holdings: rows, TotalValue: decimal.Zero}
	for _, row := range rows {
		portfolio.TotalValue = portfolio.TotalValue.Add(row.MarketValue)
		if portfolio.AsOf == nil || row.AsOf.After(*portfolio.AsOf) {
			asOf := row.AsOf
			portfolio.AsOf = &asOf
		}
	}
	return portfolio, nil
}

func (s *service) History(ctx context.Context, scope, symbol string) ([]models.Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New(errors.CodeValidation, "symbol is required")
	}
	return s.repo.ListBySymbol(ctx, scope, symbol)
}
