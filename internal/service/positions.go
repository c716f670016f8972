package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"copytrade/internal/models"
	"copytrade/internal/rebalance"
	"copytrade/internal/repository"
)

// PositionService adapts broker-reported positions into the normalized
// holding records the reconciliation engine consumes.
type PositionService struct {
	Gateway       Gateway
	Repo          repository.Repository
	Logger        *zap.Logger
	BaselineFloor decimal.Decimal
}

// Holdings queries the broker and returns current holdings keyed by code.
// Zero-quantity rows (settled closures the gateway still reports) are
// dropped. Read-only.
func (s *PositionService) Holdings(ctx context.Context) (map[string]rebalance.Holding, error) {
	if s == nil || s.Gateway == nil {
		return nil, nil
	}
	rows, err := s.Gateway.Positions(ctx)
	if err != nil {
		return nil, err
	}
	holdings := make(map[string]rebalance.Holding, len(rows))
	for _, row := range rows {
		if row.Quantity.IsZero() {
			continue
		}
		holdings[row.Code] = rebalance.Holding{
			Code:        row.Code,
			Quantity:    row.Quantity,
			MarketValue: row.MarketValue,
		}
	}
	return holdings, nil
}

// SnapshotPortfolio records the current holdings total and derived baseline.
// Runs on a cron schedule; one row per invocation.
func (s *PositionService) SnapshotPortfolio(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	holdings, err := s.Holdings(ctx)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.MarketValue)
	}
	item := &models.PortfolioSnapshot{
		SnapshotAt:     time.Now().UTC().Truncate(time.Minute),
		Positions:      len(holdings),
		TotalMarketVal: total,
		Baseline:       rebalance.Baseline(holdings, s.BaselineFloor),
		Market:         s.Gateway.Market(),
		Environment:    s.Gateway.Environment(),
	}
	if err := s.Repo.InsertPortfolioSnapshot(ctx, item); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Debug("portfolio snapshot recorded",
			zap.Int("positions", item.Positions),
			zap.String("total_market_val", item.TotalMarketVal.String()),
		)
	}
	return nil
}
