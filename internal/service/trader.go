package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"copytrade/internal/alert"
	"copytrade/internal/client/broker"
	"copytrade/internal/client/feed"
	"copytrade/internal/config"
	"copytrade/internal/models"
	"copytrade/internal/rebalance"
	"copytrade/internal/repository"
)

// Trader drives the poll/reconcile/execute cycle. Cycles are strictly
// sequential: the next poll is not scheduled until every delta of the
// current cycle has been submitted, which is what keeps buying-power
// accounting coherent without locking.
type Trader struct {
	Feed      *feed.Client
	Positions *PositionService
	Executor  *OrderExecutor
	Repo      repository.Repository
	Notifier  alert.Notifier
	Logger    *zap.Logger
	Config    config.TradingConfig
}

func (t *Trader) Run(ctx context.Context) error {
	if t == nil || t.Feed == nil || t.Positions == nil || t.Executor == nil {
		return nil
	}
	loc, err := time.LoadLocation(t.Config.Timezone)
	if err != nil {
		if t.Logger != nil {
			t.Logger.Warn("invalid trading timezone, using local clock",
				zap.String("timezone", t.Config.Timezone), zap.Error(err))
		}
		loc = time.Local
	}
	if t.Logger != nil {
		t.Logger.Info("trader started",
			zap.String("market", t.Config.Market),
			zap.String("environment", t.Config.Environment),
		)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		delay, open := PollDelay(t.Config.Market, time.Now().In(loc), t.Config.MinPollDelay, t.Config.MaxPollDelay)
		if !open {
			if t.Logger != nil {
				t.Logger.Info("market session closed, pausing",
					zap.String("market", t.Config.Market),
					zap.Duration("pause", t.Config.OffSessionPause),
				)
			}
			if err := sleep(ctx, t.Config.OffSessionPause); err != nil {
				return err
			}
			continue
		}

		if err := t.runCycle(ctx); err != nil {
			if t.Logger != nil {
				t.Logger.Error("trade cycle failed",
					zap.Error(err),
					zap.Stack("stack"),
				)
			}
			if t.Notifier != nil {
				t.Notifier.Notify(ctx, alert.Event{
					Level:   alert.LevelWarn,
					Code:    alert.CodeCycleError,
					Message: "trade cycle failed",
					Fields:  map[string]any{"error": err.Error()},
				})
			}
			if err := sleep(ctx, t.Config.ErrorBackoff); err != nil {
				return err
			}
			continue
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (t *Trader) runCycle(ctx context.Context) error {
	holdings, err := t.Positions.Holdings(ctx)
	if err != nil {
		return err
	}
	baseline := rebalance.Baseline(holdings, decimal.NewFromFloat(t.Config.BaselineFloor))

	targets, raw, err := t.Feed.Fetch(ctx)
	if err != nil {
		// Feed failures are transient by contract: the cycle degrades to a
		// no-op instead of tearing positions down against an empty target.
		if t.Logger != nil {
			t.Logger.Warn("feed fetch failed, skipping cycle", zap.Error(err))
		}
		return nil
	}
	t.archiveFeed(ctx, raw, len(targets))

	prefixed := prefixTargets(targets, broker.CodePrefix(t.Config.Market))
	deltas := rebalance.Reconcile(holdings, prefixed, baseline, decimal.NewFromFloat(t.Config.AdjustThreshold))
	if t.Logger != nil {
		t.Logger.Info("cycle reconciled",
			zap.Int("holdings", len(holdings)),
			zap.Int("targets", len(prefixed)),
			zap.Int("deltas", len(deltas)),
			zap.String("baseline", baseline.String()),
		)
	}

	for _, d := range deltas {
		if err := t.Executor.Submit(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// prefixTargets rekeys feed targets with the market prefix the broker uses
// ("AAPL" -> "US.AAPL") so both sides of the reconciliation share a key space.
func prefixTargets(targets map[string]rebalance.Target, prefix string) map[string]rebalance.Target {
	out := make(map[string]rebalance.Target, len(targets))
	for code, tgt := range targets {
		tgt.Code = prefix + code
		out[tgt.Code] = tgt
	}
	return out
}

func (t *Trader) archiveFeed(ctx context.Context, raw []byte, records int) {
	if t.Repo == nil || len(raw) == 0 {
		return
	}
	item := &models.FeedSnapshot{
		Market:    t.Config.Market,
		Records:   records,
		Payload:   datatypes.JSON(raw),
		FetchedAt: time.Now().UTC(),
	}
	if err := t.Repo.InsertFeedSnapshot(ctx, item); err != nil && t.Logger != nil {
		t.Logger.Warn("feed archive failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
