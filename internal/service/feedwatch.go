package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"copytrade/internal/alert"
	"copytrade/internal/client/feed"
	"copytrade/internal/config"
	"copytrade/internal/models"
	"copytrade/internal/rebalance"
	"copytrade/internal/repository"
)

const (
	changeAdded   = "added"
	changeRemoved = "removed"
	changeRatio   = "ratio"
)

// FeedWatcher observes the model portfolio between polls and records
// additions, removals, and total-ratio moves above the configured threshold.
// It never places orders; its output is journal rows and alert events for
// the operator. The first successful poll only seeds the comparison state,
// so a restart does not report the whole portfolio as newly added.
type FeedWatcher struct {
	Feed     *feed.Client
	Repo     repository.Repository
	Notifier alert.Notifier
	Logger   *zap.Logger
	Config   config.MonitorConfig
	Market   string

	previous map[string]rebalance.Target
	seeded   bool
}

func (w *FeedWatcher) Run(ctx context.Context) error {
	if w == nil || w.Feed == nil {
		return nil
	}
	if w.Logger != nil {
		w.Logger.Info("feed watcher started",
			zap.String("market", w.Market),
			zap.Duration("interval", w.Config.Interval),
		)
	}
	for {
		if err := w.poll(ctx); err != nil {
			if w.Logger != nil {
				w.Logger.Warn("feed watch poll failed", zap.Error(err))
			}
		}
		if err := sleep(ctx, w.Config.Interval); err != nil {
			return err
		}
	}
}

func (w *FeedWatcher) poll(ctx context.Context) error {
	targets, _, err := w.Feed.Fetch(ctx)
	if err != nil {
		return err
	}
	if !w.seeded {
		w.previous = targets
		w.seeded = true
		return nil
	}
	for _, c := range diffTargets(w.previous, targets, decimal.NewFromFloat(w.Config.RatioThreshold)) {
		w.record(ctx, c)
	}
	w.previous = targets
	return nil
}

type targetDiff struct {
	code       string
	change     string
	totalRatio decimal.Decimal
	ratioDelta decimal.Decimal
	price      decimal.Decimal
}

// diffTargets compares consecutive feed documents. Ratio moves within the
// threshold are suppressed for the same reason adjustment deltas are: the
// feed republishes drifting ratios every few seconds and only deliberate
// rebalances are worth waking an operator for.
func diffTargets(prev, next map[string]rebalance.Target, threshold decimal.Decimal) []targetDiff {
	diffs := make([]targetDiff, 0)
	for code, t := range next {
		p, ok := prev[code]
		if !ok {
			diffs = append(diffs, targetDiff{
				code:       code,
				change:     changeAdded,
				totalRatio: t.TotalRatio,
				ratioDelta: t.TotalRatio,
				price:      t.CurrentPrice,
			})
			continue
		}
		delta := t.TotalRatio.Sub(p.TotalRatio)
		if delta.Abs().GreaterThan(threshold) {
			diffs = append(diffs, targetDiff{
				code:       code,
				change:     changeRatio,
				totalRatio: t.TotalRatio,
				ratioDelta: delta,
				price:      t.CurrentPrice,
			})
		}
	}
	for code, p := range prev {
		if _, ok := next[code]; !ok {
			diffs = append(diffs, targetDiff{
				code:       code,
				change:     changeRemoved,
				totalRatio: decimal.Zero,
				ratioDelta: p.TotalRatio.Neg(),
				price:      p.CurrentPrice,
			})
		}
	}
	return diffs
}

func (w *FeedWatcher) record(ctx context.Context, c targetDiff) {
	if w.Logger != nil {
		w.Logger.Info("model portfolio changed",
			zap.String("stock_code", c.code),
			zap.String("change", c.change),
			zap.String("total_ratio", c.totalRatio.String()),
			zap.String("ratio_delta", c.ratioDelta.String()),
		)
	}
	if w.Repo != nil {
		item := &models.TargetChange{
			StockCode:    c.code,
			Change:       c.change,
			TotalRatio:   c.totalRatio,
			RatioDelta:   c.ratioDelta,
			CurrentPrice: c.price,
			Market:       w.Market,
			CreatedAt:    time.Now().UTC(),
		}
		if err := w.Repo.InsertTargetChange(ctx, item); err != nil && w.Logger != nil {
			w.Logger.Warn("target change insert failed", zap.Error(err))
		}
	}
	if w.Notifier != nil {
		w.Notifier.Notify(ctx, alert.Event{
			Level:   alert.LevelInfo,
			Code:    alert.CodeTargetChange,
			Message: "model portfolio changed",
			Fields: map[string]any{
				"stock_code":  c.code,
				"change":      c.change,
				"total_ratio": c.totalRatio.String(),
				"ratio_delta": c.ratioDelta.String(),
			},
		})
	}
}
