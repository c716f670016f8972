package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"copytrade/internal/alert"
	"copytrade/internal/audit"
	"copytrade/internal/client/broker"
	"copytrade/internal/models"
	"copytrade/internal/rebalance"
	"copytrade/internal/repository"
)

type ExecutorConfig struct {
	// CashReserve is subtracted from available cash before sizing buys,
	// keeping a configured cushion out of reach of the rebalancer.
	CashReserve decimal.Decimal
}

// OrderExecutor converts reconciliation deltas into market orders. Invalid
// deltas are skipped with an audit line; broker rejections are surfaced as
// warn events; only infrastructure failures (gateway I/O) return an error.
type OrderExecutor struct {
	Gateway  Gateway
	Repo     repository.Repository
	Audit    *audit.Logger
	Notifier alert.Notifier
	Logger   *zap.Logger
	Config   ExecutorConfig
}

// nominalClosePrice is the placeholder price attached to quantity-sized
// orders; market orders ignore it but the gateway requires a positive value.
var nominalClosePrice = decimal.NewFromInt(1)

func (e *OrderExecutor) Submit(ctx context.Context, d rebalance.Delta) error {
	if e == nil || e.Gateway == nil {
		return nil
	}

	var side string
	var qty, price, notional decimal.Decimal

	if !d.Quantity.IsZero() {
		// Quantity-sized delta (closures): sign picks the side, the
		// reference price is nominal.
		side = broker.SideBuy
		if d.Quantity.IsNegative() {
			side = broker.SideSell
		}
		qty = d.Quantity.Abs()
		price = nominalClosePrice
	} else {
		notional = d.Notional
		price = d.Price
		if price.LessThanOrEqual(decimal.Zero) {
			e.reject(ctx, d, "invalid reference price", price, notional)
			return nil
		}
		if notional.IsZero() {
			e.reject(ctx, d, "zero notional", price, notional)
			return nil
		}
		side = broker.SideBuy
		if notional.IsNegative() {
			side = broker.SideSell
		}
		if side == broker.SideBuy {
			available, err := e.buyingPower(ctx)
			if err != nil {
				return fmt.Errorf("query buying power: %w", err)
			}
			if available.LessThan(notional) {
				e.auditf("order clamped code=%s requested=%s available=%s",
					d.Code, notional.String(), available.String())
				notional = available
			}
		}
		qty = notional.Abs().Div(price).Floor()
	}

	if qty.LessThanOrEqual(decimal.Zero) {
		e.reject(ctx, d, "computed quantity is zero", price, notional)
		return nil
	}

	if e.Gateway.Environment() == broker.EnvReal {
		if err := e.Gateway.Unlock(ctx); err != nil {
			return fmt.Errorf("unlock trade: %w", err)
		}
	}

	req := broker.OrderRequest{
		ClientOrderID: uuid.NewString(),
		Code:          d.Code,
		Side:          side,
		Quantity:      qty,
		Price:         price,
	}
	res, err := e.Gateway.PlaceMarketOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("place order %s: %w", d.Code, err)
	}

	status := "placed"
	if !res.OK() {
		status = "failed"
	}
	e.journal(ctx, d, req, res, status)
	e.auditf("order %s code=%s side=%s qty=%s price=%s notional=%s ret=%d",
		status, d.Code, side, qty.String(), price.String(), notional.String(), res.Ret)

	if !res.OK() {
		e.notify(ctx, alert.Event{
			Level:   alert.LevelWarn,
			Code:    alert.CodeOrderFailed,
			Message: "broker rejected order",
			Fields: map[string]any{
				"stock_code": d.Code,
				"side":       side,
				"qty":        qty.String(),
				"ret":        res.Ret,
				"reason":     res.Message,
			},
		})
		return nil
	}

	e.notify(ctx, alert.Event{
		Level:   alert.LevelInfo,
		Code:    alert.CodeOrderPlaced,
		Message: "order placed",
		Fields: map[string]any{
			"stock_code": d.Code,
			"side":       side,
			"qty":        qty.String(),
			"order_id":   res.OrderID,
		},
	})
	return nil
}

// buyingPower is total account assets minus invested market value minus the
// configured reserve, floored at zero. Queried once per order, not once per
// cycle: cash consumed by an earlier buy in the same cycle is only reflected
// after the gateway settles it, an accepted staleness window.
func (e *OrderExecutor) buyingPower(ctx context.Context) (decimal.Decimal, error) {
	info, err := e.Gateway.AccountInfo(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	available := info.TotalAssets.Sub(info.MarketValue).Sub(e.Config.CashReserve)
	if available.IsNegative() {
		return decimal.Zero, nil
	}
	return available, nil
}

func (e *OrderExecutor) reject(ctx context.Context, d rebalance.Delta, reason string, price, notional decimal.Decimal) {
	e.auditf("order rejected code=%s kind=%s reason=%q price=%s notional=%s",
		d.Code, d.Kind, reason, price.String(), notional.String())
	if e.Logger != nil {
		e.Logger.Warn("order skipped",
			zap.String("stock_code", d.Code),
			zap.String("kind", string(d.Kind)),
			zap.String("reason", reason),
		)
	}
	e.notify(ctx, alert.Event{
		Level:   alert.LevelWarn,
		Code:    alert.CodeOrderRejected,
		Message: "order skipped: " + reason,
		Fields: map[string]any{
			"stock_code": d.Code,
			"kind":       string(d.Kind),
		},
	})
	if e.Repo != nil {
		_ = e.Repo.InsertOrderRecord(ctx, &models.OrderRecord{
			ClientOrderID: uuid.NewString(),
			StockCode:     d.Code,
			Side:          "",
			Kind:          string(d.Kind),
			Quantity:      decimal.Zero,
			Price:         price,
			Notional:      notional,
			Status:        "rejected",
			FailureReason: reason,
			AccountID:     e.Gateway.AccountID(),
			Market:        e.Gateway.Market(),
			Environment:   e.Gateway.Environment(),
		})
	}
}

func (e *OrderExecutor) journal(ctx context.Context, d rebalance.Delta, req broker.OrderRequest, res broker.OrderResult, status string) {
	if e.Repo == nil {
		return
	}
	item := &models.OrderRecord{
		ClientOrderID: req.ClientOrderID,
		BrokerOrderID: res.OrderID,
		StockCode:     req.Code,
		Side:          req.Side,
		Kind:          string(d.Kind),
		Quantity:      req.Quantity,
		Price:         req.Price,
		Notional:      d.Notional,
		Status:        status,
		FailureReason: res.Message,
		AccountID:     e.Gateway.AccountID(),
		Market:        e.Gateway.Market(),
		Environment:   e.Gateway.Environment(),
	}
	if res.OK() {
		item.FailureReason = ""
	}
	if err := e.Repo.InsertOrderRecord(ctx, item); err != nil && e.Logger != nil {
		e.Logger.Warn("order journal insert failed", zap.Error(err))
	}
}

func (e *OrderExecutor) notify(ctx context.Context, ev alert.Event) {
	if e.Notifier != nil {
		e.Notifier.Notify(ctx, ev)
	}
}

func (e *OrderExecutor) auditf(format string, args ...any) {
	if e.Audit != nil {
		e.Audit.Appendf(format, args...)
	}
}
