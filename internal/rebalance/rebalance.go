// Package rebalance turns a target allocation and the live holdings into an
// ordered list of sizing deltas. It is pure computation: no clock, no I/O,
// no broker state beyond what the caller passes in.
package rebalance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Target is one instrument's desired allocation from the model-portfolio
// feed, after fixed-point descaling. Ratios are percentages on a 0-100 scale.
type Target struct {
	Code            string
	TotalRatio      decimal.Decimal
	PositionRatio   decimal.Decimal
	CostPrice       decimal.Decimal
	CurrentPrice    decimal.Decimal
	ProfitLossRatio decimal.Decimal
}

// Holding is one instrument actually held at the broker.
type Holding struct {
	Code        string
	Quantity    decimal.Decimal
	MarketValue decimal.Decimal
}

type DeltaKind string

const (
	DeltaOpen   DeltaKind = "OPEN"
	DeltaClose  DeltaKind = "CLOSE"
	DeltaAdjust DeltaKind = "ADJUST"
)

// Delta is one sizing instruction. CLOSE deltas carry a signed Quantity;
// OPEN and ADJUST deltas carry a signed Notional plus the reference Price
// used to convert it into shares downstream.
type Delta struct {
	Code     string
	Kind     DeltaKind
	Quantity decimal.Decimal
	Notional decimal.Decimal
	Price    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Baseline derives the account value used as 100% for ratio-to-notional
// conversion: the sum of current holding market values, floored so a nearly
// empty account still sizes opens off something sensible. Recomputed every
// cycle, never carried forward.
func Baseline(holdings map[string]Holding, floor decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.MarketValue)
	}
	if total.LessThan(floor) {
		return floor
	}
	return total
}

// Reconcile compares live holdings against the target allocation and emits
// deltas in three passes: closures, then adjustments, then opens. Closures
// come first so the cash they free is conceptually available before new
// positions are sized. Adjustments inside the threshold band are suppressed;
// the feed and the holdings are polled independently and a hysteresis band is
// the only defense against order flapping from price noise.
func Reconcile(current map[string]Holding, target map[string]Target, baseline, threshold decimal.Decimal) []Delta {
	deltas := make([]Delta, 0, len(current)+len(target))

	for _, code := range sortedHoldingCodes(current) {
		if _, ok := target[code]; ok {
			continue
		}
		h := current[code]
		deltas = append(deltas, Delta{
			Code:     code,
			Kind:     DeltaClose,
			Quantity: h.Quantity.Neg(),
		})
	}

	for _, code := range sortedTargetCodes(target) {
		h, held := current[code]
		if !held {
			continue
		}
		t := target[code]
		targetNotional := t.TotalRatio.Mul(baseline).Div(hundred)
		diff := targetNotional.Sub(h.MarketValue)
		if diff.Abs().LessThanOrEqual(threshold) {
			continue
		}
		deltas = append(deltas, Delta{
			Code:     code,
			Kind:     DeltaAdjust,
			Notional: diff,
			Price:    t.CurrentPrice,
		})
	}

	for _, code := range sortedTargetCodes(target) {
		if _, held := current[code]; held {
			continue
		}
		t := target[code]
		deltas = append(deltas, Delta{
			Code:     code,
			Kind:     DeltaOpen,
			Notional: t.TotalRatio.Mul(baseline).Div(hundred),
			Price:    t.CurrentPrice,
		})
	}

	return deltas
}

func sortedHoldingCodes(m map[string]Holding) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func sortedTargetCodes(m map[string]Target) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
