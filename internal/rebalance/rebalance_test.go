package rebalance

import (
	"testing"

	"github.com/shopspring/decimal"
)

var testThreshold = decimal.NewFromInt(300)

func mkHolding(code string, qty, marketVal int64) Holding {
	return Holding{
		Code:        code,
		Quantity:    decimal.NewFromInt(qty),
		MarketValue: decimal.NewFromInt(marketVal),
	}
}

func mkTarget(code string, totalRatio float64, price float64) Target {
	return Target{
		Code:         code,
		TotalRatio:   decimal.NewFromFloat(totalRatio),
		CurrentPrice: decimal.NewFromFloat(price),
	}
}

func TestBaseline_SumAboveFloor(t *testing.T) {
	holdings := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 10, 8000),
		"US.MSFT": mkHolding("US.MSFT", 20, 7000),
	}
	got := Baseline(holdings, decimal.NewFromInt(10000))
	if got.Cmp(decimal.NewFromInt(15000)) != 0 {
		t.Fatalf("baseline=%s want=15000", got.String())
	}
}

func TestBaseline_FloorApplies(t *testing.T) {
	holdings := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 10, 4000),
	}
	got := Baseline(holdings, decimal.NewFromInt(10000))
	if got.Cmp(decimal.NewFromInt(10000)) != 0 {
		t.Fatalf("baseline=%s want=10000", got.String())
	}
}

func TestBaseline_Empty(t *testing.T) {
	got := Baseline(nil, decimal.NewFromInt(10000))
	if got.Cmp(decimal.NewFromInt(10000)) != 0 {
		t.Fatalf("baseline=%s want=10000", got.String())
	}
}

func TestReconcile_DisjointSets(t *testing.T) {
	current := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 37, 5000),
		"US.MSFT": mkHolding("US.MSFT", 5, 2000),
	}
	target := map[string]Target{
		"US.NVDA": mkTarget("US.NVDA", 25, 100),
		"US.TSLA": mkTarget("US.TSLA", 10, 200),
	}
	baseline := decimal.NewFromInt(10000)

	deltas := Reconcile(current, target, baseline, testThreshold)
	if len(deltas) != 4 {
		t.Fatalf("deltas=%d want=4", len(deltas))
	}
	for _, d := range deltas {
		if d.Kind == DeltaAdjust {
			t.Fatalf("unexpected ADJUST for %s", d.Code)
		}
	}

	closes := map[string]Delta{}
	opens := map[string]Delta{}
	for _, d := range deltas {
		switch d.Kind {
		case DeltaClose:
			closes[d.Code] = d
		case DeltaOpen:
			opens[d.Code] = d
		}
	}
	if len(closes) != 2 || len(opens) != 2 {
		t.Fatalf("closes=%d opens=%d want 2/2", len(closes), len(opens))
	}
	if got := closes["US.AAPL"].Quantity; got.Cmp(decimal.NewFromInt(-37)) != 0 {
		t.Fatalf("close qty=%s want=-37", got.String())
	}
	// 25% of 10000.
	if got := opens["US.NVDA"].Notional; got.Cmp(decimal.NewFromInt(2500)) != 0 {
		t.Fatalf("open notional=%s want=2500", got.String())
	}
	if got := opens["US.NVDA"].Price; got.Cmp(decimal.NewFromInt(100)) != 0 {
		t.Fatalf("open price=%s want=100", got.String())
	}
}

func TestReconcile_ClosuresOrderedFirst(t *testing.T) {
	current := map[string]Holding{
		"US.ZZZZ": mkHolding("US.ZZZZ", 1, 100),
	}
	target := map[string]Target{
		"US.AAAA": mkTarget("US.AAAA", 10, 50),
	}
	deltas := Reconcile(current, target, decimal.NewFromInt(10000), testThreshold)
	if len(deltas) != 2 {
		t.Fatalf("deltas=%d want=2", len(deltas))
	}
	if deltas[0].Kind != DeltaClose {
		t.Fatalf("first delta kind=%s want=CLOSE", deltas[0].Kind)
	}
	if deltas[1].Kind != DeltaOpen {
		t.Fatalf("second delta kind=%s want=OPEN", deltas[1].Kind)
	}
}

func TestReconcile_WithinThresholdNoDelta(t *testing.T) {
	current := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 10, 2200),
	}
	// Target notional = 25% of 10000 = 2500; drift of 300 stays inside the band.
	target := map[string]Target{
		"US.AAPL": mkTarget("US.AAPL", 25, 150),
	}
	deltas := Reconcile(current, target, decimal.NewFromInt(10000), testThreshold)
	if len(deltas) != 0 {
		t.Fatalf("deltas=%d want=0", len(deltas))
	}
}

func TestReconcile_JustOverThreshold(t *testing.T) {
	current := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 10, 2199),
	}
	// Target notional 2500 vs held 2199: drift 301, one past the band.
	target := map[string]Target{
		"US.AAPL": mkTarget("US.AAPL", 25, 150),
	}
	deltas := Reconcile(current, target, decimal.NewFromInt(10000), testThreshold)
	if len(deltas) != 1 {
		t.Fatalf("deltas=%d want=1", len(deltas))
	}
	d := deltas[0]
	if d.Kind != DeltaAdjust {
		t.Fatalf("kind=%s want=ADJUST", d.Kind)
	}
	if d.Notional.Cmp(decimal.NewFromInt(301)) != 0 {
		t.Fatalf("notional=%s want=301", d.Notional.String())
	}
	if d.Price.Cmp(decimal.NewFromInt(150)) != 0 {
		t.Fatalf("price=%s want=150", d.Price.String())
	}
}

func TestReconcile_NegativeAdjustSign(t *testing.T) {
	current := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 10, 2801),
	}
	target := map[string]Target{
		"US.AAPL": mkTarget("US.AAPL", 25, 150),
	}
	deltas := Reconcile(current, target, decimal.NewFromInt(10000), testThreshold)
	if len(deltas) != 1 {
		t.Fatalf("deltas=%d want=1", len(deltas))
	}
	if got := deltas[0].Notional; got.Cmp(decimal.NewFromInt(-301)) != 0 {
		t.Fatalf("notional=%s want=-301", got.String())
	}
}

func TestReconcile_EmptyTargetClosesEverything(t *testing.T) {
	current := map[string]Holding{
		"US.AAPL": mkHolding("US.AAPL", 3, 500),
		"US.MSFT": mkHolding("US.MSFT", 7, 900),
	}
	deltas := Reconcile(current, nil, decimal.NewFromInt(10000), testThreshold)
	if len(deltas) != 2 {
		t.Fatalf("deltas=%d want=2", len(deltas))
	}
	for _, d := range deltas {
		if d.Kind != DeltaClose {
			t.Fatalf("kind=%s want=CLOSE", d.Kind)
		}
		if !d.Quantity.IsNegative() {
			t.Fatalf("close quantity=%s not negative", d.Quantity.String())
		}
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	target := map[string]Target{
		"US.C": mkTarget("US.C", 10, 1),
		"US.A": mkTarget("US.A", 10, 1),
		"US.B": mkTarget("US.B", 10, 1),
	}
	first := Reconcile(nil, target, decimal.NewFromInt(10000), testThreshold)
	for i := 0; i < 10; i++ {
		again := Reconcile(nil, target, decimal.NewFromInt(10000), testThreshold)
		if len(again) != len(first) {
			t.Fatalf("len=%d want=%d", len(again), len(first))
		}
		for j := range again {
			if again[j].Code != first[j].Code {
				t.Fatalf("run %d: order differs at %d: %s vs %s", i, j, again[j].Code, first[j].Code)
			}
		}
	}
}
