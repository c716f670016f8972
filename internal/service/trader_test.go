package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"copytrade/internal/client/broker"
	"copytrade/internal/client/feed"
	"copytrade/internal/config"
)

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCycleClosesAndOpens(t *testing.T) {
	// OLD is held but absent from the feed; NEW is in the feed but not held.
	// total_ratio 50% scaled by 1e7, current_price 100 scaled by 1e9.
	srv := feedServer(t, http.StatusOK, `{
		"data": {"record_items": [
			{"stock_code": "NEW", "total_ratio": 500000000, "current_price": 100000000000}
		]}
	}`)

	gw := &stubGateway{
		positions: []broker.Position{
			{Code: "US.OLD", Quantity: dec("10"), MarketValue: dec("5000")},
		},
		account: broker.AccountInfo{TotalAssets: dec("100000"), MarketValue: dec("5000")},
		result:  broker.OrderResult{Ret: broker.RetOK, OrderID: "ord-1"},
	}
	repo := &memoryRepo{}
	tr := &Trader{
		Feed:      feed.NewClient(srv.Client(), srv.URL),
		Positions: &PositionService{Gateway: gw, Repo: repo},
		Executor:  newExecutor(gw, repo, &recordingNotifier{}, "0"),
		Repo:      repo,
		Config: config.TradingConfig{
			Market:          broker.MarketUS,
			AdjustThreshold: 300,
			BaselineFloor:   10000,
		},
	}

	if err := tr.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if len(gw.placed) != 2 {
		t.Fatalf("expected 2 orders, got %d: %+v", len(gw.placed), gw.placed)
	}
	closeOrder := gw.placed[0]
	if closeOrder.Code != "US.OLD" || closeOrder.Side != broker.SideSell {
		t.Fatalf("first order = %+v, want SELL US.OLD", closeOrder)
	}
	if !closeOrder.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("close quantity = %s, want 10", closeOrder.Quantity)
	}
	// Holdings sum below the floor: baseline 10000, so the open notional is
	// 50% x 10000 = 5000 at price 100.
	openOrder := gw.placed[1]
	if openOrder.Code != "US.NEW" || openOrder.Side != broker.SideBuy {
		t.Fatalf("second order = %+v, want BUY US.NEW", openOrder)
	}
	if !openOrder.Quantity.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("open quantity = %s, want 50", openOrder.Quantity)
	}
	if len(repo.feeds) != 1 {
		t.Fatalf("expected 1 archived feed snapshot, got %d", len(repo.feeds))
	}
}

func TestRunCycleSkipsOnFeedFailure(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, "upstream down")

	gw := &stubGateway{
		positions: []broker.Position{
			{Code: "US.OLD", Quantity: dec("10"), MarketValue: dec("5000")},
		},
	}
	repo := &memoryRepo{}
	tr := &Trader{
		Feed:      feed.NewClient(srv.Client(), srv.URL),
		Positions: &PositionService{Gateway: gw, Repo: repo},
		Executor:  newExecutor(gw, repo, &recordingNotifier{}, "0"),
		Repo:      repo,
		Config: config.TradingConfig{
			Market:          broker.MarketUS,
			AdjustThreshold: 300,
			BaselineFloor:   10000,
		},
	}

	// A feed outage must not be treated as an empty target portfolio.
	if err := tr.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if len(gw.placed) != 0 {
		t.Fatalf("expected no orders during feed outage, got %+v", gw.placed)
	}
}

func TestRunCycleWithinThresholdIsQuiet(t *testing.T) {
	// Held value 10100 vs target 50% of baseline 20200 = 10100: zero drift.
	srv := feedServer(t, http.StatusOK, `{
		"data": {"record_items": [
			{"stock_code": "AAPL", "total_ratio": 500000000, "current_price": 101000000000}
		]}
	}`)

	gw := &stubGateway{
		positions: []broker.Position{
			{Code: "US.AAPL", Quantity: dec("100"), MarketValue: dec("10100")},
			{Code: "US.MSFT", Quantity: dec("25"), MarketValue: dec("10100")},
		},
		account: broker.AccountInfo{TotalAssets: dec("100000"), MarketValue: dec("20200")},
		result:  broker.OrderResult{Ret: broker.RetOK},
	}
	repo := &memoryRepo{}
	tr := &Trader{
		Feed:      feed.NewClient(srv.Client(), srv.URL),
		Positions: &PositionService{Gateway: gw, Repo: repo},
		Executor:  newExecutor(gw, repo, &recordingNotifier{}, "0"),
		Repo:      repo,
		Config: config.TradingConfig{
			Market:          broker.MarketUS,
			AdjustThreshold: 300,
			BaselineFloor:   10000,
		},
	}

	if err := tr.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	// AAPL is exactly on target; MSFT is not in the feed and closes.
	if len(gw.placed) != 1 {
		t.Fatalf("expected only the MSFT close, got %+v", gw.placed)
	}
	if gw.placed[0].Code != "US.MSFT" || gw.placed[0].Side != broker.SideSell {
		t.Fatalf("order = %+v, want SELL US.MSFT", gw.placed[0])
	}
}
