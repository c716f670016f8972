package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

const sampleDoc = `{
  "data": {
    "record_items": [
      {
        "stock_code": "AAPL",
        "total_ratio": 255000000,
        "position_ratio": 100000000,
        "cost_price": 150500000000,
        "current_price": 180250000000,
        "profit_and_loss_ratio": 19700000
      },
      {
        "stock_code": "NVDA",
        "total_ratio": 120000000
      },
      {
        "total_ratio": 990000000
      }
    ]
  }
}`

func TestFetch_DescalesFixedPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	records, raw, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("raw body is empty")
	}
	// The record without a stock code is dropped.
	if len(records) != 2 {
		t.Fatalf("records=%d want=2", len(records))
	}

	aapl, ok := records["AAPL"]
	if !ok {
		t.Fatalf("AAPL missing")
	}
	if got := aapl.TotalRatio; got.Cmp(decimal.NewFromFloat(25.5)) != 0 {
		t.Fatalf("total_ratio=%s want=25.5", got.String())
	}
	if got := aapl.PositionRatio; got.Cmp(decimal.NewFromInt(10)) != 0 {
		t.Fatalf("position_ratio=%s want=10", got.String())
	}
	if got := aapl.CostPrice; got.Cmp(decimal.NewFromFloat(150.5)) != 0 {
		t.Fatalf("cost_price=%s want=150.5", got.String())
	}
	if got := aapl.CurrentPrice; got.Cmp(decimal.NewFromFloat(180.25)) != 0 {
		t.Fatalf("current_price=%s want=180.25", got.String())
	}
	if got := aapl.ProfitLossRatio; got.Cmp(decimal.NewFromFloat(1.97)) != 0 {
		t.Fatalf("pnl_ratio=%s want=1.97", got.String())
	}

	// Missing numeric fields default to zero.
	nvda := records["NVDA"]
	if !nvda.CurrentPrice.IsZero() {
		t.Fatalf("NVDA current_price=%s want=0", nvda.CurrentPrice.String())
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	_, _, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err=%T want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("status=%d want=502", apiErr.Status)
	}
}

func TestFetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [broken`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	records, _, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if records != nil {
		t.Fatalf("records should be nil on malformed payload")
	}
}

func TestFetch_EmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	records, _, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records=%d want=0", len(records))
	}
}
