package broker

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	MarketUS = "US"
	MarketHK = "HK"

	EnvSimulate = "simulate"
	EnvReal     = "real"

	SideBuy  = "BUY"
	SideSell = "SELL"

	// RetOK and RetFailed are the gateway's order placement result codes.
	RetOK     = 0
	RetFailed = -1
)

// CodePrefix is the market prefix the gateway expects on stock codes,
// e.g. "US." + "AAPL".
func CodePrefix(market string) string {
	return market + "."
}

// CurrencyFor maps a trading market to its settlement currency.
func CurrencyFor(market string) string {
	if market == MarketHK {
		return "HKD"
	}
	return "USD"
}

// Position is one broker-reported holding row.
type Position struct {
	Code        string          `json:"code"`
	Quantity    decimal.Decimal `json:"qty"`
	MarketValue decimal.Decimal `json:"market_val"`
}

// AccountInfo is the account summary used for buying-power math.
type AccountInfo struct {
	TotalAssets decimal.Decimal `json:"total_assets"`
	MarketValue decimal.Decimal `json:"market_val"`
	Currency    string          `json:"currency"`
}

// OrderRequest describes one market order to place.
type OrderRequest struct {
	ClientOrderID string          `json:"client_order_id"`
	Code          string          `json:"code"`
	Side          string          `json:"side"`
	Quantity      decimal.Decimal `json:"qty"`
	Price         decimal.Decimal `json:"price"`
}

// OrderResult is the gateway's response to an order placement. Ret != RetOK
// means the broker rejected the order; that is not a transport error and the
// caller decides how loudly to surface it.
type OrderResult struct {
	Ret     int             `json:"ret"`
	OrderID string          `json:"order_id"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

func (r OrderResult) OK() bool {
	return r.Ret == RetOK
}
