package feed

import "github.com/shopspring/decimal"

func ratioFromFixed(v int64) decimal.Decimal {
	return decimal.New(v, -7)
}

func priceFromFixed(v int64) decimal.Decimal {
	return decimal.New(v, -9)
}
