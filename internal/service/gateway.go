package service

import (
	"context"

	"copytrade/internal/client/broker"
)

// Gateway is the slice of the broker session the services need. The real
// implementation is a single shared *broker.Session; tests plug in a stub.
type Gateway interface {
	Positions(ctx context.Context) ([]broker.Position, error)
	AccountInfo(ctx context.Context) (broker.AccountInfo, error)
	Unlock(ctx context.Context) error
	PlaceMarketOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error)
	AccountID() uint64
	Market() string
	Environment() string
}
