package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"copytrade/internal/client/broker"
	"copytrade/internal/models"
	"copytrade/internal/repository"
)

type stubGateway struct {
	positions    []broker.Position
	positionsErr error
	account      broker.AccountInfo
	accountErr   error
	result       broker.OrderResult
	placeErr     error
	placed       []broker.OrderRequest
	unlocked     int
	market       string
	env          string
}

func (g *stubGateway) Positions(ctx context.Context) ([]broker.Position, error) {
	return g.positions, g.positionsErr
}

func (g *stubGateway) AccountInfo(ctx context.Context) (broker.AccountInfo, error) {
	return g.account, g.accountErr
}

func (g *stubGateway) Unlock(ctx context.Context) error {
	g.unlocked++
	return nil
}

func (g *stubGateway) PlaceMarketOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	g.placed = append(g.placed, req)
	return g.result, g.placeErr
}

func (g *stubGateway) AccountID() uint64 { return 42 }

func (g *stubGateway) Market() string {
	if g.market == "" {
		return broker.MarketUS
	}
	return g.market
}

func (g *stubGateway) Environment() string {
	if g.env == "" {
		return broker.EnvSimulate
	}
	return g.env
}

type memoryRepo struct {
	orders    []models.OrderRecord
	snapshots []models.PortfolioSnapshot
	feeds     []models.FeedSnapshot
	changes   []models.TargetChange
	alerts    []models.AlertEvent
}

func (r *memoryRepo) InsertOrderRecord(ctx context.Context, item *models.OrderRecord) error {
	r.orders = append(r.orders, *item)
	return nil
}

func (r *memoryRepo) ListOrderRecords(ctx context.Context, params repository.ListOrderRecordsParams) ([]models.OrderRecord, error) {
	return r.orders, nil
}

func (r *memoryRepo) CountOrderRecords(ctx context.Context, params repository.ListOrderRecordsParams) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *memoryRepo) InsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error {
	r.snapshots = append(r.snapshots, *item)
	return nil
}

func (r *memoryRepo) ListPortfolioSnapshots(ctx context.Context, limit int) ([]models.PortfolioSnapshot, error) {
	return r.snapshots, nil
}

func (r *memoryRepo) InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error {
	r.feeds = append(r.feeds, *item)
	return nil
}

func (r *memoryRepo) DeleteFeedSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryRepo) InsertTargetChange(ctx context.Context, item *models.TargetChange) error {
	r.changes = append(r.changes, *item)
	return nil
}

func (r *memoryRepo) ListTargetChanges(ctx context.Context, params repository.ListTargetChangesParams) ([]models.TargetChange, error) {
	return r.changes, nil
}

func (r *memoryRepo) InsertAlertEvent(ctx context.Context, item *models.AlertEvent) error {
	r.alerts = append(r.alerts, *item)
	return nil
}

func (r *memoryRepo) DeleteAlertEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
