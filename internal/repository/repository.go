package repository

import (
	"context"
	"time"

	"copytrade/internal/models"
)

type ListOrderRecordsParams struct {
	Limit     int
	Offset    int
	StockCode *string
	Status    *string
}

type ListTargetChangesParams struct {
	Limit     int
	Offset    int
	StockCode *string
	Market    *string
}

// Repository is the persistence surface shared by the trader, the feed
// monitor, and the HTTP handlers.
type Repository interface {
	InsertOrderRecord(ctx context.Context, item *models.OrderRecord) error
	ListOrderRecords(ctx context.Context, params ListOrderRecordsParams) ([]models.OrderRecord, error)
	CountOrderRecords(ctx context.Context, params ListOrderRecordsParams) (int64, error)

	InsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error
	ListPortfolioSnapshots(ctx context.Context, limit int) ([]models.PortfolioSnapshot, error)

	InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error
	DeleteFeedSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	InsertTargetChange(ctx context.Context, item *models.TargetChange) error
	ListTargetChanges(ctx context.Context, params ListTargetChangesParams) ([]models.TargetChange, error)

	InsertAlertEvent(ctx context.Context, item *models.AlertEvent) error
	DeleteAlertEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
