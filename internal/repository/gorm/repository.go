package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"copytrade/internal/models"
	"copytrade/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertOrderRecord(ctx context.Context, item *models.OrderRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListOrderRecords(ctx context.Context, params repository.ListOrderRecordsParams) ([]models.OrderRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := orderRecordQuery(s.db.WithContext(ctx), params)
	query = query.Order("created_at DESC")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.OrderRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountOrderRecords(ctx context.Context, params repository.ListOrderRecordsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := orderRecordQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func orderRecordQuery(db *gorm.DB, params repository.ListOrderRecordsParams) *gorm.DB {
	query := db.Model(&models.OrderRecord{})
	if params.StockCode != nil && strings.TrimSpace(*params.StockCode) != "" {
		query = query.Where("stock_code = ?", strings.TrimSpace(*params.StockCode))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) InsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListPortfolioSnapshots(ctx context.Context, limit int) ([]models.PortfolioSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.PortfolioSnapshot
	err := s.db.WithContext(ctx).
		Model(&models.PortfolioSnapshot{}).
		Order("snapshot_at DESC").
		Limit(normalizeLimit(limit, 24)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) DeleteFeedSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil || cutoff.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("fetched_at < ?", cutoff).
		Delete(&models.FeedSnapshot{})
	return res.RowsAffected, res.Error
}

func (s *Store) InsertTargetChange(ctx context.Context, item *models.TargetChange) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListTargetChanges(ctx context.Context, params repository.ListTargetChangesParams) ([]models.TargetChange, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.TargetChange{})
	if params.StockCode != nil && strings.TrimSpace(*params.StockCode) != "" {
		query = query.Where("stock_code = ?", strings.TrimSpace(*params.StockCode))
	}
	if params.Market != nil && strings.TrimSpace(*params.Market) != "" {
		query = query.Where("market = ?", strings.TrimSpace(*params.Market))
	}
	var items []models.TargetChange
	err := query.Order("created_at DESC").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertAlertEvent(ctx context.Context, item *models.AlertEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) DeleteAlertEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil || cutoff.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AlertEvent{})
	return res.RowsAffected, res.Error
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
