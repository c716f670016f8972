package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TargetChange is one observed move in the model portfolio between polls:
// a code added, removed, or with a total-ratio change above the monitor
// threshold. Observational only; orders are never driven from these rows.
type TargetChange struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	StockCode string `gorm:"type:varchar(20);not null;index"`
	Change    string `gorm:"type:varchar(10);not null"`

	TotalRatio   decimal.Decimal `gorm:"type:numeric(12,6);not null"`
	RatioDelta   decimal.Decimal `gorm:"type:numeric(12,6);not null"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(20,6);not null"`

	Market    string    `gorm:"type:varchar(5);not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (TargetChange) TableName() string {
	return "target_changes"
}
