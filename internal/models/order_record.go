package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one row per order attempt, placed or rejected.
// It is an audit trail, not an order-state machine.
type OrderRecord struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	ClientOrderID string `gorm:"type:varchar(40);not null;uniqueIndex"`
	BrokerOrderID string `gorm:"type:varchar(40);index"`
	StockCode     string `gorm:"type:varchar(20);not null;index"`

	Side string `gorm:"type:varchar(10);not null"`
	Kind string `gorm:"type:varchar(10);not null"`

	Quantity decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Price    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Notional decimal.Decimal `gorm:"type:numeric(30,6);not null;default:0"`

	Status        string `gorm:"type:varchar(20);not null;index"`
	FailureReason string `gorm:"type:text"`

	AccountID   uint64 `gorm:"not null;index"`
	Market      string `gorm:"type:varchar(5);not null"`
	Environment string `gorm:"type:varchar(10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (OrderRecord) TableName() string {
	return "order_records"
}
