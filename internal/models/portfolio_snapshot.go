package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioSnapshot struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SnapshotAt time.Time `gorm:"type:timestamptz;not null;index"`

	Positions      int             `gorm:"not null"`
	TotalMarketVal decimal.Decimal `gorm:"type:numeric(30,6);not null"`
	Baseline       decimal.Decimal `gorm:"type:numeric(30,6);not null"`

	Market      string `gorm:"type:varchar(5);not null"`
	Environment string `gorm:"type:varchar(10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}
