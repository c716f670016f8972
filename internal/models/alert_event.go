package models

import (
	"time"

	"gorm.io/datatypes"
)

type AlertEvent struct {
	ID      uint64         `gorm:"primaryKey;autoIncrement"`
	Level   string         `gorm:"type:varchar(10);not null;index"`
	Code    string         `gorm:"type:varchar(50);not null;index"`
	Message string         `gorm:"type:text;not null"`
	Fields  datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AlertEvent) TableName() string {
	return "alert_events"
}
