package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeedSnapshot archives the raw feed document from one poll, before any
// descaling, so a bad cycle can be replayed against the original payload.
type FeedSnapshot struct {
	ID      uint64         `gorm:"primaryKey;autoIncrement"`
	Market  string         `gorm:"type:varchar(5);not null;index"`
	Records int            `gorm:"not null"`
	Payload datatypes.JSON `gorm:"type:jsonb"`

	FetchedAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (FeedSnapshot) TableName() string {
	return "feed_snapshots"
}
