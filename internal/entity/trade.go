package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Trade is the durable log of one executed trade action.
type Trade struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PositionID uint           `gorm:"not null;index" json:"position_id"`
	AssetCode  string         `gorm:"not null;index" json:"asset_code"`
	Kind       string         `gorm:"not null" json:"kind"`   // OPEN or CLOSE
	Reason     string         `gorm:"not null" json:"reason"` // SIGNAL, STOP_LOSS, TAKE_PROFIT, MAX_HOLD
	Price      float64        `gorm:"not null" json:"price"`
	Size       float64        `json:"size"`            // fraction of capital, OPEN only
	Return     float64        `json:"return"`          // realized return, CLOSE only
	Data       datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}
