package entity

import "time"

const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"
)

// Position is a single long-only trade record for one asset. A closed
// position is never reopened; re-entering the same asset creates a new row.
type Position struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssetCode      string     `gorm:"not null;index" json:"asset_code"`
	EntryPrice     float64    `gorm:"not null" json:"entry_price"`
	Size           float64    `gorm:"not null" json:"size"` // fraction of capital, (0,1]
	EntryAt        time.Time  `gorm:"not null" json:"entry_at"`
	Status         string     `gorm:"not null;default:OPEN" json:"status"`
	ExitPrice      *float64   `json:"exit_price"`
	RealizedReturn *float64   `json:"realized_return"`
	CloseReason    string     `json:"close_reason"`
	ClosedAt       *time.Time `json:"closed_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// IsOpen reports whether the position is still held.
func (p Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// HoldingDays returns the number of whole days the position has been held.
func (p Position) HoldingDays(now time.Time) int {
	end := now
	if p.ClosedAt != nil {
		end = *p.ClosedAt
	}
	return int(end.Sub(p.EntryAt).Hours() / 24)
}
