package entity

import "time"

// PortfolioSnapshot is the end-of-run record of portfolio state, one per
// completed daily cycle.
type PortfolioSnapshot struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Capital        float64   `gorm:"not null" json:"capital"`
	Cash           float64   `gorm:"not null" json:"cash"`
	PositionsValue float64   `gorm:"not null" json:"positions_value"`
	TotalValue     float64   `gorm:"not null" json:"total_value"`
	Return         float64   `gorm:"not null" json:"return"`
	PositionsCount int       `gorm:"not null" json:"positions_count"`
	RunDate        time.Time `gorm:"not null;index" json:"run_date"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}
