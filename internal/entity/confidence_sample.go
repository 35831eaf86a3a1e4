package entity

import "time"

// ConfidenceSample is one backtest confidence value. The stored distribution
// is read-only input for the selector's top-fraction cutoff.
type ConfidenceSample struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AssetCode  string    `gorm:"not null" json:"asset_code"`
	Confidence float64   `gorm:"not null" json:"confidence"`
	SampleDate time.Time `gorm:"not null;index" json:"sample_date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ConfidenceSample) TableName() string {
	return "confidence_samples"
}
