package entity

import "time"

// ModelScore is the latest model probability for one asset, written by the
// external training pipeline once per day.
type ModelScore struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssetCode   string    `gorm:"not null;index" json:"asset_code"`
	Probability float64   `gorm:"not null" json:"probability"` // in [0,1]
	ScoredAt    time.Time `gorm:"not null;index" json:"scored_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ModelScore) TableName() string {
	return "model_scores"
}
