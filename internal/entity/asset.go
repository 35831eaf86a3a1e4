package entity

import (
	"time"

	"gorm.io/gorm"
)

// Asset is one instrument of the fixed trading universe.
type Asset struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"not null;uniqueIndex" json:"code"`
	Name      string         `gorm:"not null" json:"name"`
	Keywords  string         `gorm:"not null" json:"keywords"` // comma-separated news-matching terms
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (Asset) TableName() string {
	return "assets"
}
