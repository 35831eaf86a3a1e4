package entity

import (
	"time"

	"gorm.io/gorm"
)

// NewsArticle is one scraped news item with its sentiment scoring.
type NewsArticle struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Link           string         `gorm:"not null" json:"link"`
	HashIdentifier string         `gorm:"not null;uniqueIndex" json:"hash_identifier"`
	Summary        string         `json:"summary"`
	AssetCode      string         `gorm:"index" json:"asset_code"` // empty for market-wide articles
	SentimentScore float64        `gorm:"not null" json:"sentiment_score"`
	SentimentLabel string         `gorm:"not null" json:"sentiment_label"`
	KeywordHits    int            `gorm:"not null" json:"keyword_hits"`
	Source         string         `json:"source"`
	PublishedAt    time.Time      `gorm:"not null;index" json:"published_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}
