package repository

import (
	"context"
	"time"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type SentimentRepository interface {
	GetAssetSentiments(ctx context.Context, since time.Time) (map[string]dto.AssetSentiment, error)
	CountArticles(ctx context.Context, since time.Time) (int64, error)
}

type sentimentRepository struct {
	db *gorm.DB
}

func NewSentimentRepository(db *gorm.DB) SentimentRepository {
	return &sentimentRepository{db: db}
}

// GetAssetSentiments aggregates the stored articles since the given time
// into a mean sentiment and keyword-hit count per asset. Assets without
// articles are simply absent from the result; the signal builder treats
// absence as neutral.
func (r *sentimentRepository) GetAssetSentiments(ctx context.Context, since time.Time) (map[string]dto.AssetSentiment, error) {
	var rows []dto.AssetSentiment
	if err := r.db.WithContext(ctx).
		Model(&entity.NewsArticle{}).
		Select("asset_code, AVG(sentiment_score) AS mean_score, COUNT(*) AS article_count, SUM(keyword_hits) AS keyword_hits").
		Where("published_at >= ? AND asset_code <> ''", since).
		Group("asset_code").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sentiments := make(map[string]dto.AssetSentiment, len(rows))
	for _, row := range rows {
		sentiments[row.AssetCode] = row
	}
	return sentiments, nil
}

func (r *sentimentRepository) CountArticles(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.NewsArticle{}).
		Where("published_at >= ?", since).
		Count(&count).Error
	return count, err
}
