package repository

import (
	"context"

	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type ModelScoreRepository interface {
	GetLatest(ctx context.Context) (map[string]entity.ModelScore, error)
}

type modelScoreRepository struct {
	db *gorm.DB
}

func NewModelScoreRepository(db *gorm.DB) ModelScoreRepository {
	return &modelScoreRepository{db: db}
}

// GetLatest returns the most recent model score per asset. Scores are written
// by the external training pipeline; freshness is judged by the caller.
func (r *modelScoreRepository) GetLatest(ctx context.Context) (map[string]entity.ModelScore, error) {
	var scores []entity.ModelScore
	if err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (asset_code) *
		     FROM model_scores
		     ORDER BY asset_code, scored_at DESC`).
		Scan(&scores).Error; err != nil {
		return nil, err
	}

	latest := make(map[string]entity.ModelScore, len(scores))
	for _, score := range scores {
		latest[score.AssetCode] = score
	}
	return latest, nil
}
