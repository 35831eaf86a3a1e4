package repository

import (
	"context"

	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type NewsRepository interface {
	Create(ctx context.Context, article *entity.NewsArticle) error
	// ExistsByHash reports whether any stored article derives from the given
	// link hash, whether stored under the bare hash or under a per-asset
	// suffixed form of it.
	ExistsByHash(ctx context.Context, hash string) (bool, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, article *entity.NewsArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *newsRepository) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	// Asset-matched rows are stored under "<hash>:<asset_code>", so the bare
	// hash alone would miss them and the article would be reprocessed on
	// every scan.
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.NewsArticle{}).
		Where("hash_identifier = ? OR hash_identifier LIKE ?", hash, hash+":%").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
