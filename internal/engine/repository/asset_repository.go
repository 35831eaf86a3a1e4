package repository

import (
	"context"

	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type AssetRepository interface {
	GetAssets(ctx context.Context) ([]entity.Asset, error)
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetAssets(ctx context.Context) ([]entity.Asset, error) {
	var assets []entity.Asset
	if err := r.db.WithContext(ctx).Order("code asc").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
