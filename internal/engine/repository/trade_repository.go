package repository

import (
	"context"

	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type TradeRepository interface {
	GetRecent(ctx context.Context, limit int) ([]entity.Trade, error)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) GetRecent(ctx context.Context, limit int) ([]entity.Trade, error) {
	var trades []entity.Trade
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}
