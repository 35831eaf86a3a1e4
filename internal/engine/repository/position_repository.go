package repository

import (
	"context"
	"strings"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

type PositionRepository interface {
	Get(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error)
	GetOpen(ctx context.Context) ([]entity.Position, error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error) {
	var positions []entity.Position

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if len(param.AssetCodes) > 0 {
		qFilter = append(qFilter, "asset_code IN (?)")
		qFilterParam = append(qFilterParam, param.AssetCodes)
	}

	if param.Status != nil {
		qFilter = append(qFilter, "status = ?")
		qFilterParam = append(qFilterParam, *param.Status)
	}

	query := r.db.WithContext(ctx)
	if len(qFilter) > 0 {
		query = query.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}

	if err := query.Order("entry_at asc").Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

// GetOpen returns every OPEN position ordered by entry time ascending.
func (r *positionRepository) GetOpen(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).
		Where("status = ?", entity.PositionStatusOpen).
		Order("entry_at asc").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}
