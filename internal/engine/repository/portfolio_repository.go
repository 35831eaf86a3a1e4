package repository

import (
	"context"
	"errors"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/entity"

	"gorm.io/gorm"
)

// RunApply bundles everything one completed run persists. SaveRun applies it
// in a single transaction so a failed run leaves the ledger untouched.
type RunApply struct {
	ClosedPositions []entity.Position
	OpenedPosition  *entity.Position
	Trades          []entity.Trade
	Snapshot        entity.PortfolioSnapshot
}

type PortfolioRepository interface {
	GetLatestSnapshot(ctx context.Context) (*entity.PortfolioSnapshot, error)
	GetSnapshots(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error)
	SaveRun(ctx context.Context, apply RunApply) error
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

// GetLatestSnapshot returns the most recent snapshot, or nil when the
// portfolio has no history yet.
func (r *portfolioRepository) GetLatestSnapshot(ctx context.Context) (*entity.PortfolioSnapshot, error) {
	var snapshot entity.PortfolioSnapshot
	err := r.db.WithContext(ctx).Order("run_date desc").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *portfolioRepository) GetSnapshots(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error) {
	var snapshots []entity.PortfolioSnapshot
	if err := r.db.WithContext(ctx).Order("run_date desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// SaveRun persists the closed positions, the new position, the trade log and
// the end-of-run snapshot atomically.
func (r *portfolioRepository) SaveRun(ctx context.Context, apply RunApply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, position := range apply.ClosedPositions {
			if err := tx.Model(&entity.Position{}).
				Where("id = ? AND status = ?", position.ID, entity.PositionStatusOpen).
				Updates(map[string]interface{}{
					"status":          position.Status,
					"exit_price":      position.ExitPrice,
					"realized_return": position.RealizedReturn,
					"close_reason":    position.CloseReason,
					"closed_at":       position.ClosedAt,
				}).Error; err != nil {
				return err
			}
		}

		if apply.OpenedPosition != nil {
			if err := tx.Create(apply.OpenedPosition).Error; err != nil {
				return err
			}
		}

		for i := range apply.Trades {
			// The OPEN trade references a position that only gets its ID
			// inside this transaction.
			if apply.Trades[i].Kind == dto.ActionKindOpen && apply.Trades[i].PositionID == 0 && apply.OpenedPosition != nil {
				apply.Trades[i].PositionID = apply.OpenedPosition.ID
			}
			if err := tx.Create(&apply.Trades[i]).Error; err != nil {
				return err
			}
		}

		return tx.Create(&apply.Snapshot).Error
	})
}
