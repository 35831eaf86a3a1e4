package service

import (
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/entity"
	"golang-tradebot/pkg/logger"
)

// RiskEvaluator checks every open position against its stop-loss,
// take-profit and maximum holding period, and emits the resulting close
// actions.
type RiskEvaluator struct {
	cfg config.Strategy
	log *logger.Logger
}

func NewRiskEvaluator(cfg config.Strategy, log *logger.Logger) *RiskEvaluator {
	return &RiskEvaluator{cfg: cfg, log: log}
}

// Evaluate walks the open positions in entry-time order and returns the
// close actions for positions whose return breaches a risk bound. A position
// with no fresh price is held with a warning, never force-closed. At most
// one close is emitted per position: stop-loss is checked first, then
// take-profit, then the holding period.
func (e *RiskEvaluator) Evaluate(positions []entity.Position, prices map[string]float64, now time.Time) []dto.TradeAction {
	var actions []dto.TradeAction

	for _, position := range positions {
		price, ok := prices[position.AssetCode]
		if !ok || price <= 0 {
			e.log.Warn("No fresh price for open position, holding",
				logger.StringField("asset_code", position.AssetCode),
				logger.Float64Field("entry_price", position.EntryPrice),
			)
			continue
		}

		r := (price - position.EntryPrice) / position.EntryPrice

		switch {
		case r <= e.cfg.StopLoss:
			actions = append(actions, dto.TradeAction{
				Kind:      dto.ActionKindClose,
				AssetCode: position.AssetCode,
				Price:     price,
				Return:    r,
				Reason:    dto.ReasonStopLoss,
			})
		case r >= e.cfg.TakeProfit:
			actions = append(actions, dto.TradeAction{
				Kind:      dto.ActionKindClose,
				AssetCode: position.AssetCode,
				Price:     price,
				Return:    r,
				Reason:    dto.ReasonTakeProfit,
			})
		case e.cfg.MaxHoldingDays > 0 && position.HoldingDays(now) >= e.cfg.MaxHoldingDays:
			actions = append(actions, dto.TradeAction{
				Kind:      dto.ActionKindClose,
				AssetCode: position.AssetCode,
				Price:     price,
				Return:    r,
				Reason:    dto.ReasonMaxHold,
			})
		}
	}

	return actions
}
