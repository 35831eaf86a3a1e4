package service

import (
	"errors"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"
)

// ExecutionPlanner merges risk-driven closes with the selector's entry
// candidate into an ordered, non-conflicting action list, applying each
// action to the ledger as it goes. Closes run first so freed capacity is
// visible before the entry is sized.
type ExecutionPlanner struct {
	cfg config.Strategy
	log *logger.Logger
}

func NewExecutionPlanner(cfg config.Strategy, log *logger.Logger) *ExecutionPlanner {
	return &ExecutionPlanner{cfg: cfg, log: log}
}

// Plan applies the close actions and at most one open action to the ledger
// and returns the actions that actually took effect, closes first. A ledger
// fault aborts only the offending action, never the run.
func (p *ExecutionPlanner) Plan(ledger *Ledger, closes []dto.TradeAction, candidate *dto.ScoredAsset, now time.Time) []dto.TradeAction {
	actions := make([]dto.TradeAction, 0, len(closes)+1)

	for _, action := range closes {
		if _, err := ledger.Close(action.AssetCode, action.Price, action.Reason, now); err != nil {
			// A close for a position the ledger does not hold is a planning
			// defect upstream; surface it and drop the action.
			p.log.Error("Dropping close action rejected by ledger",
				logger.ErrorField(err),
				logger.StringField("asset_code", action.AssetCode),
				logger.StringField("reason", action.Reason),
			)
			continue
		}
		actions = append(actions, action)
	}

	if candidate == nil {
		return actions
	}

	if open := p.planOpen(ledger, *candidate, now); open != nil {
		actions = append(actions, *open)
	}

	return actions
}

// planOpen re-verifies the candidate against the post-close ledger state and
// sizes the entry. The selector's view of the ledger may be stale by the
// time closes have been applied, so capacity and duplication are checked
// again here.
func (p *ExecutionPlanner) planOpen(ledger *Ledger, candidate dto.ScoredAsset, now time.Time) *dto.TradeAction {
	assetCode := candidate.Signal.AssetCode

	if !ledger.HasCapacity() {
		p.log.Info("Dropping entry candidate, position capacity is full",
			logger.StringField("asset_code", assetCode),
			logger.Float64Field("confidence", candidate.Confidence),
		)
		return nil
	}

	size := p.cfg.PositionSize
	if available := 1 - ledger.OpenSizeTotal(); size > available {
		// Downgrade the entry to the remaining capital fraction.
		size = available
	}

	minSize := p.cfg.MinPositionSize
	if size <= 0 || (minSize > 0 && size < minSize) {
		p.log.Info("Dropping entry candidate, remaining capital fraction too small",
			logger.StringField("asset_code", assetCode),
			logger.Float64Field("size", size),
		)
		return nil
	}

	if _, err := ledger.Open(assetCode, candidate.Signal.Price, size, now); err != nil {
		if errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrDuplicateAsset) || errors.Is(err, ErrExposureExceeded) {
			p.log.Error("Dropping open action rejected by ledger",
				logger.ErrorField(err),
				logger.StringField("asset_code", assetCode),
			)
			return nil
		}
		p.log.Error("Unexpected ledger failure on open", logger.ErrorField(err), logger.StringField("asset_code", assetCode))
		return nil
	}

	return &dto.TradeAction{
		Kind:       dto.ActionKindOpen,
		AssetCode:  assetCode,
		Price:      candidate.Signal.Price,
		Size:       size,
		Reason:     dto.ReasonSignal,
		Confidence: candidate.Confidence,
	}
}
