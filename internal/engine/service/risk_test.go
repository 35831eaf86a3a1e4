package service

import (
	"testing"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-tradebot/internal/engine/dto"
)

func TestRiskEvaluator_Evaluate(t *testing.T) {
	cfg := config.Strategy{StopLoss: -0.08, TakeProfit: 0.10, MaxHoldingDays: 10}
	evaluator := NewRiskEvaluator(cfg, newTestLogger(t))

	entryAt := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	now := entryAt.AddDate(0, 0, 3)

	t.Run("stop loss breach closes", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 91.0}, now)
		require.Len(t, actions, 1)
		assert.Equal(t, dto.ActionKindClose, actions[0].Kind)
		assert.Equal(t, dto.ReasonStopLoss, actions[0].Reason)
		assert.InDelta(t, -0.09, actions[0].Return, 1e-9)
	})

	t.Run("exact stop loss bound closes", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 92.0}, now)
		require.Len(t, actions, 1)
		assert.Equal(t, dto.ReasonStopLoss, actions[0].Reason)
	})

	t.Run("take profit breach closes", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 111.0}, now)
		require.Len(t, actions, 1)
		assert.Equal(t, dto.ReasonTakeProfit, actions[0].Reason)
		assert.InDelta(t, 0.11, actions[0].Return, 1e-9)
	})

	t.Run("within bounds holds", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 103.0}, now)
		assert.Empty(t, actions)
	})

	t.Run("missing price holds", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{}, now)
		assert.Empty(t, actions)
	})

	t.Run("holding period expiry closes", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 102.0}, entryAt.AddDate(0, 0, 10))
		require.Len(t, actions, 1)
		assert.Equal(t, dto.ReasonMaxHold, actions[0].Reason)
	})

	t.Run("stop loss wins over expired holding period", func(t *testing.T) {
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := evaluator.Evaluate(positions, map[string]float64{"AIR.PA": 90.0}, entryAt.AddDate(0, 0, 30))
		require.Len(t, actions, 1)
		assert.Equal(t, dto.ReasonStopLoss, actions[0].Reason)
	})

	t.Run("at most one close per position", func(t *testing.T) {
		positions := []entity.Position{
			openPosition("AIR.PA", 0.25, 100, entryAt),
			openPosition("MC.PA", 0.25, 600, entryAt),
		}
		prices := map[string]float64{"AIR.PA": 80.0, "MC.PA": 700.0}

		actions := evaluator.Evaluate(positions, prices, now)
		require.Len(t, actions, 2)
		assert.Equal(t, "AIR.PA", actions[0].AssetCode)
		assert.Equal(t, dto.ReasonStopLoss, actions[0].Reason)
		assert.Equal(t, "MC.PA", actions[1].AssetCode)
		assert.Equal(t, dto.ReasonTakeProfit, actions[1].Reason)
	})

	t.Run("disabled holding period never closes", func(t *testing.T) {
		noHold := NewRiskEvaluator(config.Strategy{StopLoss: -0.08, TakeProfit: 0.10}, newTestLogger(t))
		positions := []entity.Position{openPosition("AIR.PA", 0.25, 100, entryAt)}

		actions := noHold.Evaluate(positions, map[string]float64{"AIR.PA": 101.0}, entryAt.AddDate(1, 0, 0))
		assert.Empty(t, actions)
	})
}
