package service

import (
	"testing"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredAsset(assetCode string, confidence float64) dto.ScoredAsset {
	return dto.ScoredAsset{
		Signal:     dto.AssetSignal{AssetCode: assetCode, Price: 100},
		Confidence: confidence,
	}
}

func TestSignalSelector_Select(t *testing.T) {
	selector := NewSignalSelector(config.Strategy{MinConfidence: 0.52}, newTestLogger(t))

	t.Run("keeps only the highest candidate", func(t *testing.T) {
		scored := []dto.ScoredAsset{
			scoredAsset("AIR.PA", 0.9),
			scoredAsset("MC.PA", 0.6),
		}

		selected := selector.Select(scored, 0.55, true, nil)
		require.NotNil(t, selected)
		assert.Equal(t, "AIR.PA", selected.Signal.AssetCode)
	})

	t.Run("quantile cutoff raises the floor", func(t *testing.T) {
		scored := []dto.ScoredAsset{
			scoredAsset("AIR.PA", 0.60),
			scoredAsset("MC.PA", 0.75),
		}

		selected := selector.Select(scored, 0.70, true, nil)
		require.NotNil(t, selected)
		assert.Equal(t, "MC.PA", selected.Signal.AssetCode)
	})

	t.Run("absolute floor stands alone without a distribution", func(t *testing.T) {
		scored := []dto.ScoredAsset{scoredAsset("AIR.PA", 0.53)}

		selected := selector.Select(scored, 0, false, nil)
		require.NotNil(t, selected)
		assert.Equal(t, "AIR.PA", selected.Signal.AssetCode)
	})

	t.Run("nothing clears the floor", func(t *testing.T) {
		scored := []dto.ScoredAsset{
			scoredAsset("AIR.PA", 0.40),
			scoredAsset("MC.PA", 0.51),
		}

		assert.Nil(t, selector.Select(scored, 0, false, nil))
	})

	t.Run("held asset is never re-entered", func(t *testing.T) {
		scored := []dto.ScoredAsset{
			scoredAsset("AIR.PA", 0.9),
			scoredAsset("MC.PA", 0.8),
		}

		selected := selector.Select(scored, 0, false, map[string]bool{"AIR.PA": true})
		require.NotNil(t, selected)
		assert.Equal(t, "MC.PA", selected.Signal.AssetCode)
	})

	t.Run("ties break lexically", func(t *testing.T) {
		scored := []dto.ScoredAsset{
			scoredAsset("MC.PA", 0.8),
			scoredAsset("AIR.PA", 0.8),
		}

		selected := selector.Select(scored, 0, false, nil)
		require.NotNil(t, selected)
		assert.Equal(t, "AIR.PA", selected.Signal.AssetCode)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, selector.Select(nil, 0.7, true, nil))
	})
}
