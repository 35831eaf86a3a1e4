package service

import (
	"testing"
	"time"

	"golang-tradebot/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPosition(assetCode string, size float64, entryPrice float64, entryAt time.Time) entity.Position {
	return entity.Position{
		AssetCode:  assetCode,
		EntryPrice: entryPrice,
		Size:       size,
		EntryAt:    entryAt,
		Status:     entity.PositionStatusOpen,
	}
}

func TestLedger_Open(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	t.Run("opens a position", func(t *testing.T) {
		ledger := NewLedger(3, nil)

		position, err := ledger.Open("AIR.PA", 150.0, 0.25, now)
		require.NoError(t, err)
		assert.Equal(t, entity.PositionStatusOpen, position.Status)
		assert.Equal(t, 0.25, ledger.OpenSizeTotal())
		assert.True(t, ledger.OpenAssets()["AIR.PA"])
	})

	t.Run("rejects beyond capacity", func(t *testing.T) {
		ledger := NewLedger(2, []entity.Position{
			openPosition("AIR.PA", 0.25, 150, now),
			openPosition("MC.PA", 0.25, 600, now),
		})

		_, err := ledger.Open("SAN.PA", 90.0, 0.25, now)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.False(t, ledger.HasCapacity())
	})

	t.Run("rejects duplicate asset", func(t *testing.T) {
		ledger := NewLedger(3, []entity.Position{
			openPosition("AIR.PA", 0.25, 150, now),
		})

		_, err := ledger.Open("AIR.PA", 155.0, 0.25, now)
		assert.ErrorIs(t, err, ErrDuplicateAsset)
	})

	t.Run("rejects exposure above whole capital", func(t *testing.T) {
		ledger := NewLedger(5, []entity.Position{
			openPosition("AIR.PA", 0.5, 150, now),
			openPosition("MC.PA", 0.4, 600, now),
		})

		_, err := ledger.Open("SAN.PA", 90.0, 0.2, now)
		assert.ErrorIs(t, err, ErrExposureExceeded)

		// Exactly filling the remaining fraction is allowed.
		_, err = ledger.Open("SAN.PA", 90.0, 0.1, now)
		assert.NoError(t, err)
		assert.InDelta(t, 1.0, ledger.OpenSizeTotal(), 1e-9)
	})
}

func TestLedger_Close(t *testing.T) {
	entryAt := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	now := entryAt.AddDate(0, 0, 5)

	t.Run("computes realized return and frees capacity", func(t *testing.T) {
		ledger := NewLedger(1, []entity.Position{
			openPosition("AIR.PA", 0.25, 100, entryAt),
		})

		position, err := ledger.Close("AIR.PA", 91.0, "STOP_LOSS", now)
		require.NoError(t, err)
		require.NotNil(t, position.RealizedReturn)
		assert.InDelta(t, -0.09, *position.RealizedReturn, 1e-9)
		assert.Equal(t, entity.PositionStatusClosed, position.Status)
		assert.Equal(t, "STOP_LOSS", position.CloseReason)
		require.NotNil(t, position.ClosedAt)
		assert.Equal(t, now, *position.ClosedAt)

		assert.Empty(t, ledger.OpenPositions())
		assert.Len(t, ledger.ClosedPositions(), 1)
		assert.True(t, ledger.HasCapacity())
	})

	t.Run("close is terminal", func(t *testing.T) {
		ledger := NewLedger(1, []entity.Position{
			openPosition("AIR.PA", 0.25, 100, entryAt),
		})

		_, err := ledger.Close("AIR.PA", 110.0, "TAKE_PROFIT", now)
		require.NoError(t, err)

		_, err = ledger.Close("AIR.PA", 110.0, "TAKE_PROFIT", now)
		assert.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("unknown asset", func(t *testing.T) {
		ledger := NewLedger(1, nil)

		_, err := ledger.Close("MC.PA", 600.0, "STOP_LOSS", now)
		assert.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("reentry after close creates a fresh position", func(t *testing.T) {
		ledger := NewLedger(1, []entity.Position{
			openPosition("AIR.PA", 0.25, 100, entryAt),
		})

		_, err := ledger.Close("AIR.PA", 112.0, "TAKE_PROFIT", now)
		require.NoError(t, err)

		position, err := ledger.Open("AIR.PA", 112.0, 0.25, now)
		require.NoError(t, err)
		assert.Nil(t, position.ExitPrice)
		assert.Len(t, ledger.ClosedPositions(), 1)
		assert.Len(t, ledger.OpenPositions(), 1)
	})
}
