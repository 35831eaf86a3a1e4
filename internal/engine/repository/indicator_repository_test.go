package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSeries(value float64, n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = value
	}
	return series
}

func risingSeries(start, step float64, n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = start + step*float64(i)
	}
	return series
}

func TestRSI(t *testing.T) {
	t.Run("too short history", func(t *testing.T) {
		_, ok := RSI(constantSeries(100, 14), 14)
		assert.False(t, ok)
	})

	t.Run("all gains", func(t *testing.T) {
		rsi, ok := RSI(risingSeries(100, 1, 30), 14)
		require.True(t, ok)
		assert.Equal(t, 100.0, rsi)
	})

	t.Run("all losses", func(t *testing.T) {
		rsi, ok := RSI(risingSeries(130, -1, 30), 14)
		require.True(t, ok)
		assert.InDelta(t, 0.0, rsi, 1e-9)
	})

	t.Run("balanced moves sit at the midpoint", func(t *testing.T) {
		closes := []float64{100}
		for i := 0; i < 14; i++ {
			if i%2 == 0 {
				closes = append(closes, closes[len(closes)-1]+1)
			} else {
				closes = append(closes, closes[len(closes)-1]-1)
			}
		}
		rsi, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.InDelta(t, 50.0, rsi, 1e-9)
	})

	t.Run("stays within bounds", func(t *testing.T) {
		closes := []float64{100, 103, 99, 104, 101, 108, 107, 110, 106, 111, 109, 113, 112, 115, 114, 118}
		rsi, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.GreaterOrEqual(t, rsi, 0.0)
		assert.LessOrEqual(t, rsi, 100.0)
	})
}

func TestMACD(t *testing.T) {
	t.Run("too short history", func(t *testing.T) {
		_, _, ok := MACD(constantSeries(100, 34), 12, 26, 9)
		assert.False(t, ok)
	})

	t.Run("flat series yields zero lines", func(t *testing.T) {
		macd, signal, ok := MACD(constantSeries(100, 60), 12, 26, 9)
		require.True(t, ok)
		assert.InDelta(t, 0.0, macd, 1e-9)
		assert.InDelta(t, 0.0, signal, 1e-9)
	})

	t.Run("uptrend puts the fast average above the slow", func(t *testing.T) {
		macd, signal, ok := MACD(risingSeries(100, 1, 60), 12, 26, 9)
		require.True(t, ok)
		assert.Greater(t, macd, 0.0)
		assert.Greater(t, macd, signal)
	})

	t.Run("downtrend flips the sign", func(t *testing.T) {
		macd, signal, ok := MACD(risingSeries(200, -1, 60), 12, 26, 9)
		require.True(t, ok)
		assert.Less(t, macd, 0.0)
		assert.Less(t, macd, signal)
	})
}

func TestBollingerPctB(t *testing.T) {
	t.Run("too short history", func(t *testing.T) {
		_, ok := BollingerPctB(constantSeries(100, 19), 20, 2)
		assert.False(t, ok)
	})

	t.Run("flat series sits mid-band", func(t *testing.T) {
		pctB, ok := BollingerPctB(constantSeries(100, 20), 20, 2)
		require.True(t, ok)
		assert.Equal(t, 0.5, pctB)
	})

	t.Run("last close above the window mean is above the midpoint", func(t *testing.T) {
		pctB, ok := BollingerPctB(risingSeries(100, 1, 40), 20, 2)
		require.True(t, ok)
		assert.Greater(t, pctB, 0.5)
		assert.LessOrEqual(t, pctB, 1.0)
	})

	t.Run("last close below the window mean is below the midpoint", func(t *testing.T) {
		pctB, ok := BollingerPctB(risingSeries(200, -1, 40), 20, 2)
		require.True(t, ok)
		assert.Less(t, pctB, 0.5)
		assert.GreaterOrEqual(t, pctB, 0.0)
	})
}
