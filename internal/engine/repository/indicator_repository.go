package repository

import (
	"context"
	"math"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"
)

const (
	rsiPeriod       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignal      = 9
	bollingerPeriod = 20
	bollingerStd    = 2.0
)

type IndicatorRepository interface {
	GetIndicators(ctx context.Context, assetCode string) (dto.IndicatorSet, error)
}

type indicatorRepository struct {
	log       *logger.Logger
	priceRepo PriceRepository
}

func NewIndicatorRepository(log *logger.Logger, priceRepo PriceRepository) IndicatorRepository {
	return &indicatorRepository{log: log, priceRepo: priceRepo}
}

// GetIndicators computes the technical summary for one asset from its candle
// history. Indicators that cannot be computed from the available history are
// flagged absent instead of reported as zero.
func (r *indicatorRepository) GetIndicators(ctx context.Context, assetCode string) (dto.IndicatorSet, error) {
	candles, err := r.priceRepo.GetCandles(ctx, assetCode)
	if err != nil {
		return dto.IndicatorSet{}, err
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	var set dto.IndicatorSet

	if rsi, ok := RSI(closes, rsiPeriod); ok {
		set.RSI = rsi
		set.HasRSI = true
	}

	if macd, signal, ok := MACD(closes, macdFast, macdSlow, macdSignal); ok {
		set.MACD = macd
		set.MACDSignal = signal
		set.MACDHistogram = macd - signal
		set.HasMACD = true
	}

	if pctB, ok := BollingerPctB(closes, bollingerPeriod, bollingerStd); ok {
		set.BollingerPctB = pctB
		set.HasBollingerPctB = true
	}

	return set, nil
}

// RSI computes the Relative Strength Index over the last period bars using
// the average gain/loss of the window. Returns false when the history is too
// short.
func RSI(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		return 100, true
	}

	rs := gains / losses
	return 100 - (100 / (1 + rs)), true
}

// MACD computes the MACD line and its signal line from exponential moving
// averages of the closes.
func MACD(closes []float64, fast, slow, signal int) (float64, float64, bool) {
	if len(closes) < slow+signal {
		return 0, 0, false
	}

	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	signalLine := ema(macdLine, signal)
	last := len(closes) - 1
	return macdLine[last], signalLine[last], true
}

// BollingerPctB computes the position of the last close inside the Bollinger
// bands: 0 at the lower band, 1 at the upper band.
func BollingerPctB(closes []float64, period int, stdDev float64) (float64, bool) {
	if len(closes) < period {
		return 0, false
	}

	window := closes[len(closes)-period:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(period)

	var variance float64
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(variance / float64(period))
	if sd == 0 {
		return 0.5, true
	}

	upper := mean + stdDev*sd
	lower := mean - stdDev*sd
	last := closes[len(closes)-1]
	return (last - lower) / (upper - lower), true
}

func ema(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}

	alpha := 2.0 / (float64(period) + 1)
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}
	return result
}
