package service

import (
	"testing"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func TestConfidenceScorer_Score(t *testing.T) {
	scorer := NewConfidenceScorer(config.Strategy{})

	tests := []struct {
		name   string
		signal dto.AssetSignal
		want   float64
	}{
		{
			name:   "neutral everything",
			signal: dto.AssetSignal{ModelProbability: 0.5, SentimentScore: 0},
			// 0.6*0.5 + 0.2*0.5
			want: 0.40,
		},
		{
			name: "strong model with positive sentiment and keyword hit",
			signal: dto.AssetSignal{
				ModelProbability: 0.9,
				SentimentScore:   1,
				KeywordFlag:      true,
			},
			// 0.6*0.9 + 0.2*1 + 0.1
			want: 0.84,
		},
		{
			name: "everything maxed clamps to one",
			signal: dto.AssetSignal{
				ModelProbability: 1,
				SentimentScore:   1,
				KeywordFlag:      true,
				Indicators: dto.IndicatorSet{
					HasRSI: true, RSI: 20,
					HasMACD: true, MACDHistogram: 1,
					HasBollingerPctB: true, BollingerPctB: 0.1,
				},
			},
			want: 1,
		},
		{
			name:   "worst case stays at zero",
			signal: dto.AssetSignal{ModelProbability: 0, SentimentScore: -1},
			want:   0,
		},
		{
			name:   "model probability outside range is clamped",
			signal: dto.AssetSignal{ModelProbability: 1.7, SentimentScore: 0},
			// same as probability 1
			want: 0.70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.signal)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestNewConfidenceScorer_WeightFallback(t *testing.T) {
	t.Run("zero weights fall back to the defaults", func(t *testing.T) {
		scorer := NewConfidenceScorer(config.Strategy{ModelWeight: 0.5, KeywordBonus: 0})

		without := scorer.Score(dto.AssetSignal{ModelProbability: 0.5})
		with := scorer.Score(dto.AssetSignal{ModelProbability: 0.5, KeywordFlag: true})
		assert.InDelta(t, defaultKeywordBonus, with-without, 1e-9)
	})

	t.Run("a small positive weight effectively disables a term", func(t *testing.T) {
		scorer := NewConfidenceScorer(config.Strategy{KeywordBonus: 0.0001})

		without := scorer.Score(dto.AssetSignal{ModelProbability: 0.5})
		with := scorer.Score(dto.AssetSignal{ModelProbability: 0.5, KeywordFlag: true})
		assert.InDelta(t, 0.0001, with-without, 1e-9)
	})
}

func TestConfidenceScorer_Deterministic(t *testing.T) {
	scorer := NewConfidenceScorer(config.Strategy{})
	signal := dto.AssetSignal{
		ModelProbability: 0.63,
		SentimentScore:   -0.2,
		KeywordFlag:      true,
		Indicators:       dto.IndicatorSet{HasRSI: true, RSI: 55},
	}

	first := scorer.Score(signal)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score(signal))
	}
}

func TestConfidenceScorer_MonotonicInModelProbability(t *testing.T) {
	scorer := NewConfidenceScorer(config.Strategy{})

	prev := -1.0
	for p := 0.0; p <= 1.0; p += 0.1 {
		got := scorer.Score(dto.AssetSignal{ModelProbability: p, SentimentScore: 0.3})
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestTechnicalAgreement(t *testing.T) {
	tests := []struct {
		name string
		ind  dto.IndicatorSet
		want float64
	}{
		{name: "no indicators abstains", ind: dto.IndicatorSet{}, want: 0},
		{
			name: "oversold rsi votes long",
			ind:  dto.IndicatorSet{HasRSI: true, RSI: 25},
			want: 1,
		},
		{
			name: "overbought rsi votes against",
			ind:  dto.IndicatorSet{HasRSI: true, RSI: 75},
			want: -1,
		},
		{
			name: "neutral rsi with positive macd averages",
			ind:  dto.IndicatorSet{HasRSI: true, RSI: 50, HasMACD: true, MACDHistogram: 0.4},
			want: 0.5,
		},
		{
			name: "split votes cancel",
			ind: dto.IndicatorSet{
				HasMACD: true, MACDHistogram: 1,
				HasBollingerPctB: true, BollingerPctB: 0.9,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, technicalAgreement(tt.ind), 1e-9)
		})
	}
}
