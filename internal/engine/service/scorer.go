package service

import (
	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
)

// Default fusion weights, used when the configuration leaves them unset.
// The model probability dominates; every other sub-signal contributes a
// bounded adjustment.
const (
	defaultModelWeight     = 0.60
	defaultSentimentWeight = 0.20
	defaultKeywordBonus    = 0.10
	defaultTechnicalBonus  = 0.10

	rsiOversold   = 30.0
	rsiOverbought = 70.0
	pctBLow       = 0.2
	pctBHigh      = 0.8
)

// ConfidenceScorer fuses an asset signal into a single confidence value in
// [0,1]. Scoring is a pure function of the signal: no state, no clock, no
// randomness, so identical inputs always produce identical output.
type ConfidenceScorer struct {
	modelWeight     float64
	sentimentWeight float64
	keywordBonus    float64
	technicalBonus  float64
}

func NewConfidenceScorer(cfg config.Strategy) *ConfidenceScorer {
	scorer := &ConfidenceScorer{
		modelWeight:     cfg.ModelWeight,
		sentimentWeight: cfg.SentimentWeight,
		keywordBonus:    cfg.KeywordBonus,
		technicalBonus:  cfg.TechnicalBonus,
	}
	if scorer.modelWeight <= 0 {
		scorer.modelWeight = defaultModelWeight
	}
	if scorer.sentimentWeight <= 0 {
		scorer.sentimentWeight = defaultSentimentWeight
	}
	if scorer.keywordBonus <= 0 {
		scorer.keywordBonus = defaultKeywordBonus
	}
	if scorer.technicalBonus <= 0 {
		scorer.technicalBonus = defaultTechnicalBonus
	}
	return scorer
}

// Score computes the fused confidence for one asset signal.
func (s *ConfidenceScorer) Score(signal dto.AssetSignal) float64 {
	confidence := s.modelWeight * clamp(signal.ModelProbability, 0, 1)

	// Sentiment maps [-1,1] onto [0,1] so a neutral score of 0 contributes
	// half the sentiment weight and never drags the total below zero.
	sentiment := clamp(signal.SentimentScore, -1, 1)
	confidence += s.sentimentWeight * (0.5 + 0.5*sentiment)

	if signal.KeywordFlag {
		confidence += s.keywordBonus
	}

	confidence += s.technicalBonus * technicalAgreement(signal.Indicators)

	return clamp(confidence, 0, 1)
}

// technicalAgreement scores how strongly the indicator set agrees with a
// long entry, in [-1,1]. Each available indicator votes; absent indicators
// abstain.
func technicalAgreement(ind dto.IndicatorSet) float64 {
	var sum float64
	var votes int

	if ind.HasRSI {
		votes++
		switch {
		case ind.RSI <= rsiOversold:
			sum++
		case ind.RSI >= rsiOverbought:
			sum--
		}
	}

	if ind.HasMACD {
		votes++
		switch {
		case ind.MACDHistogram > 0:
			sum++
		case ind.MACDHistogram < 0:
			sum--
		}
	}

	if ind.HasBollingerPctB {
		votes++
		switch {
		case ind.BollingerPctB <= pctBLow:
			sum++
		case ind.BollingerPctB >= pctBHigh:
			sum--
		}
	}

	if votes == 0 {
		return 0
	}
	return sum / float64(votes)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
