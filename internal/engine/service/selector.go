package service

import (
	"sort"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"
)

// SignalSelector picks at most one new-entry candidate per run: the asset
// must clear the absolute confidence floor and sit in the top fraction of
// the historical confidence distribution, and must not already be held.
type SignalSelector struct {
	cfg config.Strategy
	log *logger.Logger
}

func NewSignalSelector(cfg config.Strategy, log *logger.Logger) *SignalSelector {
	return &SignalSelector{cfg: cfg, log: log}
}

// Select returns the single highest-confidence candidate, or nil when no
// asset clears both thresholds. cutoffOK is false when no historical
// distribution exists; the absolute floor then stands alone. Ties are broken
// by lexical asset order for determinism.
func (s *SignalSelector) Select(scored []dto.ScoredAsset, cutoff float64, cutoffOK bool, openAssets map[string]bool) *dto.ScoredAsset {
	threshold := s.cfg.MinConfidence
	if cutoffOK && cutoff > threshold {
		threshold = cutoff
	}

	candidates := make([]dto.ScoredAsset, 0, len(scored))
	for _, candidate := range scored {
		if candidate.Confidence < threshold {
			continue
		}
		if openAssets[candidate.Signal.AssetCode] {
			// No pyramiding: an asset already held is never re-entered.
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Signal.AssetCode < candidates[j].Signal.AssetCode
	})

	best := candidates[0]
	if len(candidates) > 1 {
		s.log.Debug("Multiple assets cleared entry thresholds, keeping the best only",
			logger.IntField("candidates", len(candidates)),
			logger.StringField("selected", best.Signal.AssetCode),
			logger.Float64Field("confidence", best.Confidence),
		)
	}

	return &best
}
