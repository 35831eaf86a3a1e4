package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordSentiment(t *testing.T) {
	positive := []string{"hausse", "record"}
	negative := []string{"baisse", "perte"}

	tests := []struct {
		name      string
		text      string
		wantScore float64
		wantHits  int
	}{
		{
			name:      "no keywords is neutral",
			text:      "Le marché reste stable aujourd'hui",
			wantScore: 0,
			wantHits:  0,
		},
		{
			name:      "only positive",
			text:      "Forte hausse, un record pour le titre",
			wantScore: 1,
			wantHits:  2,
		},
		{
			name:      "only negative",
			text:      "Baisse marquée après une perte trimestrielle",
			wantScore: -1,
			wantHits:  2,
		},
		{
			name:      "mixed leans positive",
			text:      "Hausse record malgré une perte ponctuelle",
			wantScore: 1.0 / 3.0,
			wantHits:  3,
		},
		{
			name:      "matching is case insensitive",
			text:      "HAUSSE confirmée",
			wantScore: 1,
			wantHits:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, hits := KeywordSentiment(tt.text, positive, negative)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantHits, hits)
		})
	}
}

func TestSentimentLabel(t *testing.T) {
	assert.Equal(t, "positive", SentimentLabel(0.5))
	assert.Equal(t, "negative", SentimentLabel(-0.5))
	assert.Equal(t, "neutral", SentimentLabel(0))
	assert.Equal(t, "neutral", SentimentLabel(0.2))
	assert.Equal(t, "neutral", SentimentLabel(-0.2))
}

func TestMatchAssetKeywords(t *testing.T) {
	assert.Equal(t, 2, MatchAssetKeywords("Airbus décroche un contrat, airbus monte", "Airbus, EADS"))
	assert.Equal(t, 0, MatchAssetKeywords("Rien à voir ici", "Airbus, EADS"))
	assert.Equal(t, 0, MatchAssetKeywords("texte", ""))
}
