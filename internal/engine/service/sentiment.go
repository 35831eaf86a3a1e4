package service

import "strings"

const (
	sentimentLabelPositive = "positive"
	sentimentLabelNegative = "negative"
	sentimentLabelNeutral  = "neutral"

	// Labels switch from neutral beyond this absolute score.
	sentimentLabelBand = 0.2
)

// KeywordSentiment scores a text by keyword polarity: (positive hits −
// negative hits) / total hits, in [-1,1]. A text with no matched keyword is
// neutral.
func KeywordSentiment(text string, positive, negative []string) (float64, int) {
	lowered := strings.ToLower(text)

	var positiveCount, negativeCount int
	for _, keyword := range positive {
		positiveCount += strings.Count(lowered, strings.ToLower(keyword))
	}
	for _, keyword := range negative {
		negativeCount += strings.Count(lowered, strings.ToLower(keyword))
	}

	total := positiveCount + negativeCount
	if total == 0 {
		return 0, 0
	}
	return float64(positiveCount-negativeCount) / float64(total), total
}

// SentimentLabel maps a score onto positive/neutral/negative.
func SentimentLabel(score float64) string {
	switch {
	case score > sentimentLabelBand:
		return sentimentLabelPositive
	case score < -sentimentLabelBand:
		return sentimentLabelNegative
	default:
		return sentimentLabelNeutral
	}
}

// MatchAssetKeywords returns how many of the comma-separated keywords occur
// in the text.
func MatchAssetKeywords(text, keywords string) int {
	lowered := strings.ToLower(text)

	var hits int
	for _, keyword := range strings.Split(keywords, ",") {
		keyword = strings.TrimSpace(strings.ToLower(keyword))
		if keyword == "" {
			continue
		}
		hits += strings.Count(lowered, keyword)
	}
	return hits
}
