package dto

// ArticleScore is the sentiment verdict for one article, either from the
// keyword scorer or from the AI provider.
type ArticleScore struct {
	SentimentScore float64  `json:"sentiment_score"` // in [-1,1]
	SentimentLabel string   `json:"sentiment_label"` // positive, neutral, negative
	Summary        string   `json:"summary"`
	AssetCodes     []string `json:"asset_codes"` // assets the article mentions
}
