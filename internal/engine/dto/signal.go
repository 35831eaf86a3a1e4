package dto

import "time"

// IndicatorSet is the precomputed technical summary for one asset. The RSI
// neutral band and MACD sign are the only values the scorer interprets.
type IndicatorSet struct {
	RSI              float64 `json:"rsi"`
	MACD             float64 `json:"macd"`
	MACDSignal       float64 `json:"macd_signal"`
	MACDHistogram    float64 `json:"macd_histogram"`
	BollingerPctB    float64 `json:"bollinger_pct_b"` // position inside the bands, 0..1
	HasRSI           bool    `json:"has_rsi"`
	HasMACD          bool    `json:"has_macd"`
	HasBollingerPctB bool    `json:"has_bollinger_pct_b"`
}

// AssetSignal is the normalized per-asset input record for one evaluation
// run. Immutable once built.
type AssetSignal struct {
	AssetCode        string       `json:"asset_code"`
	Price            float64      `json:"price"`
	ModelProbability float64      `json:"model_probability"`
	SentimentScore   float64      `json:"sentiment_score"`
	KeywordFlag      bool         `json:"keyword_flag"`
	Indicators       IndicatorSet `json:"indicators"`
	AsOf             time.Time    `json:"as_of"`
}

// Quote is one price observation from the market data feed.
type Quote struct {
	AssetCode string    `json:"asset_code"`
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Candle is one OHLCV bar used for indicator computation.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// AssetSentiment is the aggregated news sentiment for one asset over the
// lookback window.
type AssetSentiment struct {
	AssetCode    string  `json:"asset_code"`
	MeanScore    float64 `json:"mean_score"`
	ArticleCount int     `json:"article_count"`
	KeywordHits  int     `json:"keyword_hits"`
}

// ScoredAsset pairs an asset signal with its fused confidence.
type ScoredAsset struct {
	Signal     AssetSignal `json:"signal"`
	Confidence float64     `json:"confidence"`
}

// GetPositionsParam filters position queries.
type GetPositionsParam struct {
	IDs        []uint
	AssetCodes []string
	Status     *string
}
