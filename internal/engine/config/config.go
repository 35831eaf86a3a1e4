package config

import (
	"time"

	"golang-tradebot/pkg/config"
)

// Strategy holds the decision and risk parameters of the daily engine.
type Strategy struct {
	InitialCapital      float64 `mapstructure:"initial_capital"`
	MaxPositions        int     `mapstructure:"max_positions"`
	PositionSize        float64 `mapstructure:"position_size"`     // fraction of capital per entry, (0,1]
	MinPositionSize     float64 `mapstructure:"min_position_size"` // entries below this fraction are dropped
	MinConfidence       float64 `mapstructure:"min_confidence"`
	SelectivityFraction float64 `mapstructure:"selectivity_fraction"` // top fraction of historical confidence
	StopLoss            float64 `mapstructure:"stop_loss"`            // negative return bound
	TakeProfit          float64 `mapstructure:"take_profit"`          // positive return bound
	MaxHoldingDays      int     `mapstructure:"max_holding_days"`     // 0 disables the holding-period exit

	// Confidence fusion weights. A weight left at zero (or negative) is
	// treated as unset and falls back to the built-in default; use a small
	// positive value to effectively disable a term.
	ModelWeight     float64 `mapstructure:"model_weight"`
	SentimentWeight float64 `mapstructure:"sentiment_weight"`
	KeywordBonus    float64 `mapstructure:"keyword_bonus"`
	TechnicalBonus  float64 `mapstructure:"technical_bonus"`
}

// Engine holds run-cycle configuration.
type Engine struct {
	RunCron                  string        `mapstructure:"run_cron"`
	NewsScanCron             string        `mapstructure:"news_scan_cron"`
	RunLockTTL               time.Duration `mapstructure:"run_lock_ttl"`
	FreshnessWindow          time.Duration `mapstructure:"freshness_window"`
	SentimentLookback        time.Duration `mapstructure:"sentiment_lookback"`
	RedisStreamRunTimeout    time.Duration `mapstructure:"redis_stream_run_timeout"`
	RedisStreamNewsTimeout   time.Duration `mapstructure:"redis_stream_news_timeout"`
	ScoreConcurrency         int           `mapstructure:"score_concurrency"`
	ExternalCallTimeout      time.Duration `mapstructure:"external_call_timeout"`
	NotifyOnEmptyRun         bool          `mapstructure:"notify_on_empty_run"`
	ConfidenceSampleLookback int           `mapstructure:"confidence_sample_lookback"` // days of backtest samples
}

// PriceFeed holds the configuration for the market data chart API.
type PriceFeed struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	CandleRange         string `mapstructure:"candle_range"`
	CandleInterval      string `mapstructure:"candle_interval"`
}

// News holds the configuration for the RSS news collector.
type News struct {
	FeedURLs           []string `mapstructure:"feed_urls"`
	MaxArticles        int      `mapstructure:"max_articles"`
	MaxArticleAgeDays  int      `mapstructure:"max_article_age_days"`
	FetchArticleBody   bool     `mapstructure:"fetch_article_body"`
	PositiveKeywords   []string `mapstructure:"positive_keywords"`
	NegativeKeywords   []string `mapstructure:"negative_keywords"`
	BlacklistedDomains []string `mapstructure:"blacklisted_domains"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// AI holds configuration for the optional AI sentiment provider.
type AI struct {
	Provider string `mapstructure:"provider"` // "gemini" or "keywords"
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the trading service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Strategy  Strategy        `mapstructure:"strategy"`
	Engine    Engine          `mapstructure:"engine"`
	PriceFeed PriceFeed       `mapstructure:"price_feed"`
	News      News            `mapstructure:"news"`
	Gemini    Gemini          `mapstructure:"gemini"`
	AI        AI              `mapstructure:"ai"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Load loads the trading service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
