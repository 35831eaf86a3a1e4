package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/internal/entity"
	"golang-tradebot/pkg/logger"
)

// SignalBuilder normalizes the heterogeneous per-asset inputs into uniform
// AssetSignal records. Price and model probability are mandatory; sentiment,
// keywords and indicators degrade to neutral defaults when absent.
type SignalBuilder struct {
	cfg            *config.Config
	log            *logger.Logger
	priceRepo      repository.PriceRepository
	modelScoreRepo repository.ModelScoreRepository
	sentimentRepo  repository.SentimentRepository
	indicatorRepo  repository.IndicatorRepository
}

func NewSignalBuilder(cfg *config.Config, log *logger.Logger,
	priceRepo repository.PriceRepository,
	modelScoreRepo repository.ModelScoreRepository,
	sentimentRepo repository.SentimentRepository,
	indicatorRepo repository.IndicatorRepository) *SignalBuilder {
	return &SignalBuilder{
		cfg:            cfg,
		log:            log,
		priceRepo:      priceRepo,
		modelScoreRepo: modelScoreRepo,
		sentimentRepo:  sentimentRepo,
		indicatorRepo:  indicatorRepo,
	}
}

// Build produces one signal per eligible asset. Per-asset failures are
// isolated: the asset is reported in the skipped list and the rest of the
// universe is unaffected. Signals for distinct assets are gathered
// concurrently since each record is independent and read-only.
func (b *SignalBuilder) Build(ctx context.Context, assets []entity.Asset) ([]dto.AssetSignal, []dto.SkippedAsset) {
	scores, err := b.modelScoreRepo.GetLatest(ctx)
	if err != nil {
		b.log.Error("Failed to load model scores, no asset is eligible this run", logger.ErrorField(err))
		skipped := make([]dto.SkippedAsset, 0, len(assets))
		for _, asset := range assets {
			skipped = append(skipped, dto.SkippedAsset{AssetCode: asset.Code, Reason: "model scores unavailable"})
		}
		return nil, skipped
	}

	lookback := b.cfg.Engine.SentimentLookback
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	since := time.Now().Add(-lookback)
	sentiments, err := b.sentimentRepo.GetAssetSentiments(ctx, since)
	if err != nil {
		// Sentiment is optional evidence; its absence is neutral, not fatal.
		b.log.Warn("Failed to load sentiment aggregates, treating all assets as neutral", logger.ErrorField(err))
		sentiments = map[string]dto.AssetSentiment{}
	} else if articles, err := b.sentimentRepo.CountArticles(ctx, since); err == nil {
		b.log.DebugContext(ctx, "Sentiment coverage for this run",
			logger.IntField("articles", int(articles)),
			logger.IntField("assets_with_sentiment", len(sentiments)),
		)
	}

	concurrency := b.cfg.Engine.ScoreConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	type buildResult struct {
		signal  *dto.AssetSignal
		skipped *dto.SkippedAsset
	}

	results := make([]buildResult, len(assets))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset entity.Asset) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			signal, err := b.buildOne(ctx, asset, scores, sentiments)
			if err != nil {
				results[i] = buildResult{skipped: &dto.SkippedAsset{AssetCode: asset.Code, Reason: err.Error()}}
				return
			}
			results[i] = buildResult{signal: signal}
		}(i, asset)
	}
	wg.Wait()

	signals := make([]dto.AssetSignal, 0, len(assets))
	var skipped []dto.SkippedAsset
	for _, result := range results {
		if result.signal != nil {
			signals = append(signals, *result.signal)
		}
		if result.skipped != nil {
			skipped = append(skipped, *result.skipped)
		}
	}
	return signals, skipped
}

func (b *SignalBuilder) buildOne(ctx context.Context, asset entity.Asset,
	scores map[string]entity.ModelScore, sentiments map[string]dto.AssetSentiment) (*dto.AssetSignal, error) {

	quote, err := b.priceRepo.GetQuote(ctx, asset.Code)
	if err != nil {
		var staleErr *dto.StaleDataError
		if errors.As(err, &staleErr) {
			b.log.Warn("Excluding asset with stale price",
				logger.StringField("asset_code", asset.Code),
				logger.ErrorField(err),
			)
			return nil, err
		}
		b.log.Error("Failed to get quote", logger.ErrorField(err), logger.StringField("asset_code", asset.Code))
		return nil, &dto.MissingSignalError{AssetCode: asset.Code, Field: "price"}
	}

	score, ok := scores[asset.Code]
	if !ok {
		return nil, &dto.MissingSignalError{AssetCode: asset.Code, Field: "model_probability"}
	}
	if score.Probability < 0 || score.Probability > 1 {
		return nil, &dto.MissingSignalError{AssetCode: asset.Code, Field: "model_probability"}
	}
	if maxAge := b.cfg.Engine.FreshnessWindow; maxAge > 0 {
		if age := time.Since(score.ScoredAt); age > maxAge {
			return nil, &dto.StaleDataError{AssetCode: asset.Code, Field: "model_probability", Age: age, MaxAge: maxAge}
		}
	}

	signal := dto.AssetSignal{
		AssetCode:        asset.Code,
		Price:            quote.Price,
		ModelProbability: score.Probability,
		AsOf:             quote.FetchedAt,
	}

	// Optional evidence: absence means neutral, never exclusion.
	if sentiment, ok := sentiments[asset.Code]; ok {
		signal.SentimentScore = clamp(sentiment.MeanScore, -1, 1)
		signal.KeywordFlag = sentiment.KeywordHits > 0
	}

	indicators, err := b.indicatorRepo.GetIndicators(ctx, asset.Code)
	if err != nil {
		b.log.Debug("Indicators unavailable, scoring without technical term",
			logger.StringField("asset_code", asset.Code),
			logger.ErrorField(err),
		)
	} else {
		signal.Indicators = indicators
	}

	return &signal, nil
}
