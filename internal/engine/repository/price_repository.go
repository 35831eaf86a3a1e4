package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type PriceRepository interface {
	GetQuote(ctx context.Context, assetCode string) (*dto.Quote, error)
	GetCandles(ctx context.Context, assetCode string) ([]dto.Candle, error)
}

type priceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	quoteCache     *cache.Cache
}

func NewPriceRepository(cfg *config.Config, log *logger.Logger) PriceRepository {
	maxPerMinute := cfg.PriceFeed.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	requestLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)

	freshness := cfg.Engine.FreshnessWindow
	if freshness <= 0 {
		freshness = 15 * time.Minute
	}

	return &priceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: requestLimiter,
		quoteCache:     cache.New(freshness, 2*freshness),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote returns the latest price for an asset. Quotes are cached for the
// freshness window; a quote older than the window is reported as stale
// rather than served.
func (r *priceRepository) GetQuote(ctx context.Context, assetCode string) (*dto.Quote, error) {
	if cached, found := r.quoteCache.Get(assetCode); found {
		quote := cached.(dto.Quote)
		return &quote, nil
	}

	resp, err := r.fetchChart(ctx, assetCode, "1d", "1d")
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if result.Meta.RegularMarketPrice <= 0 {
		return nil, &dto.MissingSignalError{AssetCode: assetCode, Field: "price"}
	}

	marketTime := time.Unix(result.Meta.RegularMarketTime, 0)
	maxAge := r.cfg.Engine.FreshnessWindow
	if maxAge > 0 {
		if age := time.Since(marketTime); age > maxAge {
			return nil, &dto.StaleDataError{AssetCode: assetCode, Field: "price", Age: age, MaxAge: maxAge}
		}
	}

	quote := dto.Quote{
		AssetCode: assetCode,
		Price:     result.Meta.RegularMarketPrice,
		FetchedAt: time.Now(),
	}
	r.quoteCache.Set(assetCode, quote, cache.DefaultExpiration)

	return &quote, nil
}

// GetCandles returns the OHLCV history used for indicator computation.
func (r *priceRepository) GetCandles(ctx context.Context, assetCode string) ([]dto.Candle, error) {
	resp, err := r.fetchChart(ctx, assetCode, r.cfg.PriceFeed.CandleRange, r.cfg.PriceFeed.CandleInterval)
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for asset %s", assetCode)
	}

	quote := result.Indicators.Quote[0]
	candles := make([]dto.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] <= 0 {
			continue
		}
		candles = append(candles, dto.Candle{
			Timestamp: time.Unix(ts, 0),
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     quote.Close[i],
			Volume:    at(quote.Volume, i),
		})
	}

	return candles, nil
}

func (r *priceRepository) fetchChart(ctx context.Context, assetCode, dataRange, interval string) (*chartResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for price feed request limit", logger.ErrorField(err))
		return nil, err
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		r.cfg.PriceFeed.BaseURL, assetCode, dataRange, interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price feed request failed for %s: %w", assetCode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d for %s", resp.StatusCode, assetCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", assetCode, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("price feed error for %s: %s", assetCode, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &dto.MissingSignalError{AssetCode: assetCode, Field: "price"}
	}

	return &chart, nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
