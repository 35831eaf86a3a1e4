package dto

import (
	"time"

	"golang-tradebot/internal/entity"
)

// StreamDataDailyRun is the payload of a daily-run trigger on the Redis
// stream.
type StreamDataDailyRun struct {
	TriggeredBy string    `json:"triggered_by"` // "cron" or "api"
	RequestedAt time.Time `json:"requested_at"`
}

// StreamDataNewsScan is the payload of a news-scan trigger.
type StreamDataNewsScan struct {
	TriggeredBy string    `json:"triggered_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// SkippedAsset records why an asset did not participate in a run.
type SkippedAsset struct {
	AssetCode string `json:"asset_code"`
	Reason    string `json:"reason"`
}

// RunResult is the outcome of one daily cycle.
type RunResult struct {
	RunDate       time.Time                `json:"run_date"`
	Actions       []TradeAction            `json:"actions"`
	Scored        []ScoredAsset            `json:"scored"`
	Skipped       []SkippedAsset           `json:"skipped"`
	Snapshot      entity.PortfolioSnapshot `json:"snapshot"`
	OpenPositions []entity.Position        `json:"open_positions"`
}

// PortfolioResponse is the API view of current portfolio state.
type PortfolioResponse struct {
	Capital        float64           `json:"capital"`
	Cash           float64           `json:"cash"`
	PositionsValue float64           `json:"positions_value"`
	TotalValue     float64           `json:"total_value"`
	PositionsCount int               `json:"positions_count"`
	Positions      []entity.Position `json:"positions"`
	AsOf           time.Time         `json:"as_of"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
