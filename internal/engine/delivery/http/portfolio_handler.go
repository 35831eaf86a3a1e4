package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"
	"golang-tradebot/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// PortfolioHandler handles HTTP requests for the read-only portfolio API and
// for triggering a run on demand.
type PortfolioHandler struct {
	portfolioRepo repository.PortfolioRepository
	positionRepo  repository.PositionRepository
	tradeRepo     repository.TradeRepository
	redisClient   *redis.Client
	streamMaxLen  int64
	logger        *logger.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(
	portfolioRepo repository.PortfolioRepository,
	positionRepo repository.PositionRepository,
	tradeRepo repository.TradeRepository,
	redisClient *redis.Client,
	streamMaxLen int64,
	logger *logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioRepo: portfolioRepo,
		positionRepo:  positionRepo,
		tradeRepo:     tradeRepo,
		redisClient:   redisClient,
		streamMaxLen:  streamMaxLen,
		logger:        logger,
	}
}

// RegisterRoutes registers the portfolio routes to the Echo group.
func (h *PortfolioHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/portfolio", h.GetPortfolio)
	g.GET("/positions", h.GetPositions)
	g.GET("/trades", h.GetTrades)
	g.GET("/snapshots", h.GetSnapshots)
	g.POST("/run", h.TriggerRun)
}

// GetPortfolio returns the latest portfolio snapshot together with the open
// positions.
func (h *PortfolioHandler) GetPortfolio(c echo.Context) error {
	ctx := c.Request().Context()

	snapshot, err := h.portfolioRepo.GetLatestSnapshot(ctx)
	if err != nil {
		h.logger.Error("Failed to get latest snapshot", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load portfolio"})
	}

	positions, err := h.positionRepo.GetOpen(ctx)
	if err != nil {
		h.logger.Error("Failed to get open positions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load positions"})
	}

	resp := dto.PortfolioResponse{
		Positions:      positions,
		PositionsCount: len(positions),
	}
	if snapshot != nil {
		resp.Capital = snapshot.Capital
		resp.Cash = snapshot.Cash
		resp.PositionsValue = snapshot.PositionsValue
		resp.TotalValue = snapshot.TotalValue
		resp.AsOf = snapshot.RunDate
	}

	return c.JSON(http.StatusOK, resp)
}

// GetPositions returns positions, optionally filtered by status.
func (h *PortfolioHandler) GetPositions(c echo.Context) error {
	param := dto.GetPositionsParam{}
	if status := c.QueryParam("status"); status != "" {
		param.Status = utils.ToPointer(status)
	}

	positions, err := h.positionRepo.Get(c.Request().Context(), param)
	if err != nil {
		h.logger.Error("Failed to get positions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load positions"})
	}

	return c.JSON(http.StatusOK, positions)
}

// GetTrades returns the most recent trades.
func (h *PortfolioHandler) GetTrades(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		}
		limit = parsed
	}

	trades, err := h.tradeRepo.GetRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get trades", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load trades"})
	}

	return c.JSON(http.StatusOK, trades)
}

// GetSnapshots returns the end-of-run snapshot history, newest first.
func (h *PortfolioHandler) GetSnapshots(c echo.Context) error {
	limit := 30
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		}
		limit = parsed
	}

	snapshots, err := h.portfolioRepo.GetSnapshots(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get snapshots", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load snapshots"})
	}

	return c.JSON(http.StatusOK, snapshots)
}

// TriggerRun publishes a daily-run trigger onto the Redis stream. The run
// itself happens asynchronously in the consumer.
func (h *PortfolioHandler) TriggerRun(c echo.Context) error {
	payload, err := json.Marshal(dto.StreamDataDailyRun{
		TriggeredBy: "api",
		RequestedAt: utils.TimeNowParis(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to build trigger"})
	}

	if err := h.redisClient.XAdd(c.Request().Context(), &redis.XAddArgs{
		Stream: common.RedisStreamDailyRun,
		MaxLen: h.streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": payload},
	}).Err(); err != nil {
		h.logger.Error("Failed to publish run trigger", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to publish trigger"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
