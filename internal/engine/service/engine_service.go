package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/internal/entity"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"
	"golang-tradebot/pkg/telegram"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// EngineService runs the daily decision cycle: load portfolio state, build
// and score signals, evaluate risk, plan trades, and persist the outcome
// atomically.
type EngineService interface {
	ProcessTask(ctx context.Context)
	Run(ctx context.Context) (*dto.RunResult, error)
}

type engineService struct {
	cfg           *config.Config
	log           *logger.Logger
	redisClient   *redis.Client
	assetRepo     repository.AssetRepository
	positionRepo  repository.PositionRepository
	portfolioRepo repository.PortfolioRepository
	priceRepo     repository.PriceRepository
	confRepo      repository.ConfidenceRepository
	signalBuilder *SignalBuilder
	scorer        *ConfidenceScorer
	selector      *SignalSelector
	riskEvaluator *RiskEvaluator
	planner       *ExecutionPlanner
	telegramBot   telegram.Notifier
}

func NewEngineService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	assetRepo repository.AssetRepository,
	positionRepo repository.PositionRepository,
	portfolioRepo repository.PortfolioRepository,
	priceRepo repository.PriceRepository,
	confRepo repository.ConfidenceRepository,
	signalBuilder *SignalBuilder,
	telegramBot telegram.Notifier) EngineService {
	return &engineService{
		cfg:           cfg,
		log:           log,
		redisClient:   redisClient,
		assetRepo:     assetRepo,
		positionRepo:  positionRepo,
		portfolioRepo: portfolioRepo,
		priceRepo:     priceRepo,
		confRepo:      confRepo,
		signalBuilder: signalBuilder,
		scorer:        NewConfidenceScorer(cfg.Strategy),
		selector:      NewSignalSelector(cfg.Strategy, log),
		riskEvaluator: NewRiskEvaluator(cfg.Strategy, log),
		planner:       NewExecutionPlanner(cfg.Strategy, log),
		telegramBot:   telegramBot,
	}
}

// ProcessTask consumes one daily-run trigger from the Redis stream.
func (s *engineService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamDailyRun, ">"},
		Count:    1,
		Block:    2 * time.Second, // allow graceful shutdown
	}).Result()
	if err != nil {
		// Context cancellation and empty reads are expected during shutdown
		// or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from daily run stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var streamData dto.StreamDataDailyRun
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		s.log.Error("Failed to unmarshal daily run payload", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Info("Processing daily run", logger.StringField("triggered_by", streamData.TriggeredBy))

	if _, err := s.Run(ctx); err != nil {
		s.log.Error("Daily run failed", logger.ErrorField(err), logger.Field("message_id", message.ID))
		s.notifyFailure(err)
		return
	}

	if err := s.ackNDel(ctx, common.RedisStreamDailyRun, message.ID); err != nil {
		s.log.Error("Failed to acknowledge daily run task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}
}

// Run executes one full read-evaluate-write cycle. The run lock guarantees a
// single writer across processes; all persistence happens in one
// transaction, so a failed run leaves the ledger unchanged.
func (s *engineService) Run(ctx context.Context) (*dto.RunResult, error) {
	acquired, err := s.acquireRunLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("another run is already in progress")
	}
	defer s.releaseRunLock(ctx)

	now := time.Now()

	snapshot, err := s.portfolioRepo.GetLatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio state: %w", err)
	}
	capital := s.cfg.Strategy.InitialCapital
	if snapshot != nil {
		capital = snapshot.Capital
	}

	openPositions, err := s.positionRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open positions: %w", err)
	}
	ledger := NewLedger(s.cfg.Strategy.MaxPositions, openPositions)

	assets, err := s.assetRepo.GetAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset universe: %w", err)
	}

	signals, skipped := s.signalBuilder.Build(ctx, assets)

	scored := make([]dto.ScoredAsset, 0, len(signals))
	prices := make(map[string]float64, len(signals))
	for _, signal := range signals {
		scored = append(scored, dto.ScoredAsset{
			Signal:     signal,
			Confidence: s.scorer.Score(signal),
		})
		prices[signal.AssetCode] = signal.Price
	}

	// Positions in stale or failed assets still need a price for risk
	// evaluation; within the freshness window the last known quote is used,
	// beyond it the position is held.
	s.fillPositionPrices(ctx, ledger.OpenPositions(), prices)

	closes := s.riskEvaluator.Evaluate(ledger.OpenPositions(), prices, now)

	cutoff, cutoffOK, err := s.confRepo.GetCutoff(ctx, s.cfg.Strategy.SelectivityFraction, s.cfg.Engine.ConfidenceSampleLookback)
	if err != nil {
		s.log.Warn("Failed to load confidence distribution, using absolute floor only", logger.ErrorField(err))
		cutoffOK = false
	}

	candidate := s.selector.Select(scored, cutoff, cutoffOK, ledger.OpenAssets())

	actions := s.planner.Plan(ledger, closes, candidate, now)

	// Realized PnL compounds into capital; sizes are fractions of capital.
	for _, position := range ledger.ClosedPositions() {
		if position.RealizedReturn != nil {
			capital += capital * position.Size * *position.RealizedReturn
		}
	}

	newSnapshot := s.buildSnapshot(capital, ledger, prices, now)

	apply := repository.RunApply{
		ClosedPositions: ledger.ClosedPositions(),
		Trades:          s.buildTrades(actions, ledger),
		Snapshot:        newSnapshot,
	}
	if opened := findOpened(ledger, openPositions); opened != nil {
		apply.OpenedPosition = opened
	}

	if err := s.portfolioRepo.SaveRun(ctx, apply); err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}

	result := &dto.RunResult{
		RunDate:       now,
		Actions:       actions,
		Scored:        scored,
		Skipped:       skipped,
		Snapshot:      newSnapshot,
		OpenPositions: ledger.OpenPositions(),
	}

	s.log.Info("Daily run completed",
		logger.IntField("actions", len(actions)),
		logger.IntField("open_positions", len(result.OpenPositions)),
		logger.Float64Field("total_value", newSnapshot.TotalValue),
	)

	s.notify(result)

	return result, nil
}

func (s *engineService) acquireRunLock(ctx context.Context) (bool, error) {
	ttl := s.cfg.Engine.RunLockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return s.redisClient.SetNX(ctx, common.RedisKeyRunLock, time.Now().Format(time.RFC3339), ttl).Result()
}

func (s *engineService) releaseRunLock(ctx context.Context) {
	if err := s.redisClient.Del(ctx, common.RedisKeyRunLock).Err(); err != nil {
		s.log.Error("Failed to release run lock", logger.ErrorField(err))
	}
}

// fillPositionPrices fetches quotes for open positions whose asset did not
// produce a signal this run. Stale quotes are left absent on purpose.
func (s *engineService) fillPositionPrices(ctx context.Context, positions []entity.Position, prices map[string]float64) {
	for _, position := range positions {
		if _, ok := prices[position.AssetCode]; ok {
			continue
		}
		quote, err := s.priceRepo.GetQuote(ctx, position.AssetCode)
		if err != nil {
			s.log.Warn("No usable price for open position",
				logger.StringField("asset_code", position.AssetCode),
				logger.ErrorField(err),
			)
			continue
		}
		prices[position.AssetCode] = quote.Price
	}
}

func (s *engineService) buildSnapshot(capital float64, ledger *Ledger, prices map[string]float64, now time.Time) entity.PortfolioSnapshot {
	var positionsValue float64
	for _, position := range ledger.OpenPositions() {
		invested := capital * position.Size
		if price, ok := prices[position.AssetCode]; ok && price > 0 {
			positionsValue += invested * (price / position.EntryPrice)
		} else {
			positionsValue += invested
		}
	}

	cash := capital * (1 - ledger.OpenSizeTotal())
	total := cash + positionsValue

	var totalReturn float64
	if s.cfg.Strategy.InitialCapital > 0 {
		totalReturn = total/s.cfg.Strategy.InitialCapital - 1
	}

	return entity.PortfolioSnapshot{
		Capital:        capital,
		Cash:           cash,
		PositionsValue: positionsValue,
		TotalValue:     total,
		Return:         totalReturn,
		PositionsCount: len(ledger.OpenPositions()),
		RunDate:        now,
	}
}

func (s *engineService) buildTrades(actions []dto.TradeAction, ledger *Ledger) []entity.Trade {
	closedByAsset := make(map[string]entity.Position)
	for _, position := range ledger.ClosedPositions() {
		closedByAsset[position.AssetCode] = position
	}

	trades := make([]entity.Trade, 0, len(actions))
	for _, action := range actions {
		data, err := json.Marshal(action)
		if err != nil {
			s.log.Error("Failed to marshal trade action", logger.ErrorField(err))
			data = nil
		}

		trade := entity.Trade{
			AssetCode: action.AssetCode,
			Kind:      action.Kind,
			Reason:    action.Reason,
			Price:     action.Price,
			Size:      action.Size,
			Return:    action.Return,
			Data:      datatypes.JSON(data),
		}
		if action.IsClose() {
			if position, ok := closedByAsset[action.AssetCode]; ok {
				trade.PositionID = position.ID
			}
		}
		trades = append(trades, trade)
	}
	return trades
}

// findOpened returns the position present in the ledger but absent from the
// positions loaded at the start of the run, i.e. the one opened this cycle.
func findOpened(ledger *Ledger, loaded []entity.Position) *entity.Position {
	known := make(map[string]bool, len(loaded))
	for _, position := range loaded {
		known[position.AssetCode] = true
	}
	for _, position := range ledger.OpenPositions() {
		if !known[position.AssetCode] {
			opened := position
			return &opened
		}
	}
	return nil
}

func (s *engineService) notify(result *dto.RunResult) {
	if s.telegramBot == nil {
		return
	}
	if len(result.Actions) == 0 && !s.cfg.Engine.NotifyOnEmptyRun {
		return
	}
	message := telegram.FormatRunSummaryMessage(result.RunDate, result.Actions, result.Snapshot)
	if err := s.telegramBot.SendMessage(message); err != nil {
		s.log.Error("Failed to send run summary to Telegram", logger.ErrorField(err))
	}
}

// notifyFailure alerts the operator when a triggered run fails outright; a
// missed cycle is silent money left on the table otherwise.
func (s *engineService) notifyFailure(runErr error) {
	if s.telegramBot == nil {
		return
	}
	message := telegram.FormatErrorAlertMessage(time.Now(), runErr)
	if err := s.telegramBot.SendMessage(message); err != nil {
		s.log.Error("Failed to send failure alert to Telegram", logger.ErrorField(err))
	}
}

func (s *engineService) ackNDel(ctx context.Context, streamName, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge task", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		s.log.Error("Failed to delete task", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	return nil
}
