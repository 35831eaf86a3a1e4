package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/delivery/consumer"
	delivery "golang-tradebot/internal/engine/delivery/http"
	"golang-tradebot/internal/engine/repository"
	"golang-tradebot/internal/engine/service"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"
	"golang-tradebot/pkg/postgres"
	"golang-tradebot/pkg/redis"
	"golang-tradebot/pkg/telegram"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trading service",
	Run:   runServe,
}

var runOnceCmd = &cobra.Command{
	Use:   "run",
	Short: "Executes a single daily decision cycle and exits",
	Run:   runOnce,
}

type app struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *postgres.DB
	redisClient   *redis.Client
	engineService service.EngineService
	newsService   service.NewsService
}

func buildApp() (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	cleanup := func() {
		_ = appLogger.Sync()
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
	}

	// Initialize repositories
	assetRepo := repository.NewAssetRepository(db.DB)
	positionRepo := repository.NewPositionRepository(db.DB)
	portfolioRepo := repository.NewPortfolioRepository(db.DB)
	modelScoreRepo := repository.NewModelScoreRepository(db.DB)
	sentimentRepo := repository.NewSentimentRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)
	confRepo := repository.NewConfidenceRepository(db.DB)
	priceRepo := repository.NewPriceRepository(cfg, appLogger)
	indicatorRepo := repository.NewIndicatorRepository(appLogger, priceRepo)

	// Initialize AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize Gemini AI repository: %w", err)
		}
	case "keywords", "":
		// keyword-only sentiment, no AI calls
	default:
		cleanup()
		return nil, nil, fmt.Errorf("invalid AI provider specified in config: %s", cfg.AI.Provider)
	}

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
	}

	signalBuilder := service.NewSignalBuilder(cfg, appLogger, priceRepo, modelScoreRepo, sentimentRepo, indicatorRepo)
	engineSvc := service.NewEngineService(cfg, appLogger, redisClient.Client,
		assetRepo, positionRepo, portfolioRepo, priceRepo, confRepo, signalBuilder, telegramNotifier)
	newsSvc := service.NewNewsService(cfg, appLogger, redisClient.Client, assetRepo, newsRepo, aiRepo)

	return &app{
		cfg:           cfg,
		logger:        appLogger,
		db:            db,
		redisClient:   redisClient,
		engineService: engineSvc,
		newsService:   newsSvc,
	}, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	appLogger := a.logger
	appLogger.Info("Starting Trading Service", zap.String("name", a.cfg.App.Name))

	// Create the consumer groups if they don't exist.
	// MKSTREAM creates the stream if it doesn't exist.
	for _, stream := range []string{common.RedisStreamDailyRun, common.RedisStreamNewsScan} {
		if err := a.redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
			}
		}
	}

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(a.cfg, a.redisClient.Client, a.engineService, a.newsService, appLogger)
	redisConsumer.Start(ctx)

	// Start the cron scheduler publishing triggers onto the streams
	schedulerSvc := service.NewSchedulerService(a.cfg, appLogger, a.redisClient.Client)
	if err := schedulerSvc.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	tradeRepo := repository.NewTradeRepository(a.db.DB)
	positionRepo := repository.NewPositionRepository(a.db.DB)
	portfolioRepo := repository.NewPortfolioRepository(a.db.DB)
	portfolioHandler := delivery.NewPortfolioHandler(portfolioRepo, positionRepo, tradeRepo,
		a.redisClient.Client, a.cfg.Redis.StreamMaxLen, appLogger)
	apiV1 := e.Group("/api/v1")
	portfolioHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	appLogger.Info("Trading service started. Waiting for triggers...")

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down trading service...")

	schedulerSvc.Stop()
	redisConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Trading service stopped.")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	result, err := a.engineService.Run(ctx)
	if err != nil {
		a.logger.Fatal("Daily run failed", logger.ErrorField(err))
	}

	a.logger.Info("Daily run complete",
		logger.IntField("actions", len(result.Actions)),
		logger.IntField("open_positions", len(result.OpenPositions)),
		logger.Float64Field("total_value", result.Snapshot.TotalValue),
	)
}

func main() {
	rootCmd := &cobra.Command{Use: "trading-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, runOnceCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trading-service CLI: %s\n", err)
		os.Exit(1)
	}
}
