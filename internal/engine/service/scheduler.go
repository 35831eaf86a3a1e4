package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService publishes the daily-run and news-scan triggers onto their
// Redis streams on the configured cron schedules. Execution itself happens
// in the stream consumer so a slow run never blocks the scheduler.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	cron        *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		cron:        cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	if expr := s.cfg.Engine.RunCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, func() {
			s.publishDailyRun(ctx, "cron")
		}); err != nil {
			return err
		}
		s.log.Info("Scheduled daily run", logger.StringField("cron", expr))
	}

	if expr := s.cfg.Engine.NewsScanCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, func() {
			s.publishNewsScan(ctx, "cron")
		}); err != nil {
			return err
		}
		s.log.Info("Scheduled news scan", logger.StringField("cron", expr))
	}

	s.cron.Start()
	return nil
}

func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *schedulerService) publishDailyRun(ctx context.Context, triggeredBy string) {
	payload, err := json.Marshal(dto.StreamDataDailyRun{
		TriggeredBy: triggeredBy,
		RequestedAt: time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to marshal daily run trigger", logger.ErrorField(err))
		return
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamDailyRun,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.log.Error("Failed to enqueue daily run trigger", logger.ErrorField(err))
		return
	}

	s.log.Info("Daily run trigger published", logger.StringField("triggered_by", triggeredBy))
}

func (s *schedulerService) publishNewsScan(ctx context.Context, triggeredBy string) {
	payload, err := json.Marshal(dto.StreamDataNewsScan{
		TriggeredBy: triggeredBy,
		RequestedAt: time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to marshal news scan trigger", logger.ErrorField(err))
		return
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamNewsScan,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.log.Error("Failed to enqueue news scan trigger", logger.ErrorField(err))
	}
}
