package consumer

import (
	"context"
	"sync"
	"time"

	"golang-tradebot/internal/engine/config"
	"golang-tradebot/internal/engine/service"
	"golang-tradebot/pkg/common"
	"golang-tradebot/pkg/logger"
	"golang-tradebot/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of triggers from the Redis streams.
type RedisConsumer struct {
	cfg           *config.Config
	redisClient   *redis.Client
	engineService service.EngineService
	newsService   service.NewsService
	logger        *logger.Logger
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	engineService service.EngineService,
	newsService service.NewsService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:           cfg,
		redisClient:   redisClient,
		engineService: engineService,
		newsService:   newsService,
		logger:        log,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the consumer's task processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.engineService.ProcessTask, common.RedisStreamDailyRun, c.cfg.Engine.RedisStreamRunTimeout)
	c.RegisterStreamHandler(ctx, c.newsService.ProcessTask, common.RedisStreamNewsScan, c.cfg.Engine.RedisStreamNewsTimeout)
}

// RegisterStreamHandler runs fn in a loop until the consumer stops. Each
// invocation gets its own timeout-bounded context so a hung external call
// cannot stall the stream forever.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation", logger.StringField("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping", logger.StringField("stream", streamName))
				return
			default:
				func() {
					taskCtx := ctx
					if timeout > 0 {
						var cancel context.CancelFunc
						taskCtx, cancel = context.WithTimeout(ctx, timeout)
						defer cancel()
					}
					fn(taskCtx)
				}()
			}
		}
	})
}

// Stop signals all handler loops to stop and waits for them to finish.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
