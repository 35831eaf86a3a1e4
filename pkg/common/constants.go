package common

const (
	RedisStreamDailyRun = "trading.daily.run"
	RedisStreamNewsScan = "trading.news.scan"

	RedisStreamGroup    = "engine-group"
	RedisStreamConsumer = "engine-consumer"

	RedisKeyRunLock = "trading:daily_run:lock"
)
