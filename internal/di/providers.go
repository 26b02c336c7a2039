package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"RugPull/internal/domain/repository"
	"RugPull/internal/domain/service"
	"RugPull/internal/handler/api"
	mid "RugPull/internal/middleware"
	internalrepo "RugPull/internal/repository"
	icache "RugPull/internal/service/cache"
	"RugPull/internal/service/rugsfeed"
	"RugPull/internal/services/prediction"
	"RugPull/internal/services/shortround"
	"RugPull/internal/usecase"
	pkgch "RugPull/pkg/clickhouse"
	"RugPull/pkg/config"
	pkgkafka "RugPull/pkg/kafka"
	"RugPull/pkg/logger"
	"RugPull/pkg/metrics"
	pkgqueue "RugPull/pkg/queue"
	"RugPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideParams maps configuration overrides onto the engine defaults.
func ProvideParams(cfg *config.Config) prediction.Params {
	p := prediction.DefaultParams()
	if v := cfg.Prediction.HorizonTicks; v > 0 {
		p.HorizonTicks = v
	}
	if v := cfg.Prediction.BaseHazardRate; v > 0 {
		p.BaseHazardRate = v
	}
	if v := cfg.Prediction.TargetCoverage; v > 0 {
		p.TargetCoverage = v
	}
	if v := cfg.Prediction.CalibrationWindow; v > 0 {
		p.CalibrationWindow = v
	}
	if v := cfg.Prediction.ErrorWindow; v > 0 {
		p.ErrorWindow = v
	}
	if v := cfg.Prediction.QuantileAdjust; v != nil {
		p.QuantileAdjustmentEnabled = *v
	}
	if v := cfg.Prediction.BetWindowTicks; v > 0 {
		p.BetWindowTicks = v
	}
	if v := cfg.Prediction.BetCooldownTicks; v > 0 {
		p.BetCooldownTicks = v
	}
	if v := cfg.Prediction.BetThreshold; v > 0 {
		p.BetProbabilityThreshold = v
	}
	if v := cfg.Prediction.PayoutMultiplier; v > 0 {
		p.PayoutMultiplier = v
	}
	if v := cfg.Prediction.QuantileDeadZone; v > 0 {
		p.QuantileDeadZone = v
	}
	if v := cfg.Prediction.QuantileAlpha; v > 0 {
		p.QuantileAlpha = v
	}
	if v := cfg.Prediction.RegimeRatio; v > 0 {
		p.RegimeRatioThreshold = v
	}
	if v := cfg.Prediction.RegimeSustain; v > 0 {
		p.RegimeSustainTicks = v
	}
	if v := cfg.Prediction.RegimeHazardScale; v > 0 {
		p.RegimeHazardScale = v
	}
	if v := cfg.Prediction.RegimeDecayTau; v > 0 {
		p.RegimeDecayTau = v
	}
	if v := cfg.Prediction.DriftLambda; v > 0 {
		p.DriftLambda = v
	}
	if v := cfg.Prediction.FeatureBudget; v > 0 {
		p.FeatureBudget = v
	}
	if v := cfg.ShortRound.Threshold; v > 0 {
		p.ShortRoundThreshold = v
	}
	if v := cfg.ShortRound.Ceiling; v > 0 {
		p.ShortRoundCeiling = v
	}
	if v := cfg.ShortRound.ConfidencePenalty; v > 0 {
		p.ShortRoundConfidencePenalty = v
	}
	if v := cfg.ShortRound.EarlyWindow; v > 0 {
		p.ShortRoundEarlyWindow = v
	}
	return p
}

// ProvideShortRoundScorer selects the scorer implementation.
func ProvideShortRoundScorer(cfg *config.Config) service.ShortRoundScorer {
	if cfg.ShortRound.Mode == "remote" {
		return shortround.NewRemoteScorer(cfg.ShortRound.ServiceURL, cfg.ShortRound.Timeout)
	}
	return shortround.NewLinearScorer()
}

// ProvideEngine creates the prediction engine and replays recent
// archived rounds into its calibration loops. Warm start is best
// effort: an empty or unreachable store just means cold calibration.
func ProvideEngine(params prediction.Params, scorer service.ShortRoundScorer, log *logger.Logger, store repository.RoundStore) *prediction.Engine {
	engine := prediction.NewEngine(params, scorer, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	outcomes, err := store.RecentOutcomes(ctx, params.CalibrationWindow)
	if err != nil {
		log.Warn("warm start skipped", logger.Error(err))
		return engine
	}
	// newest first from the store; replay oldest first
	for i, j := 0, len(outcomes)-1; i < j; i, j = i+1, j-1 {
		outcomes[i], outcomes[j] = outcomes[j], outcomes[i]
	}
	if n := engine.WarmStart(outcomes); n > 0 {
		log.Info("calibration warm start", logger.Int("rounds", n))
	}
	return engine
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS rugpull",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRoundStore creates the ClickHouse round store and its schema.
func ProvideRoundStore(chClient *pkgch.Client, cfg *config.Config) (repository.RoundStore, error) {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = cfg.ClickHouse.Database + ".rounds"
	}
	store := internalrepo.NewClickHouseRoundStore(chClient, table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("round store schema: %w", err)
	}
	return store, nil
}

// ProvidePredictionPublisher creates the Kafka prediction publisher.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PredictionsTopic)
}

// ProvideFeedStream creates the game feed WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.EventStream {
	return rugsfeed.New(
		cfg.Feed.WebSocketURL,
		cfg.Feed.Channel,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideRedisClient creates the Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideArchiveQueue creates the Redis-backed archival queue, or nil
// when Redis is disabled (outcomes are then stored synchronously).
func ProvideArchiveQueue(
	log *logger.Logger,
	client *redis.Client,
	store repository.RoundStore,
	cfg *config.Config,
) *pkgqueue.RedisQueue {
	if client == nil {
		return nil
	}
	qc := &pkgqueue.QueueConfig{
		Workers:    cfg.Archive.Workers,
		QueueSize:  cfg.Archive.QueueSize,
		RetryLimit: cfg.Archive.RetryLimit,
		RetryDelay: cfg.Archive.RetryDelay,
	}
	if qc.Workers <= 0 {
		qc.Workers = 2
	}
	if qc.QueueSize <= 0 {
		qc.QueueSize = 1000
	}
	return pkgqueue.NewRedisConsumer(log, qc, client, []pkgqueue.Job{
		usecase.NewRoundArchiveJob(store, log),
	})
}

// ProvideRoundProcessor creates the round processor use case.
func ProvideRoundProcessor(
	engine *prediction.Engine,
	pub repository.Publisher,
	archive *pkgqueue.RedisQueue,
	store repository.RoundStore,
	metricsRec repository.Metrics,
	log *logger.Logger,
) *usecase.RoundProcessor {
	var q pkgqueue.QueueService
	if archive != nil {
		q = archive
	}
	return usecase.NewRoundProcessor(engine, pub, q, store, metricsRec, log)
}

// ProvidePipeline creates the feed-to-engine middleware pipeline.
func ProvidePipeline(proc *usecase.RoundProcessor, metricsRec repository.Metrics, cfg *config.Config) *mid.RealtimePipeline {
	opts := []mid.PipelineOption{}
	if cfg.Pipeline.MaxRPS > 0 {
		opts = append(opts, mid.WithMaxRPS(cfg.Pipeline.MaxRPS))
	}
	if cfg.Pipeline.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Pipeline.BufferSize))
	}
	return mid.NewRealtimePipeline(proc, metricsRec, opts...)
}

// ProvideEventCollector creates the event collector use case.
func ProvideEventCollector(
	stream repository.EventStream,
	proc *usecase.RoundProcessor,
	metricsRec repository.Metrics,
	pipe *mid.RealtimePipeline,
) *usecase.EventCollector {
	return usecase.NewEventCollector(stream, proc, metricsRec, pipe)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaEventsHandler registers the handler for the replayed
// events topic.
func ProvideKafkaEventsHandler(pipe *mid.RealtimePipeline, metricsRec repository.Metrics, cfg *config.Config) *usecase.KafkaEventsHandler {
	return usecase.NewKafkaEventsHandler(cfg.Kafka.EventsTopic, pipe, metricsRec)
}

// ProvideHistoryService creates the round history service. With Redis
// available the history cache is shared across instances; otherwise an
// in-process TTL cache is used.
func ProvideHistoryService(store repository.RoundStore, cfg *config.Config, rdb *redis.Client) *usecase.HistoryService {
	var c icache.BytesCache = icache.NewTTLCache()
	if rdb != nil {
		c = icache.NewRedisCacheFromClient(rdb)
	}
	return usecase.NewHistoryService(store, c, cfg.History.CacheTTL)
}

// ProvidePredictionsHandler creates the HTTP handler.
func ProvidePredictionsHandler(
	log *logger.Logger,
	engine *prediction.Engine,
	history *usecase.HistoryService,
	collector *usecase.EventCollector,
) *api.PredictionsHandler {
	return api.NewPredictionsHandler(log, engine, history, collector)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.EventCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaEventsHandler,
	chClient *pkgch.Client,
	archive *pkgqueue.RedisQueue,
	producer *pkgkafka.Producer,
	handler *api.PredictionsHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, log, collector, consumer, kh, chClient, archive, producer, handler)
}
