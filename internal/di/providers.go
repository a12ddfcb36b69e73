package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"SmartDCA/internal/domain/repository"
	"SmartDCA/internal/handler/api"
	internalrepo "SmartDCA/internal/repository"
	"SmartDCA/internal/services/indicator"
	"SmartDCA/internal/services/marketdata"
	"SmartDCA/internal/services/signal"
	"SmartDCA/internal/usecase"
	"SmartDCA/pkg/cache"
	pkgch "SmartDCA/pkg/clickhouse"
	"SmartDCA/pkg/config"
	xhttp "SmartDCA/pkg/http"
	pkgkafka "SmartDCA/pkg/kafka"
	applogger "SmartDCA/pkg/logger"
	"SmartDCA/pkg/metrics"
	"SmartDCA/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive backend is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
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
	if err := client.InitSchema(ctx, internalrepo.DailyBarsSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePriceStore creates the ClickHouse-backed bar archive, or nil.
func ProvidePriceStore(chClient *pkgch.Client, logger *applogger.Logger) repository.PriceStore {
	if chClient == nil {
		return nil
	}
	store := internalrepo.NewCHPriceStore(chClient)
	store.SetLogger(logger)
	return store
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
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

// ProvideResultPublisher creates the Kafka-backed result publisher, or nil.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config, logger *applogger.Logger) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topic)
	pub.SetLogger(logger)
	return pub
}

// ProvideCache creates the series cache: redis when configured, in-process
// memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(1000),
			cache.WithMemoryCleanup(time.Minute),
		), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvidePriceSource builds the provider chain and wraps it with caching and
// the optional archive.
func ProvidePriceSource(cfg *config.Config, c cache.Service, store repository.PriceStore, logger *applogger.Logger) repository.PriceSource {
	providers := []marketdata.Provider{
		marketdata.NewKuCoinProvider(cfg.MarketData.KucoinBaseURL, cfg.MarketData.Timeout),
		marketdata.NewYahooProvider(cfg.MarketData.YahooBaseURL, cfg.MarketData.Timeout),
	}
	fetcher := marketdata.NewFetcher(providers, logger)
	return marketdata.NewCachedSource(fetcher, c, store, cfg.MarketData.CacheTTL, logger)
}

// ProvideSimulator assembles the indicator engine, signal scorer, and
// simulator with their default tuning.
func ProvideSimulator() *usecase.Simulator {
	engine := indicator.New(indicator.Config{})
	scorer := signal.New(signal.Config{})
	return usecase.NewSimulator(engine, scorer)
}

// ProvideEvalPolicy maps the configured buy-day policy.
func ProvideEvalPolicy(cfg *config.Config) usecase.EvalPolicy {
	p := usecase.EvalPolicy{DayOfMonth: cfg.Strategy.EvalDayOfMonth}
	switch cfg.Strategy.EvalMode {
	case "fixed_day":
		p.Mode = usecase.EvalFixedDay
	default:
		p.Mode = usecase.EvalBestDay
	}
	return p
}

// ProvideAnalyzer creates the batch analysis use case.
func ProvideAnalyzer(
	source repository.PriceSource,
	sim *usecase.Simulator,
	rec repository.Metrics,
	pub repository.ResultPublisher,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	opts := []usecase.AnalyzerOption{
		usecase.WithMetrics(rec),
		usecase.WithLogger(logger),
		usecase.WithWorkers(cfg.Strategy.Workers),
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	return usecase.NewAnalyzer(source, sim, opts...)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(logger *applogger.Logger, analyzer *usecase.Analyzer, eval usecase.EvalPolicy, cfg *config.Config) xhttp.Handler {
	h := api.NewDCAEchoHandler(logger, analyzer)
	h.SetEvalPolicy(eval)
	h.SetRateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	pub repository.ResultPublisher,
) *server.App {
	return server.New(cfg, logger, handler, chClient, pub)
}
