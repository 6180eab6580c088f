package di

import (
	"context"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	domsvc "MacroPulse/internal/domain/service"
	"MacroPulse/internal/handler/api"
	internalrepo "MacroPulse/internal/repository"
	icache "MacroPulse/internal/service/cache"
	"MacroPulse/internal/service/fred"
	"MacroPulse/internal/services/analytics"
	"MacroPulse/internal/services/features"
	"MacroPulse/internal/services/regime"
	"MacroPulse/internal/usecase"
	pkgch "MacroPulse/pkg/clickhouse"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	pkgkafka "MacroPulse/pkg/kafka"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/metrics"
	"MacroPulse/pkg/server"
	"MacroPulse/pkg/util"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "json"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when persistence
// is disabled.
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
	return client, nil
}

// ProvideStorage creates the macro store and ensures its schema.
func ProvideStorage(chClient *pkgch.Client, cfg *config.Config) (repository.Storage, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseMacroStore(chClient.DB(), cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is
// disabled.
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

// ProvidePublisher creates the transition publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTransitionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache selects Redis when configured, in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideMacroSource creates the FRED ingestion client.
func ProvideMacroSource(cfg *config.Config, l *applogger.Logger) repository.MacroSource {
	opts := []fred.Option{}
	if cfg.FRED.BaseURL != "" {
		opts = append(opts, fred.WithBaseURL(cfg.FRED.BaseURL))
	}
	if cfg.FRED.StartDate != "" {
		if start, ok := util.ParseDate(cfg.FRED.StartDate); ok {
			opts = append(opts, fred.WithStartDate(start))
		}
	}
	if cfg.FRED.RetryMax > 0 {
		opts = append(opts, fred.WithRetry(cfg.FRED.RetryMax, cfg.FRED.BackoffMin, cfg.FRED.BackoffMax))
	}
	if cfg.FRED.Timeout > 0 {
		opts = append(opts, fred.WithTimeout(cfg.FRED.Timeout))
	}
	return fred.New(l, cfg.FRED.Series, opts...)
}

// ProvideClassifier builds the rule engine from configured thresholds.
// Unset (zero) thresholds fall back to the documented defaults.
func ProvideClassifier(cfg *config.Config) domsvc.Classifier {
	t := regime.DefaultThresholds()
	ct := cfg.Regime.Thresholds
	if ct.RateMove != 0 {
		t.RateMove = ct.RateMove
	}
	if ct.CreditWiden != 0 {
		t.CreditWiden = ct.CreditWiden
	}
	if ct.CreditStable != 0 {
		t.CreditStable = ct.CreditStable
	}
	if ct.VolCalm != 0 {
		t.VolCalm = ct.VolCalm
	}
	if ct.VolElevated != 0 {
		t.VolElevated = ct.VolElevated
	}
	if ct.VolSpike != 0 {
		t.VolSpike = ct.VolSpike
	}
	if ct.CreditZWiden != 0 {
		t.CreditZWiden = ct.CreditZWiden
	}
	if ct.CreditZExtreme != 0 {
		t.CreditZExtreme = ct.CreditZExtreme
	}
	if ct.StressAlert != 0 {
		t.StressAlert = ct.StressAlert
	}
	if ct.StressForce != 0 {
		t.StressForce = ct.StressForce
	}
	return regime.NewEngine(regime.NewRules(t), cfg.Regime.MinRunLength)
}

// ProvideExtractor builds the feature extractor from configured windows.
func ProvideExtractor(cfg *config.Config) *features.Extractor {
	fc := features.DefaultConfig()
	if cfg.Features.LagDays > 0 {
		fc.LagDays = cfg.Features.LagDays
	}
	if cfg.Features.Days1M > 0 {
		fc.Days1M = cfg.Features.Days1M
	}
	if cfg.Features.Days1Y > 0 {
		fc.Days1Y = cfg.Features.Days1Y
	}
	if cfg.Features.FillLimit > 0 {
		fc.FillLimit = cfg.Features.FillLimit
	}
	return features.NewExtractor(fc)
}

// ProvideAggregator builds the report aggregator from configured stress
// windows and score thresholds.
func ProvideAggregator(cfg *config.Config) *analytics.Aggregator {
	windows := make([]models.StressWindow, 0, len(cfg.Report.StressWindows))
	for _, w := range cfg.Report.StressWindows {
		start, ok1 := util.ParseDate(w.Start)
		end, ok2 := util.ParseDate(w.End)
		if !ok1 || !ok2 {
			continue // validated at load, guard anyway
		}
		windows = append(windows, models.StressWindow{Name: w.Name, Start: start, End: end})
	}

	thresholds := make([]float64, 0, len(cfg.Report.ScoreThresholds))
	for _, t := range cfg.Report.ScoreThresholds {
		thresholds = append(thresholds, float64(t))
	}
	if len(thresholds) == 0 {
		thresholds = []float64{2, 3}
	}
	return analytics.NewAggregator(windows, thresholds)
}

// ProvideReportPipeline assembles the pipeline use case.
func ProvideReportPipeline(
	source repository.MacroSource,
	classifier domsvc.Classifier,
	extractor *features.Extractor,
	aggregator *analytics.Aggregator,
	storage repository.Storage,
	publisher repository.Publisher,
	cache icache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ReportPipeline {
	opts := []usecase.PipelineOption{
		usecase.WithCache(cache, cfg.Report.CacheTTL),
	}
	if storage != nil {
		opts = append(opts, usecase.WithStorage(storage))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	return usecase.NewReportPipeline(
		source, classifier, extractor, aggregator, m, l,
		cfg.Regime.MinRunLength, opts...,
	)
}

// ProvideHandler creates the report HTTP handler. Storage may be nil; the
// history endpoint then reports itself unavailable.
func ProvideHandler(l *applogger.Logger, pipeline *usecase.ReportPipeline, storage repository.Storage) xhttp.Handler {
	return api.NewReportEchoHandler(l, pipeline, storage)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.ReportPipeline,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher repository.Publisher,
) *server.App {
	return server.New(cfg, l, pipeline, handler, chClient, publisher)
}
