package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	domsvc "MacroPulse/internal/domain/service"
	icache "MacroPulse/internal/service/cache"
	"MacroPulse/internal/services/analytics"
	"MacroPulse/internal/services/features"
	applogger "MacroPulse/pkg/logger"
)

const reportCacheKey = "macropulse:report:latest"

// ReportPipeline runs the full batch pass: ingest raw series, derive
// features, classify regimes, aggregate the report, then persist and publish.
// A failed run leaves the previously published report in place.
type ReportPipeline struct {
	source     repository.MacroSource
	storage    repository.Storage   // optional
	publisher  repository.Publisher // optional
	classifier domsvc.Classifier
	extractor  *features.Extractor
	aggregator *analytics.Aggregator
	cache      icache.BytesCache // optional
	metrics    repository.Metrics
	logger     *applogger.Logger
	minRun     int
	cacheTTL   time.Duration

	mu     sync.RWMutex
	latest *models.RegimeReport
}

// PipelineOption configures optional pipeline collaborators.
type PipelineOption func(*ReportPipeline)

// WithStorage attaches persistent storage for observations and labels.
func WithStorage(s repository.Storage) PipelineOption {
	return func(p *ReportPipeline) { p.storage = s }
}

// WithPublisher attaches a transition event publisher.
func WithPublisher(pub repository.Publisher) PipelineOption {
	return func(p *ReportPipeline) { p.publisher = pub }
}

// WithCache attaches a byte cache for the serialized report.
func WithCache(c icache.BytesCache, ttl time.Duration) PipelineOption {
	return func(p *ReportPipeline) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// NewReportPipeline creates the pipeline use case.
func NewReportPipeline(
	source repository.MacroSource,
	classifier domsvc.Classifier,
	extractor *features.Extractor,
	aggregator *analytics.Aggregator,
	metrics repository.Metrics,
	logger *applogger.Logger,
	minRun int,
	opts ...PipelineOption,
) *ReportPipeline {
	p := &ReportPipeline{
		source:     source,
		classifier: classifier,
		extractor:  extractor,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger,
		minRun:     minRun,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full pipeline pass.
func (p *ReportPipeline) Run(ctx context.Context) error {
	start := time.Now()
	err := p.run(ctx)
	p.metrics.RecordLatency("pipeline_run", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordPipelineRun("error")
		return err
	}
	p.metrics.RecordPipelineRun("ok")
	return nil
}

func (p *ReportPipeline) run(ctx context.Context) error {
	series, err := p.source.Fetch(ctx)
	if err != nil {
		p.metrics.RecordError("fetch")
		return fmt.Errorf("fetch series: %w", err)
	}
	var allObs []models.Observation
	for name, obs := range series {
		p.metrics.RecordSeriesPoints(name, len(obs))
		allObs = append(allObs, obs...)
	}

	frame, err := features.NewFrame(series)
	if err != nil {
		p.metrics.RecordError("frame")
		return fmt.Errorf("build frame: %w", err)
	}

	records, featReport, err := p.extractor.Build(frame)
	if err != nil {
		p.metrics.RecordError("features")
		return fmt.Errorf("build features: %w", err)
	}
	for _, gap := range featReport.Gaps {
		p.logger.Warn("long gap in series",
			applogger.String("series", gap.Series),
			applogger.Time("start", gap.Start),
			applogger.Time("end", gap.End),
			applogger.Int("days", gap.Days),
		)
	}
	if len(records) == 0 {
		p.metrics.RecordError("features")
		return fmt.Errorf("no complete feature rows after warmup")
	}

	raw, smoothed, err := p.classifier.Classify(records)
	if err != nil {
		p.metrics.RecordError("classify")
		return fmt.Errorf("classify: %w", err)
	}

	report, err := p.compile(records, smoothed)
	if err != nil {
		p.metrics.RecordError("aggregate")
		return fmt.Errorf("aggregate: %w", err)
	}

	if p.storage != nil {
		if err := p.storage.StoreObservations(ctx, allObs); err != nil {
			p.metrics.RecordError("storage")
			p.logger.Error("store observations failed", applogger.Error(err))
		}
		if err := p.storage.StoreLabels(ctx, raw, smoothed); err != nil {
			p.metrics.RecordError("storage")
			p.logger.Error("store labels failed", applogger.Error(err))
		}
	}

	if p.publisher != nil {
		transitions := Transitions(smoothed)
		if len(transitions) > 0 {
			if err := p.publisher.PublishTransitions(ctx, transitions); err != nil {
				p.metrics.RecordError("publish")
				p.logger.Error("publish transitions failed", applogger.Error(err))
			}
		}
	}

	p.publish(ctx, report)

	p.logger.Info("pipeline run complete",
		applogger.Int("input_days", featReport.InputDays),
		applogger.Int("classified_days", len(smoothed)),
		applogger.Time("data_start", report.DataStart),
		applogger.Time("data_end", report.DataEnd),
		applogger.String("current_regime", string(smoothed[len(smoothed)-1].Label)),
	)
	return nil
}

func (p *ReportPipeline) compile(records []models.FeatureRecord, smoothed []models.SmoothedLabel) (*models.RegimeReport, error) {
	medians, err := p.aggregator.SignalMedians(records, smoothed)
	if err != nil {
		return nil, err
	}
	summary, err := p.aggregator.Summary(records, smoothed)
	if err != nil {
		return nil, err
	}

	report := &models.RegimeReport{
		GeneratedAt:  time.Now().UTC(),
		DataStart:    smoothed[0].Date,
		DataEnd:      smoothed[len(smoothed)-1].Date,
		MinRunLength: p.minRun,
		Labels:       smoothed,
		Distribution: p.aggregator.Distribution(smoothed),
		Episodes:     p.aggregator.Episodes(smoothed),
		Medians:      medians,
		Summary:      summary,
		Scorecard:    p.aggregator.Scorecard(records, smoothed),
	}

	for _, row := range report.Distribution {
		p.metrics.RecordRegimeDays(string(row.Regime), row.Days)
	}
	p.metrics.RecordCurrentRegime(string(smoothed[len(smoothed)-1].Label))
	return report, nil
}

func (p *ReportPipeline) publish(ctx context.Context, report *models.RegimeReport) {
	p.mu.Lock()
	p.latest = report
	p.mu.Unlock()

	if p.cache == nil {
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		p.logger.Error("marshal report for cache failed", applogger.Error(err))
		return
	}
	if err := p.cache.SetBytes(ctx, reportCacheKey, b, p.cacheTTL); err != nil {
		p.logger.Warn("cache report failed", applogger.Error(err))
	}
}

// Latest returns the most recent compiled report. Falls back to the cache
// when no run has completed in this process yet.
func (p *ReportPipeline) Latest() (*models.RegimeReport, bool) {
	p.mu.RLock()
	r := p.latest
	p.mu.RUnlock()
	if r != nil {
		return r, true
	}

	if p.cache != nil {
		if b, ok, err := p.cache.GetBytes(context.Background(), reportCacheKey); err == nil && ok {
			var cached models.RegimeReport
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, true
			}
		}
	}
	return nil, false
}

// Transitions derives regime-change events from the smoothed label series.
func Transitions(smoothed []models.SmoothedLabel) []models.RegimeTransition {
	var out []models.RegimeTransition
	for i := 1; i < len(smoothed); i++ {
		if smoothed[i].Label != smoothed[i-1].Label {
			out = append(out, models.RegimeTransition{
				Date: smoothed[i].Date,
				From: smoothed[i-1].Label,
				To:   smoothed[i].Label,
			})
		}
	}
	return out
}
