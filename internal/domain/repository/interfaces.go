package repository

import (
	"context"
	"time"

	"MacroPulse/internal/domain/models"
)

// MacroSource pulls raw macro series from an external provider. It returns a
// map keyed by internal series name; per-series failures may be tolerated by
// the implementation, but an empty result is an error.
type MacroSource interface {
	Fetch(ctx context.Context) (map[string][]models.Observation, error)
}

// Publisher emits regime-transition events for downstream consumers.
type Publisher interface {
	PublishTransitions(ctx context.Context, transitions []models.RegimeTransition) error
	Close() error
}

// Storage persists raw observations and daily labels.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreObservations(ctx context.Context, obs []models.Observation) error
	StoreLabels(ctx context.Context, raw []models.RawDecision, smoothed []models.SmoothedLabel) error
	QueryLabels(ctx context.Context, from, to time.Time) ([]models.SmoothedLabel, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records pipeline health indicators.
type Metrics interface {
	RecordSeriesPoints(series string, n int)
	RecordPipelineRun(outcome string)
	RecordError(kind string)
	RecordRegimeDays(regime string, days int)
	RecordCurrentRegime(regime string)
	RecordLatency(op string, seconds float64)
}
