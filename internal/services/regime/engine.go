package regime

import (
	"MacroPulse/internal/domain/models"
	domsvc "MacroPulse/internal/domain/service"
)

// Engine chains resolution and smoothing into the full classification pass.
// One forward scan each; no I/O, no clock, no shared state.
type Engine struct {
	resolver *Resolver
	smoother *Smoother
}

// NewEngine builds the classifier from a rule set and the persistence filter
// confirmation length.
func NewEngine(rules *Rules, minRun int) *Engine {
	return &Engine{
		resolver: NewResolver(rules),
		smoother: NewSmoother(minRun),
	}
}

// Classify validates the sequence, resolves a raw decision per day, and
// applies the hysteresis filter. On error nothing is returned: a failed run
// leaves no partial label output.
func (e *Engine) Classify(records []models.FeatureRecord) ([]models.RawDecision, []models.SmoothedLabel, error) {
	raw, err := e.resolver.ResolveAll(records)
	if err != nil {
		return nil, nil, err
	}
	return raw, e.smoother.Smooth(raw), nil
}

var _ domsvc.Classifier = (*Engine)(nil)
