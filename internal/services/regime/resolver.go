package regime

import (
	"MacroPulse/internal/domain/models"
)

// Resolver turns per-day rule evaluations into exactly one raw decision.
type Resolver struct {
	rules *Rules
}

// NewResolver builds a resolver over the given rule set.
func NewResolver(rules *Rules) *Resolver { return &Resolver{rules: rules} }

// Resolve evaluates all candidate regimes for one day and picks the decision:
//   - exactly one candidate matched: that regime
//   - none matched: Transition
//   - several matched: fixed precedence, crisis > pivot > late-cycle >
//     expansion
//
// The full matched set is kept on the decision even when precedence discards
// alternatives, so ties stay visible in the audit trail.
func (r *Resolver) Resolve(rec models.FeatureRecord) models.RawDecision {
	var matched []models.RegimeLabel
	for _, label := range models.RegimePrecedence {
		if r.rules.Evaluate(label, rec) {
			matched = append(matched, label)
		}
	}

	label := models.Transition
	if len(matched) > 0 {
		// RegimePrecedence is iterated in order, so the first match wins.
		label = matched[0]
	}

	return models.RawDecision{Date: rec.Date, Label: label, Matched: matched}
}

// ResolveAll classifies a validated, strictly date-ordered feature sequence.
// Validation failures abort before any decision is produced.
func (r *Resolver) ResolveAll(records []models.FeatureRecord) ([]models.RawDecision, error) {
	if err := ValidateSequence(records); err != nil {
		return nil, err
	}
	out := make([]models.RawDecision, 0, len(records))
	for _, rec := range records {
		out = append(out, r.Resolve(rec))
	}
	return out, nil
}
