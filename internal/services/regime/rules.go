package regime

import (
	"MacroPulse/internal/domain/models"
)

// Thresholds are the fixed economic constants behind the rule set.
// They are deliberately configuration, not fitted statistics, so every cut-off
// stays traceable to a documented rationale. Units follow the source series:
// yields and spreads in percentage points, VIX in index points.
type Thresholds struct {
	RateMove       float64 `yaml:"rate_move"`        // 10bp monthly move = meaningful policy repricing
	CreditWiden    float64 `yaml:"credit_widen"`     // 10bp 1M widening = rising stress
	CreditStable   float64 `yaml:"credit_stable"`    // within +/-5bp = broadly stable credit
	VolCalm        float64 `yaml:"vol_calm"`         // VIX below 15 = calm risk environment
	VolElevated    float64 `yaml:"vol_elevated"`     // VIX at/above 20 = elevated uncertainty
	VolSpike       float64 `yaml:"vol_spike"`        // +5pts in 1M = volatility shock
	CreditZWiden   float64 `yaml:"credit_z_widen"`   // spread 1sd above its 1Y mean
	CreditZExtreme float64 `yaml:"credit_z_extreme"` // spread 1.5sd above its 1Y mean
	StressAlert    float64 `yaml:"stress_alert"`     // 2 of 3 independent stress signals
	StressForce    float64 `yaml:"stress_force"`     // all 3 stress signals force crisis
}

// DefaultThresholds mirrors the documented constants of the published
// rule set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RateMove:       0.10,
		CreditWiden:    0.10,
		CreditStable:   0.05,
		VolCalm:        15,
		VolElevated:    20,
		VolSpike:       5,
		CreditZWiden:   1.0,
		CreditZExtreme: 1.5,
		StressAlert:    2,
		StressForce:    3,
	}
}

// Rules evaluates per-regime qualifying conditions against one FeatureRecord.
// All predicates are pure: no state, no I/O, one record in, one bool out.
type Rules struct {
	t Thresholds
}

// NewRules builds a rule set with the given thresholds.
func NewRules(t Thresholds) *Rules { return &Rules{t: t} }

// volShock reports a large one-month volatility jump.
func (r *Rules) volShock(rec models.FeatureRecord) bool {
	return rec.VolChange > r.t.VolSpike
}

// Crisis: coordinated stress across credit and volatility. Credit must be
// widening both in momentum and relative to its one-year range, alongside a
// volatility shock, with at least one corroborating signal. A full sweep of
// the stress composite qualifies on its own.
func (r *Rules) Crisis(rec models.FeatureRecord) bool {
	if rec.StressComposite >= r.t.StressForce {
		return true
	}
	widening := rec.CreditChange > r.t.CreditWiden && rec.CreditZ > r.t.CreditZWiden
	corroborated := rec.StressComposite >= r.t.StressAlert || rec.CreditZ > r.t.CreditZExtreme
	return widening && r.volShock(rec) && corroborated
}

// Pivot: front-end rates falling (markets pricing easing), long end not
// rising, volatility elevated but not in shock.
func (r *Rules) Pivot(rec models.FeatureRecord) bool {
	return rec.Rate2Change < -r.t.RateMove &&
		rec.Rate10Change <= 0 &&
		rec.VolLevel >= r.t.VolElevated &&
		!r.volShock(rec)
}

// LateCycle: curve inversion with calm credit and volatility.
func (r *Rules) LateCycle(rec models.FeatureRecord) bool {
	return rec.CurveSlope < 0 &&
		abs(rec.CreditChange) < r.t.CreditStable &&
		rec.VolLevel < r.t.VolCalm
}

// Expansion: growth/inflation repricing across the curve, tightening credit,
// low volatility.
func (r *Rules) Expansion(rec models.FeatureRecord) bool {
	return rec.Rate2Change > r.t.RateMove &&
		rec.Rate10Change > r.t.RateMove &&
		rec.CreditChange < -r.t.CreditStable &&
		rec.VolLevel < r.t.VolCalm
}

// Evaluate applies the predicate for one candidate label. Transition has no
// positive predicate: it is the residual case and always evaluates false here.
func (r *Rules) Evaluate(label models.RegimeLabel, rec models.FeatureRecord) bool {
	switch label {
	case models.RiskOffCrisis:
		return r.Crisis(rec)
	case models.PolicyPivot:
		return r.Pivot(rec)
	case models.LateCycle:
		return r.LateCycle(rec)
	case models.RiskOnExpansion:
		return r.Expansion(rec)
	default:
		return false
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
