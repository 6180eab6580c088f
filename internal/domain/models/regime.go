package models

import "time"

// RegimeLabel is a discrete macro-credit market state assigned per trading day.
type RegimeLabel string

const (
	RiskOffCrisis   RegimeLabel = "risk_off_crisis"
	PolicyPivot     RegimeLabel = "policy_pivot"
	LateCycle       RegimeLabel = "late_cycle"
	RiskOnExpansion RegimeLabel = "risk_on_expansion"
	Transition      RegimeLabel = "transition"
)

// RegimePrecedence orders the four positively-scored regimes for tie-breaking:
// acute stress dominates milder characterizations. Transition is never in a
// tie (it is the residual when nothing else qualifies).
var RegimePrecedence = []RegimeLabel{
	RiskOffCrisis,
	PolicyPivot,
	LateCycle,
	RiskOnExpansion,
}

// AllRegimes lists every label in reporting order.
var AllRegimes = []RegimeLabel{
	RiskOffCrisis,
	PolicyPivot,
	LateCycle,
	RiskOnExpansion,
	Transition,
}

// DisplayName returns the human-readable label used in report tables.
func (r RegimeLabel) DisplayName() string {
	switch r {
	case RiskOffCrisis:
		return "Risk-off / crisis"
	case PolicyPivot:
		return "Policy pivot"
	case LateCycle:
		return "Late-cycle"
	case RiskOnExpansion:
		return "Risk-on / expansion"
	case Transition:
		return "Transition"
	default:
		return string(r)
	}
}

// IsValid reports whether r is one of the five known labels.
func (r RegimeLabel) IsValid() bool {
	switch r {
	case RiskOffCrisis, PolicyPivot, LateCycle, RiskOnExpansion, Transition:
		return true
	default:
		return false
	}
}

// FeatureRecord carries the lagged macro signals for one trading day.
// Every value reflects only information available at the decision date;
// the lagging is done upstream by the feature extractor.
type FeatureRecord struct {
	Date time.Time

	CurveSlope   float64 // 10Y - 2Y yield spread
	Rate2Change  float64 // 2Y yield 1M delta (front-end policy expectations)
	Rate10Change float64 // 10Y yield 1M delta (growth/inflation repricing)

	CreditChange float64 // BAA spread 1M delta
	CreditLevel  float64 // BAA spread level
	CreditZ      float64 // rolling 1Y z-score of the BAA spread

	VolLevel  float64 // VIX level
	VolChange float64 // VIX 1M delta

	StressComposite float64 // risk-off signal count (0..3)
}

// RawDecision is the resolver output for one day, before smoothing.
// Matched records every candidate whose conditions held, including the ones
// precedence discarded, so classifications stay auditable.
type RawDecision struct {
	Date    time.Time
	Label   RegimeLabel
	Matched []RegimeLabel
}

// SmoothedLabel is the final persistence-filtered label for one day.
// The smoothed series is the only artifact downstream aggregation consumes.
type SmoothedLabel struct {
	Date  time.Time
	Label RegimeLabel
}

// RegimeEpisode is a maximal contiguous run of identical smoothed labels.
// Derived from the smoothed series, never stored independently.
type RegimeEpisode struct {
	Label RegimeLabel
	Start time.Time
	End   time.Time
	Days  int
}

// RegimeTransition is published when a pipeline run observes the smoothed
// label change from one day to the next.
type RegimeTransition struct {
	Date time.Time   `json:"date"`
	From RegimeLabel `json:"from"`
	To   RegimeLabel `json:"to"`
}

// Observation is a single raw macro series point as ingested from FRED.
type Observation struct {
	Series string
	Date   time.Time
	Value  float64
}
