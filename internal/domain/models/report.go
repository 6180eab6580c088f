package models

import "time"

// DistributionRow is one line of the regime distribution table.
type DistributionRow struct {
	Regime RegimeLabel `json:"regime"`
	Days   int         `json:"days"`
	Share  float64     `json:"share_pct"` // percentage of all classified days
}

// SignalMediansRow holds per-regime medians of the core signals.
// Medians, not means: stress episodes have heavy tails.
type SignalMediansRow struct {
	Regime       RegimeLabel `json:"regime"`
	Days         int         `json:"days"`
	CurveSlope   float64     `json:"curve_10y2y"`
	Rate2Change  float64     `json:"ust_2y_chg_1m"`
	Rate10Change float64     `json:"ust_10y_chg_1m"`
	CreditLevel  float64     `json:"credit_level"`
	CreditChange float64     `json:"credit_chg_1m"`
	VolLevel     float64     `json:"vix_level"`
	VolChange    float64     `json:"vix_chg_1m"`
	Stress       float64     `json:"risk_off_score"`
}

// SignalStat pairs the mean and sample standard deviation of one signal
// within a regime group.
type SignalStat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// SummaryRow holds per-regime mean/std statistics of the core signals.
// Complements the median table: the dispersion column shows how uniform
// each regime's days are, which medians hide.
type SummaryRow struct {
	Regime       RegimeLabel `json:"regime"`
	Days         int         `json:"days"`
	CurveSlope   SignalStat  `json:"curve_10y2y"`
	Rate2Change  SignalStat  `json:"ust_2y_chg_1m"`
	CreditLevel  SignalStat  `json:"credit_level"`
	CreditChange SignalStat  `json:"credit_chg_1m"`
	VolLevel     SignalStat  `json:"vix_level"`
	VolChange    SignalStat  `json:"vix_chg_1m"`
	Stress       SignalStat  `json:"risk_off_score"`
}

// StressWindow is a named historical date range used for scorecard evaluation.
type StressWindow struct {
	Name  string
	Start time.Time
	End   time.Time
}

// ScorecardRow summarizes regime behavior inside one stress window.
// NoData marks windows outside the sample; such windows are reported
// explicitly, never dropped.
type ScorecardRow struct {
	Window       string      `json:"window"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	NoData       bool        `json:"no_data"`
	Days         int         `json:"days"`
	Dominant     RegimeLabel `json:"dominant_regime,omitempty"`
	Transitions  int         `json:"transitions"`
	CrisisShare  float64     `json:"crisis_share_pct"`
	FirstCrisis  *time.Time  `json:"first_crisis_date,omitempty"`
	MaxCrisisRun int         `json:"max_crisis_run_days"`
	StressMedian float64     `json:"stress_median"`
	StressMax    float64     `json:"stress_max"`
	// Share of days at or above each configured stress-score threshold,
	// keyed in threshold order.
	ScoreShares []ScoreShare `json:"score_shares,omitempty"`
}

// ScoreShare is the fraction of window days with StressComposite >= Threshold.
type ScoreShare struct {
	Threshold float64 `json:"threshold"`
	SharePct  float64 `json:"share_pct"`
}

// RegimeReport is the full compiled output of one pipeline run.
type RegimeReport struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	DataStart    time.Time          `json:"data_start"`
	DataEnd      time.Time          `json:"data_end"`
	MinRunLength int                `json:"min_run_length"`
	Labels       []SmoothedLabel    `json:"labels"`
	Distribution []DistributionRow  `json:"distribution"`
	Episodes     []RegimeEpisode    `json:"episodes"`
	Medians      []SignalMediansRow `json:"medians"`
	Summary      []SummaryRow       `json:"summary"`
	Scorecard    []ScorecardRow     `json:"scorecard"`
}
