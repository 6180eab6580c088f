package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MacroPulse/internal/domain/models"
)

// Series names expected in a MacroFrame. These are the internal names the
// FRED ingestion maps the provider codes onto.
const (
	SeriesUST10  = "ust_10y"
	SeriesUST2   = "ust_2y"
	SeriesCredit = "baa_10y_spread"
	SeriesVix    = "vix"
)

// RequiredSeries lists every input series the extractor needs.
var RequiredSeries = []string{SeriesUST10, SeriesUST2, SeriesCredit, SeriesVix}

// MacroFrame is a date-aligned view of the raw macro series. Missing values
// are NaN. Dates are strictly increasing.
type MacroFrame struct {
	Dates  []time.Time
	Values map[string][]float64
}

// NewFrame aligns per-series observations onto a common sorted date axis.
// Duplicate dates within a series keep the last value, matching the
// ingestion contract.
func NewFrame(series map[string][]models.Observation) (*MacroFrame, error) {
	for _, name := range RequiredSeries {
		if len(series[name]) == 0 {
			return nil, fmt.Errorf("series %s has no observations", name)
		}
	}

	seen := map[time.Time]struct{}{}
	var dates []time.Time
	for _, obs := range series {
		for _, o := range obs {
			d := o.Date.Truncate(24 * time.Hour)
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	idx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		idx[d] = i
	}

	values := make(map[string][]float64, len(series))
	for name, obs := range series {
		col := nanSlice(len(dates))
		for _, o := range obs {
			col[idx[o.Date.Truncate(24*time.Hour)]] = o.Value
		}
		values[name] = col
	}

	return &MacroFrame{Dates: dates, Values: values}, nil
}

// Gap is a run of missing values in one series that outlasted the fill limit.
// Gaps are reported, never silently interpolated.
type Gap struct {
	Series string
	Start  time.Time
	End    time.Time
	Days   int
}

// Report describes what the extractor discarded while building records.
type Report struct {
	InputDays  int
	OutputDays int
	WarmupDays int // rows dropped while rolling statistics accumulate
	Gaps       []Gap
}

// Config controls the lag and window lengths, in trading days.
type Config struct {
	LagDays   int `yaml:"lag_days"`   // decision lag to avoid lookahead
	Days1M    int `yaml:"days_1m"`    // one month of trading days
	Days1Y    int `yaml:"days_1y"`    // one year of trading days
	FillLimit int `yaml:"fill_limit"` // max days to bridge small gaps after lagging
}

// DefaultConfig mirrors the published windows.
func DefaultConfig() Config {
	return Config{LagDays: 1, Days1M: 21, Days1Y: 252, FillLimit: 5}
}

// Extractor builds lagged, interpretable macro features for regime analysis.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.LagDays <= 0 {
		cfg.LagDays = 1
	}
	if cfg.Days1M <= 0 {
		cfg.Days1M = 21
	}
	if cfg.Days1Y <= 0 {
		cfg.Days1Y = 252
	}
	return &Extractor{cfg: cfg}
}

// Build derives the feature sequence from a raw frame. Steps, in order:
// lag every series by LagDays, forward-fill at most FillLimit days, then
// compute curve slope, one-month diffs, rolling one-year z-scores, and the
// risk-off score. Rows where any feature is still undefined (rolling warm-up,
// unbridged gaps) are dropped and counted in the report; longer gaps are
// reported per series.
func (e *Extractor) Build(frame *MacroFrame) ([]models.FeatureRecord, *Report, error) {
	n := len(frame.Dates)
	if n == 0 {
		return nil, nil, fmt.Errorf("empty macro frame")
	}
	for _, name := range RequiredSeries {
		if len(frame.Values[name]) != n {
			return nil, nil, fmt.Errorf("series %s length %d != %d dates", name, len(frame.Values[name]), n)
		}
	}

	rep := &Report{InputDays: n}

	lagged := make(map[string][]float64, len(RequiredSeries))
	for _, name := range RequiredSeries {
		col := shift(frame.Values[name], e.cfg.LagDays)
		rep.Gaps = append(rep.Gaps, gapsOf(name, frame.Dates, col, e.cfg.FillLimit)...)
		lagged[name] = ffillLimit(col, e.cfg.FillLimit)
	}

	ust10 := lagged[SeriesUST10]
	ust2 := lagged[SeriesUST2]
	credit := lagged[SeriesCredit]
	vix := lagged[SeriesVix]

	curve := make([]float64, n)
	for i := 0; i < n; i++ {
		curve[i] = ust10[i] - ust2[i] // NaN propagates
	}

	chg2 := diff(ust2, e.cfg.Days1M)
	chg10 := diff(ust10, e.cfg.Days1M)
	creditChg := diff(credit, e.cfg.Days1M)
	vixChg := diff(vix, e.cfg.Days1M)

	minPeriods := int(float64(e.cfg.Days1Y) * 0.8)
	creditZ := rollingZScore(credit, e.cfg.Days1Y, minPeriods)

	out := make([]models.FeatureRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := models.FeatureRecord{
			Date:         frame.Dates[i],
			CurveSlope:   curve[i],
			Rate2Change:  chg2[i],
			Rate10Change: chg10[i],
			CreditChange: creditChg[i],
			CreditLevel:  credit[i],
			CreditZ:      creditZ[i],
			VolLevel:     vix[i],
			VolChange:    vixChg[i],
		}
		rec.StressComposite = stressScore(curve[i], creditChg[i], vixChg[i])
		if !finiteRecord(rec) {
			rep.WarmupDays++
			continue
		}
		out = append(out, rec)
	}
	rep.OutputDays = len(out)

	if len(out) == 0 {
		return nil, rep, fmt.Errorf("no fully-defined feature rows (input=%d, dropped=%d)", n, rep.WarmupDays)
	}
	return out, rep, nil
}

// stressScore counts independent risk-off signals: curve inversion, credit
// widening, volatility rising. All three inputs must be defined.
func stressScore(curve, creditChg, vixChg float64) float64 {
	if math.IsNaN(curve) || math.IsNaN(creditChg) || math.IsNaN(vixChg) {
		return math.NaN()
	}
	score := 0.0
	if curve < 0 {
		score++
	}
	if creditChg > 0 {
		score++
	}
	if vixChg > 0 {
		score++
	}
	return score
}

func finiteRecord(r models.FeatureRecord) bool {
	for _, v := range []float64{
		r.CurveSlope, r.Rate2Change, r.Rate10Change, r.CreditChange,
		r.CreditLevel, r.CreditZ, r.VolLevel, r.VolChange, r.StressComposite,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// shift moves values forward by lag positions; the first lag entries become
// NaN. This is what makes every feature decision-time safe.
func shift(src []float64, lag int) []float64 {
	out := nanSlice(len(src))
	for i := lag; i < len(src); i++ {
		out[i] = src[i-lag]
	}
	return out
}

// ffillLimit carries the last valid value forward at most limit consecutive
// days. Longer runs stay NaN and surface in the gap report.
func ffillLimit(src []float64, limit int) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	last := math.NaN()
	carried := 0
	for i := range out {
		if !math.IsNaN(out[i]) {
			last = out[i]
			carried = 0
			continue
		}
		if !math.IsNaN(last) && carried < limit {
			out[i] = last
			carried++
		}
	}
	return out
}

// diff computes x[i] - x[i-window]; undefined entries are NaN.
func diff(src []float64, window int) []float64 {
	out := nanSlice(len(src))
	for i := window; i < len(src); i++ {
		out[i] = src[i] - src[i-window]
	}
	return out
}

// rollingZScore normalizes each value against the trailing window
// (inclusive). Entries with fewer than minPeriods defined values, or zero
// dispersion, are NaN.
func rollingZScore(src []float64, window, minPeriods int) []float64 {
	out := nanSlice(len(src))
	for i := range src {
		if math.IsNaN(src[i]) {
			continue
		}
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		count := 0
		sum := 0.0
		for j := lo; j <= i; j++ {
			if math.IsNaN(src[j]) {
				continue
			}
			count++
			sum += src[j]
		}
		if count < minPeriods || count < 2 {
			continue
		}
		mean := sum / float64(count)
		ss := 0.0
		for j := lo; j <= i; j++ {
			if math.IsNaN(src[j]) {
				continue
			}
			d := src[j] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(count-1))
		if sd == 0 {
			continue
		}
		out[i] = (src[i] - mean) / sd
	}
	return out
}

// gapsOf finds missing-value runs longer than the fill limit in a lagged
// series. The run covering the initial lag warm-up is excluded.
func gapsOf(name string, dates []time.Time, col []float64, limit int) []Gap {
	var gaps []Gap
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 {
			days := end - runStart
			if days > limit && runStart > 0 { // leading NaNs are the lag warm-up
				gaps = append(gaps, Gap{
					Series: name,
					Start:  dates[runStart],
					End:    dates[end-1],
					Days:   days,
				})
			}
		}
		runStart = -1
	}
	for i, v := range col {
		if math.IsNaN(v) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(col))
	return gaps
}
