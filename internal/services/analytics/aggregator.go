package analytics

import (
	"fmt"
	"math"
	"sort"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/services/regime"
)

// Aggregator reduces a smoothed label series (plus the feature series it was
// classified from) into the report tables. Pure grouping and reduction: no
// classification logic lives here.
type Aggregator struct {
	windows         []models.StressWindow
	scoreThresholds []float64
}

// NewAggregator configures the stress windows and the stress-score thresholds
// used by the scorecard hit rates.
func NewAggregator(windows []models.StressWindow, scoreThresholds []float64) *Aggregator {
	return &Aggregator{windows: windows, scoreThresholds: scoreThresholds}
}

// Distribution counts days and share per regime, in fixed reporting order.
// The day counts always sum to len(labels).
func (a *Aggregator) Distribution(labels []models.SmoothedLabel) []models.DistributionRow {
	counts := map[models.RegimeLabel]int{}
	for _, l := range labels {
		counts[l.Label]++
	}
	total := len(labels)
	out := make([]models.DistributionRow, 0, len(models.AllRegimes))
	for _, r := range models.AllRegimes {
		n := counts[r]
		if n == 0 {
			continue
		}
		share := 0.0
		if total > 0 {
			share = round2(float64(n) / float64(total) * 100)
		}
		out = append(out, models.DistributionRow{Regime: r, Days: n, Share: share})
	}
	return out
}

// Episodes derives the maximal contiguous runs of the smoothed series.
func (a *Aggregator) Episodes(labels []models.SmoothedLabel) []models.RegimeEpisode {
	return regime.Episodes(labels)
}

// SignalMedians groups the feature series by smoothed regime and reports the
// median of each core signal. Medians resist the outlier skew of stress
// episodes. Records and labels must be date-aligned sequences of equal
// length, as produced by one pipeline run.
func (a *Aggregator) SignalMedians(records []models.FeatureRecord, labels []models.SmoothedLabel) ([]models.SignalMediansRow, error) {
	byRegime, err := groupByRegime(records, labels)
	if err != nil {
		return nil, err
	}

	out := make([]models.SignalMediansRow, 0, len(byRegime))
	for _, r := range models.AllRegimes {
		group := byRegime[r]
		if len(group) == 0 {
			continue
		}
		out = append(out, models.SignalMediansRow{
			Regime:       r,
			Days:         len(group),
			CurveSlope:   medianOf(group, func(f models.FeatureRecord) float64 { return f.CurveSlope }),
			Rate2Change:  medianOf(group, func(f models.FeatureRecord) float64 { return f.Rate2Change }),
			Rate10Change: medianOf(group, func(f models.FeatureRecord) float64 { return f.Rate10Change }),
			CreditLevel:  medianOf(group, func(f models.FeatureRecord) float64 { return f.CreditLevel }),
			CreditChange: medianOf(group, func(f models.FeatureRecord) float64 { return f.CreditChange }),
			VolLevel:     medianOf(group, func(f models.FeatureRecord) float64 { return f.VolLevel }),
			VolChange:    medianOf(group, func(f models.FeatureRecord) float64 { return f.VolChange }),
			Stress:       medianOf(group, func(f models.FeatureRecord) float64 { return f.StressComposite }),
		})
	}
	return out, nil
}

// Summary groups the feature series by smoothed regime and reports the mean
// and sample standard deviation of each core signal. Read next to the median
// table: means locate the regime's center of mass, the dispersion shows how
// uniform its days are. A single-day group reports zero dispersion.
func (a *Aggregator) Summary(records []models.FeatureRecord, labels []models.SmoothedLabel) ([]models.SummaryRow, error) {
	byRegime, err := groupByRegime(records, labels)
	if err != nil {
		return nil, err
	}

	out := make([]models.SummaryRow, 0, len(byRegime))
	for _, r := range models.AllRegimes {
		group := byRegime[r]
		if len(group) == 0 {
			continue
		}
		out = append(out, models.SummaryRow{
			Regime:       r,
			Days:         len(group),
			CurveSlope:   statOf(group, func(f models.FeatureRecord) float64 { return f.CurveSlope }),
			Rate2Change:  statOf(group, func(f models.FeatureRecord) float64 { return f.Rate2Change }),
			CreditLevel:  statOf(group, func(f models.FeatureRecord) float64 { return f.CreditLevel }),
			CreditChange: statOf(group, func(f models.FeatureRecord) float64 { return f.CreditChange }),
			VolLevel:     statOf(group, func(f models.FeatureRecord) float64 { return f.VolLevel }),
			VolChange:    statOf(group, func(f models.FeatureRecord) float64 { return f.VolChange }),
			Stress:       statOf(group, func(f models.FeatureRecord) float64 { return f.StressComposite }),
		})
	}
	return out, nil
}

// groupByRegime buckets records by their day's smoothed label. Records and
// labels must be date-aligned sequences of equal length.
func groupByRegime(records []models.FeatureRecord, labels []models.SmoothedLabel) (map[models.RegimeLabel][]models.FeatureRecord, error) {
	if len(records) != len(labels) {
		return nil, fmt.Errorf("records/labels length mismatch: %d vs %d", len(records), len(labels))
	}
	byRegime := map[models.RegimeLabel][]models.FeatureRecord{}
	for i, l := range labels {
		if !records[i].Date.Equal(l.Date) {
			return nil, fmt.Errorf("records/labels misaligned at %d: %s vs %s",
				i, records[i].Date.Format("2006-01-02"), l.Date.Format("2006-01-02"))
		}
		byRegime[l.Label] = append(byRegime[l.Label], records[i])
	}
	return byRegime, nil
}

// Scorecard evaluates regime behavior inside each configured stress window.
// A window matching zero days yields an explicit no-data row; it is never
// dropped and never fails the report.
func (a *Aggregator) Scorecard(records []models.FeatureRecord, labels []models.SmoothedLabel) []models.ScorecardRow {
	out := make([]models.ScorecardRow, 0, len(a.windows))
	for _, w := range a.windows {
		out = append(out, a.scoreWindow(w, records, labels))
	}
	return out
}

func (a *Aggregator) scoreWindow(w models.StressWindow, records []models.FeatureRecord, labels []models.SmoothedLabel) models.ScorecardRow {
	row := models.ScorecardRow{Window: w.Name, Start: w.Start, End: w.End}

	var sub []models.SmoothedLabel
	var stress []float64
	for i, l := range labels {
		if l.Date.Before(w.Start) || l.Date.After(w.End) {
			continue
		}
		sub = append(sub, l)
		if i < len(records) && records[i].Date.Equal(l.Date) {
			stress = append(stress, records[i].StressComposite)
		}
	}
	if len(sub) == 0 {
		row.NoData = true
		return row
	}

	row.Days = len(sub)
	row.Dominant = dominantLabel(sub)
	row.Transitions = transitionCount(sub)

	crisisDays := 0
	maxRun, curRun := 0, 0
	for _, l := range sub {
		if l.Label == models.RiskOffCrisis {
			crisisDays++
			curRun++
			if curRun > maxRun {
				maxRun = curRun
			}
			if row.FirstCrisis == nil {
				d := l.Date
				row.FirstCrisis = &d
			}
		} else {
			curRun = 0
		}
	}
	row.CrisisShare = round2(float64(crisisDays) / float64(len(sub)) * 100)
	row.MaxCrisisRun = maxRun

	if len(stress) > 0 {
		row.StressMedian = median(stress)
		row.StressMax = maxOf(stress)
		for _, th := range a.scoreThresholds {
			hits := 0
			for _, s := range stress {
				if s >= th {
					hits++
				}
			}
			row.ScoreShares = append(row.ScoreShares, models.ScoreShare{
				Threshold: th,
				SharePct:  round2(float64(hits) / float64(len(stress)) * 100),
			})
		}
	}
	return row
}

// dominantLabel picks the most frequent label in the window; day-count ties
// break by reporting order so the result stays deterministic.
func dominantLabel(labels []models.SmoothedLabel) models.RegimeLabel {
	counts := map[models.RegimeLabel]int{}
	for _, l := range labels {
		counts[l.Label]++
	}
	best := models.Transition
	bestN := -1
	for _, r := range models.AllRegimes {
		if counts[r] > bestN {
			best = r
			bestN = counts[r]
		}
	}
	return best
}

func transitionCount(labels []models.SmoothedLabel) int {
	n := 0
	for i := 1; i < len(labels); i++ {
		if labels[i].Label != labels[i-1].Label {
			n++
		}
	}
	return n
}

func medianOf(group []models.FeatureRecord, get func(models.FeatureRecord) float64) float64 {
	vals := make([]float64, len(group))
	for i, f := range group {
		vals[i] = get(f)
	}
	return median(vals)
}

// statOf computes mean and sample (n-1) standard deviation of one signal
// across a regime group. A single observation has no defined spread and
// reports zero.
func statOf(group []models.FeatureRecord, get func(models.FeatureRecord) float64) models.SignalStat {
	n := float64(len(group))
	sum := 0.0
	for _, f := range group {
		sum += get(f)
	}
	mean := sum / n
	if len(group) < 2 {
		return models.SignalStat{Mean: mean}
	}
	ss := 0.0
	for _, f := range group {
		d := get(f) - mean
		ss += d * d
	}
	return models.SignalStat{Mean: mean, Std: math.Sqrt(ss / (n - 1))}
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
