package analytics

import (
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

func aggDay(i int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func smoothedSeq(labels ...models.RegimeLabel) []models.SmoothedLabel {
	out := make([]models.SmoothedLabel, len(labels))
	for i, l := range labels {
		out[i] = models.SmoothedLabel{Date: aggDay(i), Label: l}
	}
	return out
}

func alignedRecords(labels []models.SmoothedLabel) []models.FeatureRecord {
	out := make([]models.FeatureRecord, len(labels))
	for i, l := range labels {
		out[i] = models.FeatureRecord{Date: l.Date, VolLevel: float64(10 + i), StressComposite: float64(i % 4)}
	}
	return out
}

func newAgg() *Aggregator {
	return NewAggregator(nil, []float64{2, 3})
}

func TestDistributionSumsToSeriesLength(t *testing.T) {
	labels := smoothedSeq(
		models.Transition, models.Transition, models.LateCycle,
		models.LateCycle, models.LateCycle, models.RiskOffCrisis,
	)
	rows := newAgg().Distribution(labels)

	total := 0
	shares := 0.0
	for _, r := range rows {
		total += r.Days
		shares += r.Share
	}
	if total != len(labels) {
		t.Fatalf("day counts sum to %d, want %d", total, len(labels))
	}
	if shares < 99.9 || shares > 100.1 {
		t.Fatalf("shares sum to %v, want ~100", shares)
	}
}

func TestDistributionOmitsEmptyRegimes(t *testing.T) {
	rows := newAgg().Distribution(smoothedSeq(models.Transition, models.Transition))
	if len(rows) != 1 || rows[0].Regime != models.Transition {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestSignalMediansUsesMedianNotMean(t *testing.T) {
	labels := smoothedSeq(models.LateCycle, models.LateCycle, models.LateCycle)
	recs := alignedRecords(labels)
	// One extreme outlier must not drag the reported level.
	recs[2].VolLevel = 500

	rows, err := newAgg().SignalMedians(recs, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one regime row, got %d", len(rows))
	}
	if rows[0].VolLevel != 11 {
		t.Fatalf("median should be 11, got %v", rows[0].VolLevel)
	}
}

func TestSignalMediansRejectsMisalignment(t *testing.T) {
	labels := smoothedSeq(models.Transition, models.Transition)
	recs := alignedRecords(labels)
	recs[1].Date = aggDay(9)
	if _, err := newAgg().SignalMedians(recs, labels); err == nil {
		t.Fatalf("expected misalignment error")
	}
	if _, err := newAgg().SignalMedians(recs[:1], labels); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestSummaryMeanAndStd(t *testing.T) {
	labels := smoothedSeq(
		models.LateCycle, models.LateCycle, models.LateCycle,
		models.Transition,
	)
	recs := alignedRecords(labels)
	// VolLevel runs 10, 11, 12 in the late-cycle group.

	rows, err := newAgg().Summary(recs, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two regime rows, got %d", len(rows))
	}

	lc := rows[0]
	if lc.Regime != models.LateCycle || lc.Days != 3 {
		t.Fatalf("unexpected first row: %+v", lc)
	}
	if lc.VolLevel.Mean != 11 {
		t.Fatalf("vol mean should be 11, got %v", lc.VolLevel.Mean)
	}
	if diff := lc.VolLevel.Std - 1; diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("vol sample std should be 1, got %v", lc.VolLevel.Std)
	}
}

func TestSummarySingleDayGroupHasZeroStd(t *testing.T) {
	labels := smoothedSeq(models.RiskOffCrisis)
	recs := alignedRecords(labels)

	rows, err := newAgg().Summary(recs, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Days != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].VolLevel.Mean != 10 || rows[0].VolLevel.Std != 0 {
		t.Fatalf("one-day group: want mean 10 std 0, got %+v", rows[0].VolLevel)
	}
}

func TestSummaryRejectsMisalignment(t *testing.T) {
	labels := smoothedSeq(models.Transition, models.Transition)
	recs := alignedRecords(labels)
	recs[0].Date = aggDay(5)
	if _, err := newAgg().Summary(recs, labels); err == nil {
		t.Fatalf("expected misalignment error")
	}
}

func TestScorecardWindow(t *testing.T) {
	labels := smoothedSeq(
		models.Transition,
		models.RiskOffCrisis, models.RiskOffCrisis, models.RiskOffCrisis,
		models.PolicyPivot,
		models.RiskOffCrisis,
	)
	recs := alignedRecords(labels)
	agg := NewAggregator([]models.StressWindow{
		{Name: "Test episode", Start: aggDay(1), End: aggDay(5)},
	}, []float64{2})

	rows := agg.Scorecard(recs, labels)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	row := rows[0]
	if row.NoData {
		t.Fatalf("window has data")
	}
	if row.Days != 5 {
		t.Fatalf("want 5 days in window, got %d", row.Days)
	}
	if row.Dominant != models.RiskOffCrisis {
		t.Fatalf("dominant should be crisis, got %s", row.Dominant)
	}
	if row.MaxCrisisRun != 3 {
		t.Fatalf("max crisis run should be 3, got %d", row.MaxCrisisRun)
	}
	if row.FirstCrisis == nil || !row.FirstCrisis.Equal(aggDay(1)) {
		t.Fatalf("first crisis should be day 1, got %v", row.FirstCrisis)
	}
	if row.Transitions != 2 {
		t.Fatalf("expected 2 transitions inside window, got %d", row.Transitions)
	}
	if row.CrisisShare != 80 {
		t.Fatalf("crisis share should be 80%%, got %v", row.CrisisShare)
	}
}

func TestScorecardEmptyWindowIsNoDataRow(t *testing.T) {
	labels := smoothedSeq(models.Transition, models.Transition)
	recs := alignedRecords(labels)
	agg := NewAggregator([]models.StressWindow{
		{Name: "Before the sample", Start: aggDay(-300), End: aggDay(-200)},
		{Name: "In sample", Start: aggDay(0), End: aggDay(1)},
	}, nil)

	rows := agg.Scorecard(recs, labels)
	if len(rows) != 2 {
		t.Fatalf("no-data windows must not be dropped, got %d rows", len(rows))
	}
	if !rows[0].NoData || rows[0].Days != 0 {
		t.Fatalf("out-of-range window must be an explicit no-data row: %+v", rows[0])
	}
	if rows[1].NoData {
		t.Fatalf("in-sample window wrongly marked no-data")
	}
}

func TestEpisodesMatchDistribution(t *testing.T) {
	labels := smoothedSeq(
		models.Transition, models.Transition, models.LateCycle,
		models.LateCycle, models.Transition,
	)
	agg := newAgg()
	eps := agg.Episodes(labels)
	dist := agg.Distribution(labels)

	epDays := map[models.RegimeLabel]int{}
	for _, e := range eps {
		epDays[e.Label] += e.Days
	}
	for _, d := range dist {
		if epDays[d.Regime] != d.Days {
			t.Fatalf("episodes and distribution disagree for %s: %d vs %d",
				d.Regime, epDays[d.Regime], d.Days)
		}
	}
}
