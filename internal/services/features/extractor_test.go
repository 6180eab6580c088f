package features

import (
	"math"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

func testDay(i int) time.Time {
	return time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func testConfig() Config {
	return Config{LagDays: 1, Days1M: 2, Days1Y: 4, FillLimit: 1}
}

func testFrame(n int) *MacroFrame {
	dates := make([]time.Time, n)
	ust10 := make([]float64, n)
	ust2 := make([]float64, n)
	credit := make([]float64, n)
	vix := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = testDay(i)
		ust10[i] = 3.0
		ust2[i] = 2.0
		credit[i] = 1.0 + 0.01*float64(i)
		vix[i] = float64(i)
	}
	return &MacroFrame{
		Dates: dates,
		Values: map[string][]float64{
			SeriesUST10:  ust10,
			SeriesUST2:   ust2,
			SeriesCredit: credit,
			SeriesVix:    vix,
		},
	}
}

func TestBuildLagsInputs(t *testing.T) {
	recs, rep, err := NewExtractor(testConfig()).Build(testFrame(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) == 0 {
		t.Fatalf("expected records, dropped=%d", rep.WarmupDays)
	}
	for _, r := range recs {
		// vix was set to its day index, so the lag is directly observable:
		// the value seen on day i must be the raw value of day i-1.
		i := int(r.Date.Sub(testDay(0)).Hours() / 24)
		if r.VolLevel != float64(i-1) {
			t.Fatalf("day %d sees vix %v, want lagged %v", i, r.VolLevel, float64(i-1))
		}
	}
}

func TestBuildDropsWarmupRows(t *testing.T) {
	recs, rep, err := NewExtractor(testConfig()).Build(testFrame(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.WarmupDays == 0 {
		t.Fatalf("rolling warm-up rows should be dropped")
	}
	if rep.OutputDays != len(recs) || rep.InputDays != 10 {
		t.Fatalf("report inconsistent: %+v vs %d records", rep, len(recs))
	}
	// First emitted row needs the 1-day lag, the 2-day diff and 3 defined
	// points for the z-score: day 3 is the earliest complete one.
	if !recs[0].Date.Equal(testDay(3)) {
		t.Fatalf("first complete row should be day 3, got %s", recs[0].Date)
	}
}

func TestBuildReportsLongGaps(t *testing.T) {
	frame := testFrame(12)
	for i := 5; i < 8; i++ { // 3-day hole, above the 1-day fill limit
		frame.Values[SeriesVix][i] = math.NaN()
	}
	recs, rep, err := NewExtractor(testConfig()).Build(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Gaps) == 0 {
		t.Fatalf("expected the vix hole to be reported as a gap")
	}
	g := rep.Gaps[0]
	if g.Series != SeriesVix || g.Days < 2 {
		t.Fatalf("unexpected gap: %+v", g)
	}
	// Unbridged days must be absent from the output, not interpolated.
	for _, r := range recs {
		if math.IsNaN(r.VolLevel) {
			t.Fatalf("NaN leaked into records at %s", r.Date)
		}
	}
}

func TestBuildBridgesShortGaps(t *testing.T) {
	frame := testFrame(10)
	frame.Values[SeriesVix][6] = math.NaN() // single-day hole, within limit
	recs, rep, err := NewExtractor(testConfig()).Build(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Gaps) != 0 {
		t.Fatalf("one-day hole should be bridged, got gaps %+v", rep.Gaps)
	}
	// Day 7 sees lagged day-6 vix, which was filled from day 5.
	for _, r := range recs {
		if r.Date.Equal(testDay(7)) && r.VolLevel != 5 {
			t.Fatalf("expected bridged value 5 on day 7, got %v", r.VolLevel)
		}
	}
}

func TestStressScoreCountsSignals(t *testing.T) {
	if got := stressScore(-0.1, 0.05, 2.0); got != 3 {
		t.Fatalf("all three signals on, want 3 got %v", got)
	}
	if got := stressScore(0.5, -0.01, -1.0); got != 0 {
		t.Fatalf("all signals off, want 0 got %v", got)
	}
	if got := stressScore(math.NaN(), 0.05, 2.0); !math.IsNaN(got) {
		t.Fatalf("undefined input must yield undefined score, got %v", got)
	}
}

func TestNewFrameAlignsAndDeduplicates(t *testing.T) {
	series := map[string][]models.Observation{
		SeriesUST10: {
			{Series: SeriesUST10, Date: testDay(1), Value: 3.1},
			{Series: SeriesUST10, Date: testDay(0), Value: 3.0},
			{Series: SeriesUST10, Date: testDay(1), Value: 3.2}, // dup, keep last
		},
		SeriesUST2:   {{Series: SeriesUST2, Date: testDay(0), Value: 2.0}},
		SeriesCredit: {{Series: SeriesCredit, Date: testDay(0), Value: 1.0}},
		SeriesVix:    {{Series: SeriesVix, Date: testDay(0), Value: 15}},
	}
	frame, err := NewFrame(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Dates) != 2 || !frame.Dates[0].Before(frame.Dates[1]) {
		t.Fatalf("dates not aligned/sorted: %v", frame.Dates)
	}
	if frame.Values[SeriesUST10][1] != 3.2 {
		t.Fatalf("duplicate date should keep last value, got %v", frame.Values[SeriesUST10][1])
	}
	if !math.IsNaN(frame.Values[SeriesUST2][1]) {
		t.Fatalf("missing point should be NaN")
	}
}

func TestNewFrameRequiresAllSeries(t *testing.T) {
	_, err := NewFrame(map[string][]models.Observation{
		SeriesUST10: {{Series: SeriesUST10, Date: testDay(0), Value: 3}},
	})
	if err == nil {
		t.Fatalf("expected error for missing required series")
	}
}
