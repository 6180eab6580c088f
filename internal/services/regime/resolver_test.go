package regime

import (
	"errors"
	"math"
	"testing"

	"MacroPulse/internal/domain/models"
)

func newResolver() *Resolver {
	return NewResolver(NewRules(DefaultThresholds()))
}

func TestResolveSingleMatch(t *testing.T) {
	r := newResolver()
	cases := []struct {
		rec  models.FeatureRecord
		want models.RegimeLabel
	}{
		{crisisRecord(0), models.RiskOffCrisis},
		{pivotRecord(0), models.PolicyPivot},
		{lateCycleRecord(0), models.LateCycle},
		{expansionRecord(0), models.RiskOnExpansion},
	}
	for _, c := range cases {
		got := r.Resolve(c.rec)
		if got.Label != c.want {
			t.Fatalf("want %s got %s", c.want, got.Label)
		}
		if len(got.Matched) != 1 || got.Matched[0] != c.want {
			t.Fatalf("matched set should record exactly the winner, got %v", got.Matched)
		}
	}
}

func TestResolveZeroMatchesIsTransition(t *testing.T) {
	r := newResolver()
	got := r.Resolve(calmRecord(0))
	if got.Label != models.Transition {
		t.Fatalf("ambiguous day must resolve to transition, got %s", got.Label)
	}
	if len(got.Matched) != 0 {
		t.Fatalf("transition day should have an empty matched set, got %v", got.Matched)
	}
}

func TestResolvePrecedenceCrisisOverPivot(t *testing.T) {
	r := newResolver()

	// Pivot conditions plus a full stress composite: both rules fire.
	rec := pivotRecord(0)
	rec.StressComposite = 3

	got := r.Resolve(rec)
	if got.Label != models.RiskOffCrisis {
		t.Fatalf("crisis must dominate pivot, got %s", got.Label)
	}
	if len(got.Matched) != 2 {
		t.Fatalf("both candidates must be recorded for audit, got %v", got.Matched)
	}
	if got.Matched[0] != models.RiskOffCrisis || got.Matched[1] != models.PolicyPivot {
		t.Fatalf("matched set must follow precedence order, got %v", got.Matched)
	}
}

func TestResolveTotality(t *testing.T) {
	r := newResolver()
	recs := []models.FeatureRecord{
		calmRecord(0), crisisRecord(1), pivotRecord(2), lateCycleRecord(3), expansionRecord(4),
	}
	out, err := r.ResolveAll(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(recs) {
		t.Fatalf("resolver must emit exactly one decision per record, got %d for %d", len(out), len(recs))
	}
	for i, d := range out {
		if !d.Label.IsValid() {
			t.Fatalf("invalid label %q at %d", d.Label, i)
		}
	}
}

func TestResolveAllDeterministic(t *testing.T) {
	r := newResolver()
	recs := []models.FeatureRecord{
		crisisRecord(0), calmRecord(1), pivotRecord(2), calmRecord(3), expansionRecord(4),
	}
	a, err := r.ResolveAll(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.ResolveAll(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			t.Fatalf("repeated runs diverged at %d: %s vs %s", i, a[i].Label, b[i].Label)
		}
	}
}

func TestResolveAllRejectsNonMonotonicDates(t *testing.T) {
	r := newResolver()
	recs := []models.FeatureRecord{calmRecord(5), calmRecord(3)}
	_, err := r.ResolveAll(recs)
	var nm *NonMonotonicDateError
	if !errors.As(err, &nm) {
		t.Fatalf("expected NonMonotonicDateError, got %v", err)
	}
	if nm.Index != 1 {
		t.Fatalf("expected violation at index 1, got %d", nm.Index)
	}
}

func TestResolveAllRejectsNonFiniteFeature(t *testing.T) {
	r := newResolver()
	bad := calmRecord(1)
	bad.CreditZ = math.NaN()
	_, err := r.ResolveAll([]models.FeatureRecord{calmRecord(0), bad})
	var mf *MissingFeatureError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingFeatureError, got %v", err)
	}
	if mf.Field != "credit_z_1y" {
		t.Fatalf("error must name the offending field, got %q", mf.Field)
	}
	if !mf.Date.Equal(day(1)) {
		t.Fatalf("error must name the offending date, got %s", mf.Date)
	}
}
