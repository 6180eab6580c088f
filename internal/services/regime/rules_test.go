package regime

import (
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func calmRecord(i int) models.FeatureRecord {
	return models.FeatureRecord{
		Date:       day(i),
		CurveSlope: 1.2,
		VolLevel:   13,
	}
}

func crisisRecord(i int) models.FeatureRecord {
	r := calmRecord(i)
	r.CreditChange = 0.20
	r.CreditZ = 1.2
	r.VolLevel = 28
	r.VolChange = 8
	r.StressComposite = 2
	return r
}

func pivotRecord(i int) models.FeatureRecord {
	r := calmRecord(i)
	r.Rate2Change = -0.25
	r.Rate10Change = -0.05
	r.VolLevel = 22
	return r
}

func lateCycleRecord(i int) models.FeatureRecord {
	r := calmRecord(i)
	r.CurveSlope = -0.30
	r.CreditChange = 0.01
	r.VolLevel = 12
	return r
}

func expansionRecord(i int) models.FeatureRecord {
	r := calmRecord(i)
	r.Rate2Change = 0.15
	r.Rate10Change = 0.18
	r.CreditChange = -0.10
	r.VolLevel = 12
	return r
}

func TestCrisisRule(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	if !rules.Crisis(crisisRecord(0)) {
		t.Fatalf("expected crisis conditions to qualify")
	}

	// Widening without a volatility shock is not a crisis.
	r := crisisRecord(0)
	r.VolChange = 1
	if rules.Crisis(r) {
		t.Fatalf("crisis must require a volatility shock")
	}

	// Unless every stress signal fires at once.
	r.StressComposite = 3
	if !rules.Crisis(r) {
		t.Fatalf("full stress composite must force crisis")
	}
}

func TestCrisisNeedsCorroboration(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	r := crisisRecord(0)
	r.StressComposite = 1
	r.CreditZ = 1.2 // above widen gate, below extreme gate
	if rules.Crisis(r) {
		t.Fatalf("widening+shock without corroboration should not qualify")
	}
	r.CreditZ = 1.8
	if !rules.Crisis(r) {
		t.Fatalf("extreme credit z-score should corroborate crisis")
	}
}

func TestPivotRule(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	if !rules.Pivot(pivotRecord(0)) {
		t.Fatalf("expected pivot conditions to qualify")
	}

	// A volatility shock disqualifies pivot (that day reads as stress).
	r := pivotRecord(0)
	r.VolChange = 9
	if rules.Pivot(r) {
		t.Fatalf("pivot must exclude volatility shocks")
	}

	// Calm volatility disqualifies pivot.
	r = pivotRecord(0)
	r.VolLevel = 14
	if rules.Pivot(r) {
		t.Fatalf("pivot requires elevated volatility")
	}
}

func TestLateCycleRule(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	if !rules.LateCycle(lateCycleRecord(0)) {
		t.Fatalf("expected late-cycle conditions to qualify")
	}

	r := lateCycleRecord(0)
	r.CreditChange = 0.08 // credit no longer stable
	if rules.LateCycle(r) {
		t.Fatalf("late-cycle requires stable credit")
	}

	r = lateCycleRecord(0)
	r.CurveSlope = 0.1
	if rules.LateCycle(r) {
		t.Fatalf("late-cycle requires an inverted curve")
	}
}

func TestExpansionRule(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	if !rules.Expansion(expansionRecord(0)) {
		t.Fatalf("expected expansion conditions to qualify")
	}

	r := expansionRecord(0)
	r.Rate10Change = 0.02 // only the front end repricing
	if rules.Expansion(r) {
		t.Fatalf("expansion requires both ends of the curve rising")
	}
}

func TestAlternateThresholdsAreHonored(t *testing.T) {
	th := DefaultThresholds()
	th.VolCalm = 30 // everything below 30 counts as calm
	rules := NewRules(th)

	r := lateCycleRecord(0)
	r.VolLevel = 25
	if !rules.LateCycle(r) {
		t.Fatalf("loosened calm threshold should let VIX 25 qualify")
	}
	if NewRules(DefaultThresholds()).LateCycle(r) {
		t.Fatalf("default thresholds should reject VIX 25 as calm")
	}
}

func TestEvaluateTransitionHasNoPredicate(t *testing.T) {
	rules := NewRules(DefaultThresholds())
	if rules.Evaluate(models.Transition, crisisRecord(0)) {
		t.Fatalf("transition must never evaluate true; it is the residual")
	}
}
