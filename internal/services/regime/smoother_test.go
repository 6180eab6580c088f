package regime

import (
	"testing"

	"MacroPulse/internal/domain/models"
)

func rawSeq(labels ...models.RegimeLabel) []models.RawDecision {
	out := make([]models.RawDecision, len(labels))
	for i, l := range labels {
		out[i] = models.RawDecision{Date: day(i), Label: l}
	}
	return out
}

func labelsOf(s []models.SmoothedLabel) []models.RegimeLabel {
	out := make([]models.RegimeLabel, len(s))
	for i, l := range s {
		out[i] = l.Label
	}
	return out
}

func assertLabels(t *testing.T, got []models.SmoothedLabel, want ...models.RegimeLabel) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Label != want[i] {
			t.Fatalf("day %d: got %s want %s (full: %v)", i, got[i].Label, want[i], labelsOf(got))
		}
	}
}

const (
	a = models.RiskOnExpansion
	b = models.LateCycle
	c = models.PolicyPivot
)

func TestSmoothSuppressesSingleDayFlip(t *testing.T) {
	s := NewSmoother(3)
	got := s.Smooth(rawSeq(a, b, a, a, a, a))
	assertLabels(t, got, a, a, a, a, a, a)
}

func TestSmoothConfirmsRunRetroactively(t *testing.T) {
	s := NewSmoother(3)
	got := s.Smooth(rawSeq(a, b, b, b, a))
	// The three-day b run commits back to its first day; the trailing a is a
	// fresh one-day candidate and cannot commit.
	assertLabels(t, got, a, b, b, b, b)
}

func TestSmoothRevertResetsCounter(t *testing.T) {
	s := NewSmoother(3)
	// Two b days, a reversion, then two more: no window of three consecutive
	// b days ever forms, so a holds throughout.
	got := s.Smooth(rawSeq(a, b, b, a, b, b, a))
	assertLabels(t, got, a, a, a, a, a, a, a)
}

func TestSmoothCandidateSwitchRestartsRun(t *testing.T) {
	s := NewSmoother(3)
	// b, b, then c: the run restarts counting for c; neither reaches three.
	got := s.Smooth(rawSeq(a, b, b, c, c, a))
	assertLabels(t, got, a, a, a, a, a, a)

	// After the switch, c still needs a full window of its own.
	got = s.Smooth(rawSeq(a, b, b, c, c, c))
	assertLabels(t, got, a, a, a, c, c, c)
}

func TestSmoothCommitOnFinalDay(t *testing.T) {
	s := NewSmoother(3)
	// The run reaches exactly minRun on the last observation and commits.
	got := s.Smooth(rawSeq(a, a, b, b, b))
	assertLabels(t, got, a, a, b, b, b)
}

func TestSmoothMinRunOneIsPassthrough(t *testing.T) {
	s := NewSmoother(1)
	got := s.Smooth(rawSeq(a, b, a, c))
	assertLabels(t, got, a, b, a, c)
}

func TestSmoothEmptyInput(t *testing.T) {
	if got := NewSmoother(3).Smooth(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestSmoothDeterministic(t *testing.T) {
	s := NewSmoother(4)
	raw := rawSeq(a, b, b, a, c, c, c, c, b, c, c)
	first := labelsOf(s.Smooth(raw))
	for run := 0; run < 3; run++ {
		again := labelsOf(s.Smooth(raw))
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d diverged at %d", run, i)
			}
		}
	}
}

func TestEpisodesPartitionSeries(t *testing.T) {
	s := NewSmoother(2)
	smoothed := s.Smooth(rawSeq(a, a, b, b, b, a, a, c, c))
	eps := Episodes(smoothed)

	total := 0
	for i, ep := range eps {
		total += ep.Days
		if ep.Start.After(ep.End) {
			t.Fatalf("episode %d start after end", i)
		}
		if i > 0 {
			prev := eps[i-1]
			if prev.Label == ep.Label {
				t.Fatalf("adjacent episodes %d,%d share label %s", i-1, i, ep.Label)
			}
			if !ep.Start.After(prev.End) {
				t.Fatalf("episode %d overlaps previous", i)
			}
			// No gap: next episode starts the day after the previous ends.
			if ep.Start.Sub(prev.End).Hours() != 24 {
				t.Fatalf("gap between episodes %d and %d", i-1, i)
			}
		}
	}
	if total != len(smoothed) {
		t.Fatalf("episode days %d do not partition %d labels", total, len(smoothed))
	}
	if !eps[0].Start.Equal(smoothed[0].Date) || !eps[len(eps)-1].End.Equal(smoothed[len(smoothed)-1].Date) {
		t.Fatalf("episodes do not span the full date range")
	}
}

func TestEpisodesSingleLabel(t *testing.T) {
	smoothed := NewSmoother(3).Smooth(rawSeq(a, a, a, a))
	eps := Episodes(smoothed)
	if len(eps) != 1 || eps[0].Days != 4 || eps[0].Label != a {
		t.Fatalf("expected one 4-day episode, got %+v", eps)
	}
}
