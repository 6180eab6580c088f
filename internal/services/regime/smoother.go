package regime

import (
	"MacroPulse/internal/domain/models"
)

// Smoother suppresses short-lived regime flips: only a run of raw decisions
// sustained for at least minRun consecutive days may become the new declared
// regime. Implemented as an explicit state machine over a single forward
// scan, no recursion.
type Smoother struct {
	minRun int
}

// NewSmoother builds a smoother. minRun <= 1 disables smoothing and the raw
// labels pass through unchanged.
func NewSmoother(minRun int) *Smoother { return &Smoother{minRun: minRun} }

// MinRun returns the configured confirmation length.
func (s *Smoother) MinRun() int { return s.minRun }

// Smooth filters a raw decision sequence. Rules:
//   - the smoothed state starts at the first raw decision
//   - a raw decision differing from the current state starts (or extends) a
//     candidate run; reaching minRun commits the candidate retroactively from
//     the run's first day
//   - reverting to the current state before confirmation resets the candidate
//     counter, no partial credit
//   - a different candidate appearing mid-run restarts counting for the new
//     candidate; runs toward different candidates never mix
//
// A run reaching exactly minRun on the final day still commits.
func (s *Smoother) Smooth(raw []models.RawDecision) []models.SmoothedLabel {
	if len(raw) == 0 {
		return nil
	}

	out := make([]models.SmoothedLabel, len(raw))
	for i, d := range raw {
		out[i] = models.SmoothedLabel{Date: d.Date, Label: d.Label}
	}
	if s.minRun <= 1 {
		return out
	}

	current := raw[0].Label
	out[0].Label = current

	var candidate models.RegimeLabel
	runLen := 0
	runStart := 0

	for i := 1; i < len(raw); i++ {
		label := raw[i].Label
		switch {
		case label == current:
			// Reversion: the pending run dies with no partial credit.
			candidate = ""
			runLen = 0
		case label == candidate:
			runLen++
		default:
			candidate = label
			runLen = 1
			runStart = i
		}

		if candidate != "" && runLen >= s.minRun {
			// Confirmed: the new regime applies from the run's start, not
			// just from the confirmation day.
			for j := runStart; j <= i; j++ {
				out[j].Label = candidate
			}
			current = candidate
			candidate = ""
			runLen = 0
		} else {
			out[i].Label = current
		}
	}

	return out
}

// Episodes derives the maximal contiguous runs of identical smoothed labels.
// The result exactly partitions the input date range: no gaps, no overlaps.
func Episodes(labels []models.SmoothedLabel) []models.RegimeEpisode {
	if len(labels) == 0 {
		return nil
	}
	var out []models.RegimeEpisode
	cur := models.RegimeEpisode{
		Label: labels[0].Label,
		Start: labels[0].Date,
		End:   labels[0].Date,
		Days:  1,
	}
	for _, l := range labels[1:] {
		if l.Label == cur.Label {
			cur.End = l.Date
			cur.Days++
			continue
		}
		out = append(out, cur)
		cur = models.RegimeEpisode{Label: l.Label, Start: l.Date, End: l.Date, Days: 1}
	}
	return append(out, cur)
}
