package regime

import (
	"fmt"
	"math"
	"time"

	"MacroPulse/internal/domain/models"
)

// MissingFeatureError marks a required field that is absent or non-finite on
// a given day. Silent substitution would corrupt the audit trail, so the
// whole run fails with the offending date named.
type MissingFeatureError struct {
	Date  time.Time
	Field string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing or non-finite feature %q on %s", e.Field, e.Date.Format("2006-01-02"))
}

// NonMonotonicDateError marks an input sequence whose dates are not strictly
// increasing. Downstream persistence logic assumes strict ordering, so this
// fails the run before any classification.
type NonMonotonicDateError struct {
	Index int
	Prev  time.Time
	Curr  time.Time
}

func (e *NonMonotonicDateError) Error() string {
	return fmt.Sprintf("dates not strictly increasing at index %d: %s then %s",
		e.Index, e.Prev.Format("2006-01-02"), e.Curr.Format("2006-01-02"))
}

// ValidateSequence checks strict date ordering and field finiteness for an
// entire feature sequence. It runs before classification so a failed run
// leaves no partial output.
func ValidateSequence(records []models.FeatureRecord) error {
	for i, rec := range records {
		if i > 0 && !rec.Date.After(records[i-1].Date) {
			return &NonMonotonicDateError{Index: i, Prev: records[i-1].Date, Curr: rec.Date}
		}
		if rec.Date.IsZero() {
			return &MissingFeatureError{Date: rec.Date, Field: "date"}
		}
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"curve_10y2y", rec.CurveSlope},
			{"ust_2y_chg_1m", rec.Rate2Change},
			{"ust_10y_chg_1m", rec.Rate10Change},
			{"credit_chg_1m", rec.CreditChange},
			{"credit_level", rec.CreditLevel},
			{"credit_z_1y", rec.CreditZ},
			{"vix_level", rec.VolLevel},
			{"vix_chg_1m", rec.VolChange},
			{"risk_off_score", rec.StressComposite},
		} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return &MissingFeatureError{Date: rec.Date, Field: f.name}
			}
		}
	}
	return nil
}
