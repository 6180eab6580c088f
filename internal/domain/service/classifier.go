package service

import (
	"MacroPulse/internal/domain/models"
)

// Classifier maps a validated feature sequence to raw and smoothed label
// sequences. Implementations must be deterministic: identical inputs and
// configuration yield identical outputs.
type Classifier interface {
	Classify(records []models.FeatureRecord) (raw []models.RawDecision, smoothed []models.SmoothedLabel, err error)
}
