package engine

// Censored / zero-inflated forecasting: a binary classifier is fit next to
// every regression model on the label y >= threshold, and each prediction
// becomes the regressed value scaled by the classifier's probability. The
// forecast frame gains a threshold_proba column.

import (
	"github.com/panelcast/panelcast/internal/regress"
)

// NewCensored returns an engine whose models carry a threshold classifier.
func NewCensored(cfg Config, r regress.Regressor, c regress.Classifier, threshold float64) (*Engine, error) {
	if c == nil {
		return nil, &ConfigError{Reason: "classifier is required for the censored variant"}
	}
	e, err := New(cfg, r)
	if err != nil {
		return nil, err
	}
	e.classifier = c
	e.threshold = threshold
	return e, nil
}

// thresholdLabels maps targets to 0/1 labels for the threshold classifier.
func thresholdLabels(y []float64, threshold float64) []float64 {
	labels := make([]float64, len(y))
	for i, v := range y {
		if v >= threshold {
			labels[i] = 1
		}
	}
	return labels
}
