package engine

import (
	"context"
	"testing"

	"github.com/panelcast/panelcast/internal/regress"
)

func TestCensoredForecastCarriesProbaColumn(t *testing.T) {
	// Zero-inflated series: stretches of zeros between positive bursts.
	f := indexPanel(t, map[string][]float64{
		"a": {0, 0, 5, 6, 0, 0, 4, 7, 0, 0, 5, 6, 0, 0, 4, 7},
		"b": {3, 4, 0, 0, 5, 3, 0, 0, 4, 5, 0, 0, 3, 4, 0, 0},
	})

	eng, err := NewCensored(baseConfig(t, Recursive), regress.NewRidge(1), regress.NewLogistic(), 1)
	if err != nil {
		t.Fatalf("NewCensored failed: %v", err)
	}
	model, err := eng.Fit(context.Background(), f)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	forecast, err := model.Predict(context.Background(), 3, nil)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	cols := forecast.ValueCols()
	if len(cols) != 2 || cols[1] != ProbaCol {
		t.Fatalf("got columns %v, want [y %s]", cols, ProbaCol)
	}

	for _, entity := range []string{"a", "b"} {
		for i, r := range forecast.Series(entity) {
			proba := r.Values[1]
			if proba < 0 || proba > 1 {
				t.Errorf("entity %q step %d: proba %v outside [0, 1]", entity, i+1, proba)
			}
		}
	}
}

func TestCensoredRequiresClassifier(t *testing.T) {
	if _, err := NewCensored(baseConfig(t, Recursive), regress.NewRidge(1), nil, 1); err == nil {
		t.Error("expected error for nil classifier")
	}
}

func TestThresholdLabels(t *testing.T) {
	labels := thresholdLabels([]float64{0, 0.5, 1, 2, -1}, 1)
	want := []float64{0, 0, 1, 1, 0}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %v, want %v", i, labels[i], want[i])
		}
	}
}
