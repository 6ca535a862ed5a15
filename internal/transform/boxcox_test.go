package transform

import (
	"math"
	"math/rand"
	"testing"
)

func TestBoxCox_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	series := map[string][]float64{}
	for _, entity := range []string{"a", "b", "c"} {
		vals := make([]float64, 60)
		for i := range vals {
			vals[i] = math.Exp(rng.NormFloat64()) * 10 // strictly positive, skewed
		}
		series[entity] = vals
	}
	f := makePanel(t, series)

	b := NewBoxCox()
	g, err := b.Forward(f)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	back, err := b.Invert(g)
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}

	for _, entity := range f.Entities() {
		orig := f.SeriesValues(entity, "value")
		got := back.SeriesValues(entity, "value")
		for i := range orig {
			if !almostEqual(got[i], orig[i]) {
				t.Fatalf("entity %s row %d: round trip gave %v, want %v", entity, i, got[i], orig[i])
			}
		}
	}
}

func TestBoxCox_NonPositiveFails(t *testing.T) {
	f := makePanel(t, map[string][]float64{"a": {1, 2, 0, 4}})
	b := NewBoxCox()
	_, err := b.Forward(f)
	if err == nil {
		t.Fatal("expected DomainError for non-positive value")
	}
	de, ok := err.(*DomainError)
	if !ok {
		t.Fatalf("expected *DomainError, got %T", err)
	}
	if de.Entity != "a" || de.Value != 0 {
		t.Errorf("error should carry entity and value, got %+v", de)
	}
}

func TestBoxCox_PerEntityLambda(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	logNormal := make([]float64, 80)
	nearNormal := make([]float64, 80)
	for i := range logNormal {
		logNormal[i] = math.Exp(rng.NormFloat64())
		nearNormal[i] = 100 + rng.NormFloat64()
	}
	f := makePanel(t, map[string][]float64{"skewed": logNormal, "normal": nearNormal})

	b := NewBoxCox()
	if _, err := b.Forward(f); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	skewedLambda, ok := b.Lambda("skewed", 0)
	if !ok {
		t.Fatal("missing lambda for skewed entity")
	}
	normalLambda, ok := b.Lambda("normal", 0)
	if !ok {
		t.Fatal("missing lambda for normal entity")
	}
	// Log-normal data wants lambda near 0; near-normal data does not.
	if math.Abs(skewedLambda) > 0.3 {
		t.Errorf("lambda for log-normal data should be near 0, got %v", skewedLambda)
	}
	if math.Abs(skewedLambda-normalLambda) < 1e-3 {
		t.Error("entities should be fitted independently")
	}
}

func TestBoxCox_KnownLambdaInverse(t *testing.T) {
	tests := []struct {
		x, lambda float64
	}{
		{2, 0.5}, {10, 0}, {3, -1}, {7, 2}, {0.5, 1},
	}
	for _, tt := range tests {
		y := boxcox(tt.x, tt.lambda)
		back := boxcoxInverse(y, tt.lambda)
		if !almostEqual(back, tt.x) {
			t.Errorf("boxcox(%v, %v) inverse gave %v", tt.x, tt.lambda, back)
		}
	}
}

func TestBoxCox_InvertUnknownEntity(t *testing.T) {
	f := makePanel(t, map[string][]float64{"a": {1, 2, 3}})
	b := NewBoxCox()
	if _, err := b.Forward(f); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	other := makePanel(t, map[string][]float64{"zz": {1, 2}})
	if _, err := b.Invert(other); err == nil {
		t.Error("expected InsufficientHistoryError for unknown entity")
	}
}

func TestBoxCox_InvertBeforeForward(t *testing.T) {
	b := NewBoxCox()
	f := makePanel(t, map[string][]float64{"a": {1, 2}})
	if _, err := b.Invert(f); err == nil {
		t.Error("expected error for invert before forward")
	}
}
