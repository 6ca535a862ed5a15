package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/panelcast/panelcast/internal/panel"
)

// ImputeMethod selects how missing observations are replaced.
type ImputeMethod int

const (
	ImputeMean ImputeMethod = iota
	ImputeMedian
	ImputeFill
	ImputeForward  // carry the last observed value forward
	ImputeBackward // carry the next observed value backward
)

var imputeNames = [...]string{"mean", "median", "fill", "ffill", "bfill"}

func (m ImputeMethod) String() string {
	if m < 0 || int(m) >= len(imputeNames) {
		return fmt.Sprintf("ImputeMethod(%d)", int(m))
	}
	return imputeNames[m]
}

// ParseImputeMethod parses a method name as used in request payloads.
func ParseImputeMethod(name string) (ImputeMethod, error) {
	for i, n := range imputeNames {
		if n == name {
			return ImputeMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown impute method %q (supported: mean, median, fill, ffill, bfill)", name)
}

// Impute replaces NaN observations per entity and value column. Mean and
// median use the entity's observed values; fill uses a constant; ffill and
// bfill carry neighbouring observations and leave a gap untouched when no
// neighbour exists on the carried-from side. Imputation is not invertible,
// so Invert passes frames through unchanged.
type Impute struct {
	Method ImputeMethod
	Value  float64 // replacement constant for ImputeFill
}

// NewImpute returns an Impute transform. Value is only read for ImputeFill.
func NewImpute(method ImputeMethod, value float64) *Impute {
	return &Impute{Method: method, Value: value}
}

// Forward fills missing values independently per entity and value column.
func (im *Impute) Forward(f *panel.Frame) (*panel.Frame, error) {
	cols := f.ValueCols()
	rows := make([]panel.Row, 0, f.NumRows())
	for _, entity := range f.Entities() {
		series := f.Series(entity)
		filled := make([][]float64, len(cols))
		for c := range cols {
			vals := make([]float64, len(series))
			for i, r := range series {
				vals[i] = r.Values[c]
			}
			filled[c] = im.fill(vals)
		}
		for i, r := range series {
			values := make([]float64, len(cols))
			for c := range cols {
				values[c] = filled[c][i]
			}
			rows = append(rows, panel.Row{Entity: entity, Time: r.Time, Values: values})
		}
	}
	return f.WithRows(rows)
}

// Invert is the identity: filled values stay on the original scale.
func (im *Impute) Invert(f *panel.Frame) (*panel.Frame, error) {
	return f, nil
}

func (im *Impute) fill(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	switch im.Method {
	case ImputeMean, ImputeMedian:
		observed := make([]float64, 0, len(out))
		for _, v := range out {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return out
		}
		rep := mean(observed)
		if im.Method == ImputeMedian {
			rep = median(observed)
		}
		for i, v := range out {
			if math.IsNaN(v) {
				out[i] = rep
			}
		}
	case ImputeFill:
		for i, v := range out {
			if math.IsNaN(v) {
				out[i] = im.Value
			}
		}
	case ImputeForward:
		carry := math.NaN()
		for i, v := range out {
			if math.IsNaN(v) {
				if !math.IsNaN(carry) {
					out[i] = carry
				}
			} else {
				carry = v
			}
		}
	case ImputeBackward:
		carry := math.NaN()
		for i := len(out) - 1; i >= 0; i-- {
			if math.IsNaN(out[i]) {
				if !math.IsNaN(carry) {
					out[i] = carry
				}
			} else {
				carry = out[i]
			}
		}
	}
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
