package feature

import (
	"fmt"
	"math"
	"time"

	"github.com/panelcast/panelcast/internal/panel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Set is a feature table aligned row-for-row with its target values. Row i
// belongs to (Entities[i], Times[i]); X[i] is its feature vector and Y[i]
// the supervised target.
type Set struct {
	Columns  []string
	Entities []string
	Times    []time.Time
	X        [][]float64
	Y        []float64
}

// Len returns the number of feature rows.
func (s *Set) Len() int { return len(s.X) }

// EntityRows counts feature rows per entity.
func (s *Set) EntityRows() map[string]int {
	counts := make(map[string]int)
	for _, e := range s.Entities {
		counts[e]++
	}
	return counts
}

// Builder produces lag and rolling-window feature rows from a panel.
type Builder struct {
	spec Spec
}

// NewBuilder validates the spec and returns a Builder.
func NewBuilder(spec Spec) (*Builder, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Builder{spec: spec}, nil
}

// Spec returns the builder's feature spec.
func (b *Builder) Spec() Spec { return b.spec }

// Columns returns the feature column names for a panel with the given
// target and exogenous columns: lag features first, then window statistics,
// then exogenous values at the target time.
func (b *Builder) Columns(targetCol string, exogCols []string) []string {
	cols := make([]string, 0, len(b.spec.Lags)+len(b.spec.Windows)+len(exogCols))
	for _, k := range b.spec.Lags {
		cols = append(cols, fmt.Sprintf("%s__lag_%d", targetCol, k))
	}
	for _, w := range b.spec.Windows {
		cols = append(cols, fmt.Sprintf("%s__rolling_%s_%d", targetCol, w.Stat, w.Size))
	}
	return append(cols, exogCols...)
}

// Build emits one feature row per (entity, t) with enough history. The
// offset is the distance in steps between the forecast origin and the
// target: offset 1 trains a one-step-ahead model, offset h trains the
// direct model for horizon h. A lag-k feature for target time t is the raw
// value at t-(k+offset-1); a window of size w spans [t-offset-w+1, t-offset],
// so no feature ever references the target time or anything after the
// forecast origin.
func (b *Builder) Build(f *panel.Frame, offset int) (*Set, error) {
	if offset < 1 {
		return nil, fmt.Errorf("feature offset must be >= 1, got %d", offset)
	}

	exogCols := f.ValueCols()[1:]
	set := &Set{Columns: b.Columns(f.TargetCol(), exogCols)}
	minIdx := b.spec.MinHistory(offset)

	for _, entity := range f.Entities() {
		series := f.Series(entity)
		target := make([]float64, len(series))
		for i, r := range series {
			target[i] = r.Values[0]
		}
		for t := minIdx; t < len(series); t++ {
			row := b.row(target[:t-offset+1])
			for c := 1; c < len(f.ValueCols()); c++ {
				row = append(row, series[t].Values[c])
			}
			set.Entities = append(set.Entities, entity)
			set.Times = append(set.Times, series[t].Time)
			set.X = append(set.X, row)
			set.Y = append(set.Y, target[t])
		}
	}

	return set, nil
}

// Row builds a single prediction-time feature row from an entity's history
// buffer (observed plus walk-forward predictions so far) and the exogenous
// values at the target time. The target is implicitly one origin step ahead
// for every offset: lag k reads history[n-k] and windows read the trailing
// window of the buffer. Returns false when the buffer is too short.
func (b *Builder) Row(history []float64, exog []float64) ([]float64, bool) {
	need := b.spec.MaxLag()
	if w := b.spec.MaxWindow(); w > need {
		need = w
	}
	if len(history) < need {
		return nil, false
	}
	row := b.row(history)
	return append(row, exog...), true
}

// row computes lag and window features for a target sitting one step after
// the end of history. Callers arrange the history slice so this holds for
// any horizon offset.
func (b *Builder) row(history []float64) []float64 {
	n := len(history)
	row := make([]float64, 0, len(b.spec.Lags)+len(b.spec.Windows))
	for _, k := range b.spec.Lags {
		row = append(row, history[n-k])
	}
	for _, w := range b.spec.Windows {
		row = append(row, windowStat(history[n-w.Size:], w.Stat))
	}
	return row
}

func windowStat(window []float64, s Stat) float64 {
	switch s {
	case StatMean:
		return stat.Mean(window, nil)
	case StatStd:
		if len(window) < 2 {
			return 0
		}
		return stat.StdDev(window, nil)
	case StatMin:
		return floats.Min(window)
	case StatMax:
		return floats.Max(window)
	case StatSum:
		return floats.Sum(window)
	default:
		return math.NaN()
	}
}
