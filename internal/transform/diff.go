package transform

import (
	"fmt"
	"time"

	"github.com/panelcast/panelcast/internal/panel"
)

// Difference applies the order-th seasonal difference y[t] - y[t-sp] per
// entity. Forward drops the first order*sp rows of each entity (insufficient
// history) and retains, per entity and per value column, the leading and
// trailing sp values of every differencing level so that Invert can
// reconstruct both the training range and any walk-forward continuation.
type Difference struct {
	Order  int
	Period int // seasonal period sp; 1 gives ordinary differencing

	state map[string]*diffState
}

type diffState struct {
	heads    [][][]float64 // [column][level][sp] leading values of each level input
	tails    [][][]float64 // [column][level][sp] trailing values of each level input
	firstOut time.Time     // first differenced training timestamp
	lastTime time.Time     // last training timestamp
}

// NewDifference returns a Difference transform of the given order and
// seasonal period.
func NewDifference(order, period int) (*Difference, error) {
	if order < 1 {
		return nil, fmt.Errorf("difference order must be >= 1, got %d", order)
	}
	if period < 1 {
		return nil, fmt.Errorf("seasonal period must be >= 1, got %d", period)
	}
	return &Difference{Order: order, Period: period}, nil
}

// Forward differences every value column of every entity independently.
// Entities with no more than Order*Period observations emit no rows and
// retain no state.
func (d *Difference) Forward(f *panel.Frame) (*panel.Frame, error) {
	sp := d.Period
	drop := d.Order * sp
	cols := f.ValueCols()
	d.state = make(map[string]*diffState, len(f.Entities()))

	var out []panel.Row
	for _, entity := range f.Entities() {
		series := f.Series(entity)
		if len(series) <= drop {
			continue
		}

		st := &diffState{
			heads:    make([][][]float64, len(cols)),
			tails:    make([][][]float64, len(cols)),
			firstOut: series[drop].Time,
			lastTime: series[len(series)-1].Time,
		}

		diffed := make([][]float64, len(cols))
		for c := range cols {
			vals := make([]float64, len(series))
			for i, r := range series {
				vals[i] = r.Values[c]
			}
			st.heads[c] = make([][]float64, d.Order)
			st.tails[c] = make([][]float64, d.Order)
			for level := 0; level < d.Order; level++ {
				st.heads[c][level] = append([]float64(nil), vals[:sp]...)
				st.tails[c][level] = append([]float64(nil), vals[len(vals)-sp:]...)
				next := make([]float64, len(vals)-sp)
				for i := range next {
					next[i] = vals[i+sp] - vals[i]
				}
				vals = next
			}
			diffed[c] = vals
		}
		d.state[entity] = st

		for i, r := range series[drop:] {
			values := make([]float64, len(cols))
			for c := range cols {
				values[c] = diffed[c][i]
			}
			out = append(out, panel.Row{Entity: entity, Time: r.Time, Values: values})
		}
	}

	return f.WithRows(out)
}

// Invert reconstructs original-scale values for the rows of f. Two layouts
// are supported per entity: the differenced training range itself (first
// timestamp matches the first differenced row) and a continuation starting
// after the last training timestamp (walk-forward forecasts). Anything else
// lies outside the retained state and fails with InsufficientHistoryError.
func (d *Difference) Invert(f *panel.Frame) (*panel.Frame, error) {
	if d.state == nil {
		return nil, fmt.Errorf("difference transform is not fitted")
	}
	sp := d.Period
	cols := f.ValueCols()

	var out []panel.Row
	for _, entity := range f.Entities() {
		st, ok := d.state[entity]
		if !ok {
			return nil, &InsufficientHistoryError{Entity: entity, Reason: "entity not seen during forward pass"}
		}
		series := f.Series(entity)
		first := series[0].Time

		restored := make([][]float64, len(cols))
		switch {
		case first.After(st.lastTime):
			for c := range cols {
				vals := make([]float64, len(series))
				for i, r := range series {
					vals[i] = r.Values[c]
				}
				for level := d.Order - 1; level >= 0; level-- {
					tail := st.tails[c][level]
					rec := make([]float64, len(vals))
					for i := range vals {
						var prev float64
						if i < sp {
							prev = tail[i]
						} else {
							prev = rec[i-sp]
						}
						rec[i] = vals[i] + prev
					}
					vals = rec
				}
				restored[c] = vals
			}
		case first.Equal(st.firstOut):
			for c := range cols {
				vals := make([]float64, len(series))
				for i, r := range series {
					vals[i] = r.Values[c]
				}
				for level := d.Order - 1; level >= 0; level-- {
					head := st.heads[c][level]
					rec := make([]float64, len(vals)+sp)
					copy(rec, head)
					for i := range vals {
						rec[i+sp] = vals[i] + rec[i]
					}
					vals = rec
				}
				// Align row-for-row with the input keys.
				restored[c] = vals[len(vals)-len(series):]
			}
		default:
			return nil, &InsufficientHistoryError{
				Entity: entity,
				Time:   first,
				Reason: "rows are neither the differenced training range nor a continuation of it",
			}
		}

		for i, r := range series {
			values := make([]float64, len(cols))
			for c := range cols {
				values[c] = restored[c][i]
			}
			out = append(out, panel.Row{Entity: entity, Time: r.Time, Values: values})
		}
	}

	return f.WithRows(out)
}
