package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panelcast/panelcast/internal/calendar"
	"github.com/panelcast/panelcast/internal/feature"
	"github.com/panelcast/panelcast/internal/panel"
	"github.com/panelcast/panelcast/internal/ranges"
	"github.com/panelcast/panelcast/internal/regress"
)

// Model is a fitted forecast model. It is immutable after Fit returns and
// safe to share across concurrent Predict calls. All fields are exported
// for gob serialization by the artifact store.
type Model struct {
	Strategy Strategy
	Horizon  int
	Spec     feature.Spec
	Freq     ranges.Frequency
	Calendar []calendar.Effect

	EntityCol string
	TimeCol   string
	Target    string
	UserExog  []string
	Entities  []string

	// History holds each entity's trailing raw target values, enough to
	// seed lag and window features at the forecast origin.
	History   map[string][]float64
	LastTimes map[string]time.Time

	RecursiveModel regress.Model
	DirectModels   []regress.Model

	// Censored variant.
	Censored     bool
	Threshold    float64
	RecursiveCls regress.ProbModel
	DirectCls    []regress.ProbModel

	Workers int
}

// ProbaCol is the auxiliary output column of the censored variant.
const ProbaCol = "threshold_proba"

// retainHistory stores the trailing target values and last timestamp per
// entity, sized to the feature spec's deepest lookback.
func (m *Model) retainHistory(f *panel.Frame, builder *feature.Builder) {
	need := builder.Spec().MaxLag()
	if w := builder.Spec().MaxWindow(); w > need {
		need = w
	}

	m.History = make(map[string][]float64, len(m.Entities))
	m.LastTimes = make(map[string]time.Time, len(m.Entities))
	for _, entity := range m.Entities {
		vals := f.SeriesValues(entity, m.Target)
		if len(vals) > need {
			vals = vals[len(vals)-need:]
		}
		m.History[entity] = append([]float64(nil), vals...)
		if last, ok := f.LastTime(entity); ok {
			m.LastTimes[entity] = last
		}
	}
}

// OutputCols returns the forecast frame's value columns.
func (m *Model) OutputCols() []string {
	if m.Censored {
		return []string{m.Target, ProbaCol}
	}
	return []string{m.Target}
}

// Predict forecasts fh steps per entity. future supplies exogenous values
// at the forecast timestamps and is required when the model was trained
// with exogenous columns; calendar effects are regenerated internally.
// Entities run in parallel, bounded by the fitted worker limit.
func (m *Model) Predict(ctx context.Context, fh int, future *panel.Frame) (*panel.Frame, error) {
	if fh < 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("forecast horizon must be >= 1, got %d", fh)}
	}
	if m.Strategy != Recursive && fh > m.Horizon {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("horizon %d exceeds the fitted horizon %d for strategy %s", fh, m.Horizon, m.Strategy),
		}
	}

	builder, err := feature.NewBuilder(m.Spec)
	if err != nil {
		return nil, err
	}
	grid, err := ranges.FutureGrid(m.Entities, m.LastTimes, m.Freq, fh)
	if err != nil {
		return nil, err
	}
	exogAt, err := m.exogLookup(future)
	if err != nil {
		return nil, err
	}

	workers := m.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	preds := make([][]forecastStep, len(grid))
	errs := make([]error, len(grid))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range grid {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			preds[i], errs[i] = m.predictEntity(builder, grid[i], exogAt)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	rows := make([]panel.Row, 0, len(grid)*fh)
	for i, er := range grid {
		for j, t := range er.Times {
			step := preds[i][j]
			vals := []float64{step.value}
			if m.Censored {
				vals = append(vals, step.proba)
			}
			rows = append(rows, panel.Row{Entity: er.Entity, Time: t, Values: vals})
		}
	}
	return panel.New(m.EntityCol, m.TimeCol, m.OutputCols(), rows)
}

type forecastStep struct {
	value float64
	proba float64
}

// exogFunc returns the exogenous feature values for one forecast cell, in
// training column order: user exogenous values then calendar effects.
type exogFunc func(entity string, t time.Time) ([]float64, error)

func (m *Model) exogLookup(future *panel.Frame) (exogFunc, error) {
	var userRows map[panel.Key][]float64
	if len(m.UserExog) > 0 {
		if future == nil {
			return nil, &ConfigError{
				Reason:  "future exogenous values are required for a model trained with exogenous columns",
				Columns: m.UserExog,
			}
		}
		idx := make([]int, len(m.UserExog))
		for i, col := range m.UserExog {
			j := future.ColumnIndex(col)
			if j < 0 {
				return nil, &ConfigError{Reason: "future panel is missing exogenous column", Columns: []string{col}}
			}
			idx[i] = j
		}
		userRows = make(map[panel.Key][]float64, future.NumRows())
		for _, r := range future.Rows() {
			vals := make([]float64, len(idx))
			for i, j := range idx {
				vals[i] = r.Values[j]
			}
			userRows[panel.Key{Entity: r.Entity, Time: r.Time}] = vals
		}
	}

	return func(entity string, t time.Time) ([]float64, error) {
		var vals []float64
		if userRows != nil {
			user, ok := userRows[panel.Key{Entity: entity, Time: t}]
			if !ok {
				return nil, fmt.Errorf("missing future exogenous row for entity %q at %s", entity, t.Format(time.RFC3339))
			}
			vals = append(vals, user...)
		}
		return append(vals, calendar.Values(t, m.Calendar)...), nil
	}, nil
}

// predictEntity produces one entity's fh-step forecast in grid order.
func (m *Model) predictEntity(builder *feature.Builder, er ranges.EntityRange, exogAt exogFunc) ([]forecastStep, error) {
	var recursive, direct []forecastStep
	var err error

	if m.Strategy != Direct {
		recursive, err = m.walkForward(builder, er, exogAt)
		if err != nil {
			return nil, err
		}
	}
	if m.Strategy != Recursive {
		direct, err = m.directShot(builder, er, exogAt)
		if err != nil {
			return nil, err
		}
	}

	switch m.Strategy {
	case Recursive:
		return recursive, nil
	case Direct:
		return direct, nil
	default:
		out := make([]forecastStep, len(er.Times))
		for j := range out {
			out[j] = forecastStep{
				value: (recursive[j].value + direct[j].value) / 2,
				proba: (recursive[j].proba + direct[j].proba) / 2,
			}
		}
		return out, nil
	}
}

// walkForward runs the recursive loop: each prediction is appended to the
// entity's history buffer so later steps see it as a lag input. Under the
// censored variant the appended value is already probability-scaled.
func (m *Model) walkForward(builder *feature.Builder, er ranges.EntityRange, exogAt exogFunc) ([]forecastStep, error) {
	hist := append([]float64(nil), m.History[er.Entity]...)
	out := make([]forecastStep, len(er.Times))

	for j, t := range er.Times {
		exog, err := exogAt(er.Entity, t)
		if err != nil {
			return nil, err
		}
		row, ok := builder.Row(hist, exog)
		if !ok {
			return nil, &InsufficientDataError{Entity: er.Entity, Horizon: j + 1}
		}

		yhat, err := m.RecursiveModel.Predict([][]float64{row})
		if err != nil {
			return nil, fmt.Errorf("predicting entity %q step %d: %w", er.Entity, j+1, err)
		}
		step := forecastStep{value: yhat[0], proba: 1}
		if m.Censored {
			proba, err := m.RecursiveCls.PredictProba([][]float64{row})
			if err != nil {
				return nil, fmt.Errorf("classifying entity %q step %d: %w", er.Entity, j+1, err)
			}
			step.proba = proba[0]
			step.value *= proba[0]
		}

		hist = append(hist, step.value)
		out[j] = step
	}
	return out, nil
}

// directShot predicts every horizon from the same observed-history feature
// base, one fitted model per step.
func (m *Model) directShot(builder *feature.Builder, er ranges.EntityRange, exogAt exogFunc) ([]forecastStep, error) {
	hist := m.History[er.Entity]
	out := make([]forecastStep, len(er.Times))

	for j, t := range er.Times {
		exog, err := exogAt(er.Entity, t)
		if err != nil {
			return nil, err
		}
		row, ok := builder.Row(hist, exog)
		if !ok {
			return nil, &InsufficientDataError{Entity: er.Entity, Horizon: j + 1}
		}

		yhat, err := m.DirectModels[j].Predict([][]float64{row})
		if err != nil {
			return nil, fmt.Errorf("predicting entity %q horizon %d: %w", er.Entity, j+1, err)
		}
		step := forecastStep{value: yhat[0], proba: 1}
		if m.Censored {
			proba, err := m.DirectCls[j].PredictProba([][]float64{row})
			if err != nil {
				return nil, fmt.Errorf("classifying entity %q horizon %d: %w", er.Entity, j+1, err)
			}
			step.proba = proba[0]
			step.value *= proba[0]
		}
		out[j] = step
	}
	return out, nil
}
