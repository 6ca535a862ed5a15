package regress

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Standardized wraps an arbitrary regressor with per-feature centering and
// scaling. The statistics are computed from the training matrix during Fit
// and replayed on every Predict, so the wrapped estimator never observes
// un-standardized inputs regardless of which concrete estimator is plugged
// in.
type Standardized struct {
	Inner Regressor
}

// Standardize wraps a regressor with input standardization.
func Standardize(inner Regressor) *Standardized {
	return &Standardized{Inner: inner}
}

// Fit computes center/scale per feature column, standardizes X, and fits
// the wrapped regressor on the standardized matrix.
func (s *Standardized) Fit(X [][]float64, y []float64) (Model, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot standardize an empty feature matrix")
	}
	nFeat := len(X[0])
	mean := make([]float64, nFeat)
	scale := make([]float64, nFeat)

	col := make([]float64, len(X))
	for j := 0; j < nFeat; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		m, sd := stat.MeanStdDev(col, nil)
		if len(X) < 2 || sd == 0 {
			sd = 1 // constant column: center only
		}
		mean[j] = m
		scale[j] = sd
	}

	inner, err := s.Inner.Fit(applyStats(X, mean, scale), y)
	if err != nil {
		return nil, err
	}
	return &StandardizedModel{Inner: inner, Mean: mean, Scale: scale}, nil
}

// FitsIntercept forwards the intercept capability of the wrapped estimator.
func (s *Standardized) FitsIntercept() bool {
	if f, ok := s.Inner.(InterceptFitter); ok {
		return f.FitsIntercept()
	}
	return false
}

// StandardizedModel replays the training-time statistics before delegating
// to the wrapped fitted model. Read-only after Fit.
type StandardizedModel struct {
	Inner Model
	Mean  []float64
	Scale []float64
}

// Predict standardizes the rows with the stored statistics and delegates.
func (m *StandardizedModel) Predict(X [][]float64) ([]float64, error) {
	for _, row := range X {
		if len(row) != len(m.Mean) {
			return nil, fmt.Errorf("feature row has %d columns, model was fit with %d", len(row), len(m.Mean))
		}
	}
	return m.Inner.Predict(applyStats(X, m.Mean, m.Scale))
}

func applyStats(X [][]float64, mean, scale []float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - mean[j]) / scale[j]
		}
		out[i] = r
	}
	return out
}
