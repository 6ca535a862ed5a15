package transform

import (
	"fmt"
	"math"

	"github.com/panelcast/panelcast/internal/panel"
	"gonum.org/v1/gonum/stat"
)

// BoxCox applies the Box-Cox power transform per entity and value column.
// Forward fits one scalar lambda per (entity, column) by maximum likelihood
// and requires strictly positive inputs. Invert applies the analytic inverse
// using the stored lambda.
type BoxCox struct {
	state map[string][]float64 // entity -> lambda per value column
}

// NewBoxCox returns an unfitted Box-Cox transform.
func NewBoxCox() *BoxCox {
	return &BoxCox{}
}

const (
	lambdaLo = -2.0
	lambdaHi = 2.0
)

// Forward fits lambda per entity and column, then applies the power map.
// Any non-positive value fails with DomainError naming the offending
// entity, column and value.
func (b *BoxCox) Forward(f *panel.Frame) (*panel.Frame, error) {
	cols := f.ValueCols()
	b.state = make(map[string][]float64, len(f.Entities()))

	var out []panel.Row
	for _, entity := range f.Entities() {
		series := f.Series(entity)
		lambdas := make([]float64, len(cols))
		transformed := make([][]float64, len(cols))

		for c, col := range cols {
			vals := make([]float64, len(series))
			for i, r := range series {
				if r.Values[c] <= 0 {
					return nil, &DomainError{Entity: entity, Column: col, Value: r.Values[c]}
				}
				vals[i] = r.Values[c]
			}
			lambda := mleLambda(vals)
			lambdas[c] = lambda
			tv := make([]float64, len(vals))
			for i, x := range vals {
				tv[i] = boxcox(x, lambda)
			}
			transformed[c] = tv
		}
		b.state[entity] = lambdas

		for i, r := range series {
			values := make([]float64, len(cols))
			for c := range cols {
				values[c] = transformed[c][i]
			}
			out = append(out, panel.Row{Entity: entity, Time: r.Time, Values: values})
		}
	}

	return f.WithRows(out)
}

// Invert applies the analytic inverse using the lambdas stored by Forward.
func (b *BoxCox) Invert(f *panel.Frame) (*panel.Frame, error) {
	if b.state == nil {
		return nil, fmt.Errorf("box-cox transform is not fitted")
	}
	cols := f.ValueCols()

	var out []panel.Row
	for _, entity := range f.Entities() {
		lambdas, ok := b.state[entity]
		if !ok {
			return nil, &InsufficientHistoryError{Entity: entity, Reason: "entity not seen during forward pass"}
		}
		for _, r := range f.Series(entity) {
			values := make([]float64, len(cols))
			for c := range cols {
				values[c] = boxcoxInverse(r.Values[c], lambdas[c])
			}
			out = append(out, panel.Row{Entity: entity, Time: r.Time, Values: values})
		}
	}

	return f.WithRows(out)
}

// Lambda returns the fitted parameter for one entity and column index.
func (b *BoxCox) Lambda(entity string, col int) (float64, bool) {
	lambdas, ok := b.state[entity]
	if !ok || col < 0 || col >= len(lambdas) {
		return 0, false
	}
	return lambdas[col], true
}

func boxcox(x, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(x)
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

func boxcoxInverse(y, lambda float64) float64 {
	if lambda == 0 {
		return math.Exp(y)
	}
	return math.Pow(lambda*y+1, 1/lambda)
}

// mleLambda maximizes the Box-Cox log-likelihood over [-2, 2] by
// golden-section search. The objective is unimodal in lambda for positive
// data, so golden-section converges to the global optimum.
func mleLambda(x []float64) float64 {
	logSum := 0.0
	for _, v := range x {
		logSum += math.Log(v)
	}
	n := float64(len(x))

	llf := func(lambda float64) float64 {
		y := make([]float64, len(x))
		for i, v := range x {
			y[i] = boxcox(v, lambda)
		}
		variance := stat.Variance(y, nil) * (n - 1) / n // MLE variance
		if variance <= 0 {
			return math.Inf(-1)
		}
		return (lambda-1)*logSum - n/2*math.Log(variance)
	}

	// Golden-section search for the maximum.
	const invPhi = 0.6180339887498949
	lo, hi := lambdaLo, lambdaHi
	a := hi - invPhi*(hi-lo)
	c := lo + invPhi*(hi-lo)
	fa, fc := llf(a), llf(c)
	for hi-lo > 1e-8 {
		if fa > fc {
			hi = c
			c, fc = a, fa
			a = hi - invPhi*(hi-lo)
			fa = llf(a)
		} else {
			lo = a
			a, fa = c, fc
			c = lo + invPhi*(hi-lo)
			fc = llf(c)
		}
	}
	return (lo + hi) / 2
}
