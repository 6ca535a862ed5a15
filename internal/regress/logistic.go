package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Logistic is a binary logistic regression classifier fitted by
// iteratively reweighted least squares. Deterministic: no random
// initialization, fixed iteration cap and tolerance.
type Logistic struct {
	MaxIter int
	Tol     float64
}

// NewLogistic returns a logistic classifier with standard IRLS settings.
func NewLogistic() *Logistic {
	return &Logistic{MaxIter: 25, Tol: 1e-8}
}

// FitClassifier fits on 0/1 labels and returns a probability model.
func (l *Logistic) FitClassifier(X [][]float64, y []float64) (ProbModel, error) {
	A, _, err := designMatrix(X, y, true)
	if err != nil {
		return nil, err
	}
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("logistic labels must be 0 or 1, got %v", v)
		}
	}

	n, p := A.Dims()
	beta := mat.NewVecDense(p, nil)
	eta := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(p, nil)
	work := mat.NewVecDense(n, nil)

	maxIter := l.MaxIter
	if maxIter <= 0 {
		maxIter = 25
	}
	tol := l.Tol
	if tol <= 0 {
		tol = 1e-8
	}

	for iter := 0; iter < maxIter; iter++ {
		eta.MulVec(A, beta)
		// work = y - p, hessian = AᵀWA with W = diag(p(1-p)).
		hess := mat.NewSymDense(p, nil)
		for i := 0; i < n; i++ {
			pi := sigmoid(eta.AtVec(i))
			work.SetVec(i, y[i]-pi)
			w := pi * (1 - pi)
			if w < 1e-10 {
				w = 1e-10 // keep the hessian invertible on separated data
			}
			for j := 0; j < p; j++ {
				for k := j; k < p; k++ {
					hess.SetSym(j, k, hess.At(j, k)+w*A.At(i, j)*A.At(i, k))
				}
			}
		}
		grad.MulVec(A.T(), work)

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return nil, fmt.Errorf("logistic hessian is not positive definite")
		}
		step := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(step, grad); err != nil {
			return nil, fmt.Errorf("logistic solve failed: %w", err)
		}
		beta.AddVec(beta, step)

		if mat.Norm(step, 2) < tol {
			break
		}
	}

	m := &LogisticModel{Intercept: beta.AtVec(0), Coef: make([]float64, p-1)}
	for j := 1; j < p; j++ {
		m.Coef[j-1] = beta.AtVec(j)
	}
	return m, nil
}

// LogisticModel holds fitted logistic coefficients. Read-only after fit.
type LogisticModel struct {
	Intercept float64
	Coef      []float64
}

// PredictProba returns P(label=1) per row.
func (m *LogisticModel) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("feature row has %d columns, model was fit with %d", len(row), len(m.Coef))
		}
		v := m.Intercept
		for j, x := range row {
			v += m.Coef[j] * x
		}
		out[i] = sigmoid(v)
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
