package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OLS is an ordinary least squares regressor solved by SVD. The
// pseudo-inverse gives the minimum-norm solution, so collinear feature
// columns (e.g. consecutive lags of a linear trend) fit cleanly instead of
// failing on a rank-deficient factorization.
type OLS struct {
	// Intercept controls whether an intercept column is added.
	Intercept bool
}

// NewOLS returns an OLS regressor with an intercept.
func NewOLS() *OLS {
	return &OLS{Intercept: true}
}

// FitsIntercept reports whether the estimator fits an intercept term.
func (o *OLS) FitsIntercept() bool { return o.Intercept }

// Fit solves min ||Xb - y|| via the SVD pseudo-inverse.
func (o *OLS) Fit(X [][]float64, y []float64) (Model, error) {
	A, b, err := designMatrix(X, y, o.Intercept)
	if err != nil {
		return nil, err
	}

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return nil, fmt.Errorf("ols svd factorization failed")
	}

	n, p := A.Dims()
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	// Singular values below the relative cutoff are treated as zero,
	// matching the usual lstsq convention.
	cutoff := sigma[0] * 1e-12 * float64(max(n, p))

	// beta = V Σ⁺ Uᵀ b
	ub := mat.NewVecDense(len(sigma), nil)
	ub.MulVec(u.T(), b.ColView(0))
	for i, s := range sigma {
		if s > cutoff {
			ub.SetVec(i, ub.AtVec(i)/s)
		} else {
			ub.SetVec(i, 0)
		}
	}
	betaVec := mat.NewVecDense(p, nil)
	betaVec.MulVec(&v, ub)

	beta := mat.NewDense(p, 1, nil)
	beta.SetCol(0, betaVec.RawVector().Data)
	return coefModel(beta, len(X[0]), o.Intercept), nil
}

// Ridge is an L2-regularized linear regressor with closed-form solution
// (XᵀX + αI)⁻¹ Xᵀy. The intercept term is not penalized.
type Ridge struct {
	Alpha     float64
	Intercept bool
}

// NewRidge returns a Ridge regressor with the given penalty and an
// intercept.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha, Intercept: true}
}

// FitsIntercept reports whether the estimator fits an intercept term.
func (r *Ridge) FitsIntercept() bool { return r.Intercept }

// Fit solves the regularized normal equations.
func (r *Ridge) Fit(X [][]float64, y []float64) (Model, error) {
	if r.Alpha < 0 {
		return nil, fmt.Errorf("ridge penalty must be >= 0, got %v", r.Alpha)
	}
	A, b, err := designMatrix(X, y, r.Intercept)
	if err != nil {
		return nil, err
	}

	_, p := A.Dims()
	var gram mat.Dense
	gram.Mul(A.T(), A)
	for j := 0; j < p; j++ {
		if r.Intercept && j == 0 {
			continue // leave the intercept unpenalized
		}
		gram.Set(j, j, gram.At(j, j)+r.Alpha)
	}
	var rhs mat.Dense
	rhs.Mul(A.T(), b)

	var beta mat.Dense
	if err := beta.Solve(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("ridge solve failed: %w", err)
	}
	return coefModel(&beta, len(X[0]), r.Intercept), nil
}

// LinearModel holds fitted linear coefficients. Read-only after Fit.
type LinearModel struct {
	Intercept float64
	Coef      []float64
}

// Predict computes the linear combination per row.
func (m *LinearModel) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("feature row has %d columns, model was fit with %d", len(row), len(m.Coef))
		}
		v := m.Intercept
		for j, x := range row {
			v += m.Coef[j] * x
		}
		out[i] = v
	}
	return out, nil
}

func designMatrix(X [][]float64, y []float64, intercept bool) (*mat.Dense, *mat.Dense, error) {
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("empty feature matrix")
	}
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("feature matrix has %d rows, target has %d", len(X), len(y))
	}
	nFeat := len(X[0])
	cols := nFeat
	if intercept {
		cols++
	}
	if len(X) < cols {
		return nil, nil, fmt.Errorf("need at least %d rows to fit %d coefficients, got %d", cols, cols, len(X))
	}

	A := mat.NewDense(len(X), cols, nil)
	for i, row := range X {
		if len(row) != nFeat {
			return nil, nil, fmt.Errorf("ragged feature matrix at row %d", i)
		}
		off := 0
		if intercept {
			A.Set(i, 0, 1)
			off = 1
		}
		for j, v := range row {
			A.Set(i, off+j, v)
		}
	}
	return A, mat.NewDense(len(y), 1, append([]float64(nil), y...)), nil
}

func coefModel(beta *mat.Dense, nFeat int, intercept bool) *LinearModel {
	m := &LinearModel{Coef: make([]float64, nFeat)}
	off := 0
	if intercept {
		m.Intercept = beta.At(0, 0)
		off = 1
	}
	for j := 0; j < nFeat; j++ {
		m.Coef[j] = beta.At(off+j, 0)
	}
	return m
}
