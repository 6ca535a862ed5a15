// Package regress defines the opaque estimator boundary used by the fit
// engine, plus concrete linear estimators backed by gonum. The engine only
// ever calls Fit and Predict and never inspects a fitted model.
package regress

// Model is an opaque fitted regression model.
type Model interface {
	// Predict returns one prediction per feature row.
	Predict(X [][]float64) ([]float64, error)
}

// Regressor fits an opaque Model from a feature matrix and target vector.
type Regressor interface {
	Fit(X [][]float64, y []float64) (Model, error)
}

// ProbModel is an opaque fitted binary classifier.
type ProbModel interface {
	// PredictProba returns P(label=1) per feature row.
	PredictProba(X [][]float64) ([]float64, error)
}

// Classifier fits an opaque ProbModel from a feature matrix and 0/1 labels.
type Classifier interface {
	FitClassifier(X [][]float64, y []float64) (ProbModel, error)
}

// InterceptFitter is implemented by estimators that fit an intercept term.
// The engine uses it for the dummy-variable check: categorical exogenous
// columns combined with an intercept-fitting linear estimator are rejected.
type InterceptFitter interface {
	FitsIntercept() bool
}
