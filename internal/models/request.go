package models

// Panel carries a long-format panel over the wire: a header naming the
// entity column, the time column and one or more value columns (target
// first), plus one record per observation. Time cells are RFC3339 strings
// or integer indices. Null value cells decode as missing observations and
// can be filled with an impute transform.
type Panel struct {
	Columns     []string        `json:"columns" validate:"required,min=3"`
	Records     [][]interface{} `json:"records" validate:"required,min=1"`
	Categorical []string        `json:"categorical,omitempty"` // exog columns to treat as categorical
}

// WindowSpec requests one rolling-window feature.
type WindowSpec struct {
	Size int    `json:"size" validate:"required,min=2"`
	Stat string `json:"stat" validate:"required,oneof=mean min max std"`
}

// EstimatorSpec selects and configures the linear estimator.
type EstimatorSpec struct {
	Type        string  `json:"type,omitempty"`      // ols (default), ridge
	Alpha       float64 `json:"alpha,omitempty"`     // ridge penalty
	Intercept   *bool   `json:"intercept,omitempty"` // default true
	Standardize bool    `json:"standardize,omitempty"`
}

// TransformSpec names one pre-fit transform. Transforms are applied to the
// target column in order before fitting and inverted in reverse order after
// predicting; exogenous columns stay on their original scale. Impute fills
// missing (null) target values and inverts as the identity.
type TransformSpec struct {
	Type   string  `json:"type" validate:"required,oneof=difference boxcox impute"`
	Order  int     `json:"order,omitempty"`  // difference order (default 1)
	Period int     `json:"period,omitempty"` // seasonal period (default 1)
	Method string  `json:"method,omitempty"` // impute method: mean, median, fill, ffill, bfill
	Value  float64 `json:"value,omitempty"`  // impute fill constant
}

// CensoredSpec enables the censored (zero-inflated) variant: a logistic
// classifier on y >= threshold scales the regressed prediction.
type CensoredSpec struct {
	Threshold float64 `json:"threshold"`
}

// EngineSpec configures a fit. Omitted fields fall back to the server's
// configured engine defaults.
type EngineSpec struct {
	Strategy   string         `json:"strategy,omitempty"` // recursive, direct, ensemble
	Horizon    int            `json:"horizon,omitempty"`
	Lags       []int          `json:"lags,omitempty"`
	Windows    []WindowSpec   `json:"windows,omitempty"`
	Frequency  string         `json:"frequency,omitempty"` // e.g. 1d, 1h, 1bd, 1i
	Calendar   []string       `json:"calendar,omitempty"`  // weekday, day, week, month, quarter, hour
	Estimator  *EstimatorSpec `json:"estimator,omitempty"`
	Censored   *CensoredSpec  `json:"censored,omitempty"`
	MaxWorkers int            `json:"max_workers,omitempty"`
}

// FitRequest represents a model fit request
type FitRequest struct {
	Panel  Panel      `json:"panel" validate:"required"`
	Engine EngineSpec `json:"engine"`
}

// ForecastRequest represents a one-shot forecast request: fit and predict
// in a single call, nothing persisted.
type ForecastRequest struct {
	Panel      Panel           `json:"panel" validate:"required"`
	Engine     EngineSpec      `json:"engine"`
	Horizon    int             `json:"horizon" validate:"required,min=1"` // forecast steps
	Transforms []TransformSpec `json:"transforms,omitempty"`
	Future     *Panel          `json:"future,omitempty"` // known future exogenous values
}

// PredictRequest represents a predict-from-stored-model request
type PredictRequest struct {
	Horizon int    `json:"horizon" validate:"required,min=1"`
	Future  *Panel `json:"future,omitempty"`
}

// EvaluateRequest scores a forecast against actuals per entity.
type EvaluateRequest struct {
	Metric   string `json:"metric" validate:"required,oneof=smape mape mae rmse rmsse"`
	Actual   Panel  `json:"actual" validate:"required"`
	Forecast Panel  `json:"forecast" validate:"required"`
	Train    *Panel `json:"train,omitempty"` // required for rmsse
}
